package navigation

import (
	"time"

	"github.com/roomy/roomy/internal/geo"
)

// Rules are the tunables of the state machine.
type Rules struct {
	// LongPressLock ignores a long press within this window of the last accepted one.
	LongPressLock time.Duration
	// FitPaddingPx and FitAnimation are used when framing a route.
	FitPaddingPx int
	FitAnimation time.Duration
	// FocusZoom is used to center on a single point (short route, lone destination).
	FocusZoom float64
	// RecenterZoom is used by Recenter and the first origin fix.
	RecenterZoom float64
	// DefaultCenter is framed when location is unavailable.
	DefaultCenter geo.Coordinate
	DefaultZoom   float64
}

// DefaultRules returns the production tunables. The default center is Lagos.
func DefaultRules() Rules {
	return Rules{
		LongPressLock: 600 * time.Millisecond,
		FitPaddingPx:  60,
		FitAnimation:  800 * time.Millisecond,
		FocusZoom:     15,
		RecenterZoom:  14,
		DefaultCenter: geo.New(3.3792, 6.5244),
		DefaultZoom:   12,
	}
}

// Transition applies ev to s with the default rules.
func Transition(s State, ev Event) (State, []Effect) {
	return DefaultRules().Transition(s, ev)
}

// Transition is the pure state machine: it never blocks and never performs I/O.
func (r Rules) Transition(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case OriginUpdated:
		first := s.Origin == nil
		origin := e.Coordinate
		s.Origin = &origin
		s.LocationDown = false

		var effects []Effect
		if first && s.Destination == nil {
			effects = append(effects, MoveCamera{Camera: CenterOn(origin, r.RecenterZoom, r.FitAnimation)})
		}
		s, fetch := r.maybeFetch(s)
		return s, append(effects, fetch...)

	case LocationUnavailable:
		s.LocationDown = true
		if s.Origin != nil || s.Destination != nil {
			return s, nil
		}
		return s, []Effect{MoveCamera{Camera: CenterOn(r.DefaultCenter, r.DefaultZoom, 0)}}

	case SelectDestination:
		if e.Source == SourceLongPress {
			if !s.LastLongPress.IsZero() && e.At.Sub(s.LastLongPress) < r.LongPressLock {
				return s, nil
			}
			s.LastLongPress = e.At
		}

		changed := s.Destination == nil || !s.Destination.Coordinate.Equal(e.Coordinate)
		s.Destination = &Destination{Coordinate: e.Coordinate, Label: e.Label, Source: e.Source}
		if e.Source == SourceSearchResult {
			s = closeSearch(s)
		}
		if changed {
			// The old route belongs to the old destination.
			s.Route = nil
			s.RouteStatus = RouteIdle
		}

		if s.Origin == nil {
			return s, []Effect{MoveCamera{Camera: CenterOn(e.Coordinate, r.FocusZoom, r.FitAnimation)}}
		}
		return r.maybeFetch(s)

	case ClearRoute:
		s.Destination = nil
		s.Route = nil
		s.RouteStatus = RouteIdle
		s.RequestedKey = nil
		return s, nil

	case MapTapped:
		return closeSearch(s), nil

	case Recenter:
		if s.Origin == nil {
			return s, nil
		}
		return s, []Effect{MoveCamera{Camera: CenterOn(*s.Origin, r.RecenterZoom, r.FitAnimation)}}

	case SearchStarted:
		s.SearchOpen = true
		s.SearchQuery = e.Query
		return s, nil

	case SuggestionsLoaded:
		if !s.SearchOpen || e.Seq <= s.SearchSeq {
			return s, nil
		}
		s.SearchSeq = e.Seq
		s.Suggestions = e.Places
		return s, nil

	case RouteLoaded:
		if !s.current(e.Key) || e.Result == nil {
			return s, nil
		}
		if len(e.Result.Geometry) == 0 {
			s.Route = nil
			s.RouteStatus = RouteNotFound
			return s, nil
		}
		s.Route = e.Result
		s.RouteStatus = RouteReady
		return s, []Effect{MoveCamera{Camera: r.routeCamera(e.Result.Geometry)}}

	case RouteFailed:
		if !s.current(e.Key) {
			return s, nil
		}
		s.Route = nil
		s.RouteStatus = RouteNotFound
		// A failed pair was never loaded; the next selection or fix retries it.
		s.RequestedKey = nil
		return s, nil
	}

	return s, nil
}

// maybeFetch requests a route when both endpoints exist and the pair is neither
// in flight nor already loaded.
func (r Rules) maybeFetch(s State) (State, []Effect) {
	if s.Origin == nil || s.Destination == nil {
		return s, nil
	}

	key := RouteKey{Origin: *s.Origin, Destination: s.Destination.Coordinate}
	if s.RequestedKey != nil && *s.RequestedKey == key {
		return s, nil
	}

	s.RequestedKey = &key
	if s.Route == nil {
		s.RouteStatus = RouteLoading
	}
	return s, []Effect{FetchRoute{Key: key}}
}

func (r Rules) routeCamera(geometry []geo.Coordinate) Camera {
	if len(geometry) >= 2 {
		box, _ := geo.BoundsOf(geometry)
		return FitBounds(box, r.FitPaddingPx, r.FitAnimation)
	}
	return CenterOn(geometry[0], r.FocusZoom, r.FitAnimation)
}

// current reports whether key is the pair most recently requested.
func (s State) current(key RouteKey) bool {
	return s.RequestedKey != nil && *s.RequestedKey == key
}

func closeSearch(s State) State {
	s.SearchOpen = false
	s.SearchQuery = ""
	s.Suggestions = nil
	return s
}
