// Package navigation owns the map screen state: the current origin, the single active
// destination, the displayed route and the camera.
//
// The state machine is a pure function (Rules.Transition). Controller is the shell that
// executes its effects: it fetches routes, moves the camera and feeds results back in.
package navigation

import (
	"time"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/geocoding"
	"github.com/roomy/roomy/internal/routing"
)

// Source is how a destination was chosen.
type Source string

const (
	SourceLongPress    Source = "long_press"
	SourceMarkerTap    Source = "marker_tap"
	SourceSearchResult Source = "search_result"
	SourceDeeplink     Source = "deeplink"
)

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceLongPress, SourceMarkerTap, SourceSearchResult, SourceDeeplink:
		return true
	}
	return false
}

// Destination is the active routing target.
type Destination struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Label      string         `json:"label,omitempty"`
	Source     Source         `json:"source"`
}

// RouteKey identifies the (origin, destination) pair a route was requested for.
type RouteKey struct {
	Origin      geo.Coordinate
	Destination geo.Coordinate
}

// RouteStatus describes the route display.
type RouteStatus string

const (
	RouteIdle     RouteStatus = "idle"
	RouteLoading  RouteStatus = "loading"
	RouteReady    RouteStatus = "ready"
	RouteNotFound RouteStatus = "not_found"
)

// State is the full map screen state. Values are never mutated in place:
// every transition returns a new State sharing only immutable data.
type State struct {
	Origin      *geo.Coordinate
	Destination *Destination

	Route        *routing.RouteResult
	RouteStatus  RouteStatus
	// RequestedKey is the pair in flight or last loaded. It is cleared when
	// that fetch fails.
	RequestedKey *RouteKey

	// LastLongPress is when the last accepted long press happened.
	LastLongPress time.Time

	SearchOpen   bool
	SearchQuery  string
	SearchSeq    uint64
	Suggestions  []geocoding.Place
	LocationDown bool
}

// NewState returns the initial state: no origin, no destination.
func NewState() State {
	return State{RouteStatus: RouteIdle}
}

// HasDestination reports whether a destination is set.
func (s State) HasDestination() bool {
	return s.Destination != nil
}
