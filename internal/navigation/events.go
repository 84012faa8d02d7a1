package navigation

import (
	"time"

	"github.com/roomy/roomy/internal/geo"
	"github.com/roomy/roomy/internal/geocoding"
	"github.com/roomy/roomy/internal/routing"
)

// Event is an input to the state machine.
type Event interface {
	eventName() string
}

// OriginUpdated carries a new device position.
type OriginUpdated struct {
	Coordinate geo.Coordinate
}

// LocationUnavailable reports that no origin stream will arrive (permission denied).
type LocationUnavailable struct{}

// SelectDestination sets the destination from a gesture, a search pick or a deeplink.
type SelectDestination struct {
	Coordinate geo.Coordinate
	Label      string
	Source     Source
	At         time.Time
}

// ClearRoute removes the destination and everything derived from it.
type ClearRoute struct{}

// MapTapped is a tap on the base map, not on a marker.
type MapTapped struct{}

// Recenter asks for the camera to return to the origin.
type Recenter struct{}

// SearchStarted opens the search UI for a query.
type SearchStarted struct {
	Query string
}

// SuggestionsLoaded delivers the suggestions of search call Seq.
type SuggestionsLoaded struct {
	Seq    uint64
	Places []geocoding.Place
}

// RouteLoaded delivers a route for the pair it was requested for.
type RouteLoaded struct {
	Key    RouteKey
	Result *routing.RouteResult
}

// RouteFailed reports that no route could be obtained for Key.
type RouteFailed struct {
	Key RouteKey
	Err error
}

func (OriginUpdated) eventName() string       { return "origin_updated" }
func (LocationUnavailable) eventName() string { return "location_unavailable" }
func (SelectDestination) eventName() string   { return "select_destination" }
func (ClearRoute) eventName() string          { return "clear_route" }
func (MapTapped) eventName() string           { return "map_tapped" }
func (Recenter) eventName() string            { return "recenter" }
func (SearchStarted) eventName() string       { return "search_started" }
func (SuggestionsLoaded) eventName() string   { return "suggestions_loaded" }
func (RouteLoaded) eventName() string         { return "route_loaded" }
func (RouteFailed) eventName() string         { return "route_failed" }

// Effect is work the shell performs after a transition.
type Effect interface {
	effectName() string
}

// FetchRoute asks the shell to compute a route for Key and report back.
type FetchRoute struct {
	Key RouteKey
}

// MoveCamera asks the shell to animate the map camera.
type MoveCamera struct {
	Camera Camera
}

func (FetchRoute) effectName() string { return "fetch_route" }
func (MoveCamera) effectName() string { return "move_camera" }
