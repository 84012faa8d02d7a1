package models

import "github.com/roomy/roomy/internal/navigation"

// MapSessionCreateRequest opens a map screen.
type MapSessionCreateRequest struct {
	// Permission is the foreground location permission the device reports.
	Permission string `json:"permission" validate:"required,oneof=granted denied blocked"`

	// HotelID preselects the hotel as destination, as when the map is opened from a listing.
	HotelID string `json:"hotelId,omitempty" validate:"omitempty,max=64"`

	// Destination preselects an arbitrary point. Ignored when HotelID is set.
	Destination *DestinationInput `json:"destination,omitempty"`
}

// DestinationInput is a destination chosen on the client.
type DestinationInput struct {
	Point Point  `json:"point"`
	Label string `json:"label,omitempty" validate:"max=200"`
}

// MapSession is the response for map session endpoints.
type MapSession struct {
	ID        string              `json:"id"`
	CreatedAt Timestamp           `json:"createdAt"`
	Tracking  bool                `json:"tracking"`
	State     navigation.Snapshot `json:"state"`
}

// LocationPushRequest carries one device fix.
type LocationPushRequest struct {
	Point *Point `json:"point" validate:"required"`
}

// Map event types accepted by POST /v1/map-sessions/{id}/events.
const (
	MapEventSelectDestination = "select_destination"
	MapEventClearRoute        = "clear_route"
	MapEventMapTapped         = "map_tapped"
	MapEventRecenter          = "recenter"
	MapEventRetryLocation     = "retry_location"
)

// MapEventRequest is a user gesture on the map.
type MapEventRequest struct {
	Type string `json:"type" validate:"required,oneof=select_destination clear_route map_tapped recenter retry_location"`

	// Point, Label and Source apply to select_destination.
	Point  *Point `json:"point,omitempty" validate:"required_if=Type select_destination"`
	Label  string `json:"label,omitempty" validate:"max=200"`
	Source string `json:"source,omitempty" validate:"required_if=Type select_destination,omitempty,oneof=long_press marker_tap search_result deeplink"`

	// Permission applies to retry_location.
	Permission string `json:"permission,omitempty" validate:"required_if=Type retry_location,omitempty,oneof=granted denied blocked"`
}

// SearchRequest is a destination search query.
type SearchRequest struct {
	Query string `json:"query" validate:"max=200"`
}
