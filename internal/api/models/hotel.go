package models

import "github.com/roomy/roomy/internal/booking"

// Hotel is a property with its suites.
type Hotel struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Address  string          `json:"address,omitempty"`
	Location Point           `json:"location"`
	Suites   []booking.Suite `json:"suites"`
}

// HotelSummary is a list entry without suites.
type HotelSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Location Point  `json:"location"`
}

// HotelList is the response of GET /v1/hotels.
type HotelList struct {
	Items []HotelSummary `json:"items"`
}

// DirectionsLink is an external turn-by-turn hand-off URL.
type DirectionsLink struct {
	URL      string `json:"url"`
	Platform string `json:"platform"`
}
