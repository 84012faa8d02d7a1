// Package catalog supplies properties and their suites.
package catalog

import (
	"context"
	"errors"

	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/geo"
)

// ErrHotelNotFound is returned when a hotel does not exist.
var ErrHotelNotFound = errors.New("hotel not found")

// Hotel is a bookable property.
type Hotel struct {
	ID       string
	Name     string
	Address  string
	Location geo.Coordinate
	Suites   []booking.Suite
}

// Repository is the read-only catalog source.
type Repository interface {
	// GetHotel retrieves a hotel with its suites.
	GetHotel(ctx context.Context, id string) (*Hotel, error)

	// ListHotels returns every hotel, without suites.
	ListHotels(ctx context.Context) ([]*Hotel, error)
}
