// Package favorites stores the hotels a guest has hearted, keyed by the
// subject of their access token.
package favorites

import (
	"context"
	"time"
)

// Favorite is one hearted hotel.
type Favorite struct {
	ID        string
	UserID    string
	HotelID   string
	CreatedAt time.Time
}

// Repository defines the interface for favorites persistence.
type Repository interface {
	// List returns the user's favorites, newest first.
	List(ctx context.Context, userID string) ([]Favorite, error)

	// Toggle removes the (user, hotel) favorite if it exists and adds fav
	// otherwise, atomically. It returns the stored favorite and true when
	// added, or the removed favorite and false when removed.
	Toggle(ctx context.Context, fav Favorite) (Favorite, bool, error)

	// Remove deletes the (user, hotel) favorite. Removing a missing favorite is not an error.
	Remove(ctx context.Context, userID, hotelID string) error
}
