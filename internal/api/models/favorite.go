package models

// FavoriteToggleRequest hearts or un-hearts a hotel.
type FavoriteToggleRequest struct {
	HotelID string `json:"hotelId" validate:"required,max=64"`
}

// Favorite is a hearted hotel.
type Favorite struct {
	ID        string       `json:"id"`
	HotelID   string       `json:"hotelId"`
	CreatedAt Timestamp    `json:"createdAt"`
	Hotel     HotelSummary `json:"hotel"`
}

// FavoriteList is the response of GET /v1/favorites.
type FavoriteList struct {
	Items []Favorite `json:"items"`
}

// FavoriteToggle is the response of POST /v1/favorites.
type FavoriteToggle struct {
	IsFavorite bool   `json:"isFavorite"`
	HotelID    string `json:"hotelId"`
	// FavoriteID is set when the hotel was hearted.
	FavoriteID string `json:"favoriteId,omitempty"`
}
