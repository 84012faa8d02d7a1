package favorites

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roomy/roomy/internal/catalog"
)

// Entry is a favorite joined with its hotel.
type Entry struct {
	Favorite Favorite
	Hotel    *catalog.Hotel
}

// ServiceConfig holds configuration for the favorites service.
type ServiceConfig struct {
	Repository Repository
	Catalog    catalog.Repository
	Logger     zerolog.Logger

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Service lists and toggles a guest's favorite hotels.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a new favorites service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    cfg.Repository,
		catalog: cfg.Catalog,
		logger:  cfg.Logger,
		now:     now,
	}
}

// List returns the user's favorites joined with their hotels, newest first.
// Favorites whose hotel has left the catalog are skipped.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	favs, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if len(favs) == 0 {
		return []Entry{}, nil
	}

	hotels, err := s.catalog.ListHotels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	byID := make(map[string]*catalog.Hotel, len(hotels))
	for _, h := range hotels {
		byID[h.ID] = h
	}

	entries := make([]Entry, 0, len(favs))
	for _, f := range favs {
		hotel, ok := byID[f.HotelID]
		if !ok {
			s.logger.Debug().
				Str("user_id", userID).
				Str("hotel_id", f.HotelID).
				Msg("skipping favorite for unknown hotel")
			continue
		}
		entries = append(entries, Entry{Favorite: f, Hotel: hotel})
	}
	return entries, nil
}

// Toggle hearts the hotel for the user, or un-hearts it when already hearted.
// It returns catalog.ErrHotelNotFound for unknown hotels.
func (s *Service) Toggle(ctx context.Context, userID, hotelID string) (Favorite, bool, error) {
	if _, err := s.catalog.GetHotel(ctx, hotelID); err != nil {
		return Favorite{}, false, err
	}

	fav, added, err := s.repo.Toggle(ctx, Favorite{
		ID:        "fav_" + uuid.New().String(),
		UserID:    userID,
		HotelID:   hotelID,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return Favorite{}, false, fmt.Errorf("toggle favorite: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("hotel_id", hotelID).
		Bool("is_favorite", added).
		Msg("favorite toggled")
	return fav, added, nil
}

// Remove un-hearts the hotel. Removing a hotel that is not a favorite succeeds.
func (s *Service) Remove(ctx context.Context, userID, hotelID string) error {
	if err := s.repo.Remove(ctx, userID, hotelID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}
