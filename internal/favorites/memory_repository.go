package favorites

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository used for local runs and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Favorite // user ID -> hotel ID -> favorite
}

// NewMemoryRepository creates an empty in-memory favorites repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[string]map[string]Favorite)}
}

// List returns the user's favorites, newest first.
func (r *MemoryRepository) List(_ context.Context, userID string) ([]Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	favs := make([]Favorite, 0, len(r.byUser[userID]))
	for _, f := range r.byUser[userID] {
		favs = append(favs, f)
	}
	sort.Slice(favs, func(i, j int) bool {
		if favs[i].CreatedAt.Equal(favs[j].CreatedAt) {
			return favs[i].HotelID < favs[j].HotelID
		}
		return favs[i].CreatedAt.After(favs[j].CreatedAt)
	})
	return favs, nil
}

// Toggle adds or removes the favorite under one lock.
func (r *MemoryRepository) Toggle(_ context.Context, fav Favorite) (Favorite, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hotels := r.byUser[fav.UserID]
	if existing, ok := hotels[fav.HotelID]; ok {
		delete(hotels, fav.HotelID)
		if len(hotels) == 0 {
			delete(r.byUser, fav.UserID)
		}
		return existing, false, nil
	}

	if hotels == nil {
		hotels = make(map[string]Favorite)
		r.byUser[fav.UserID] = hotels
	}
	hotels[fav.HotelID] = fav
	return fav, true, nil
}

// Remove deletes the favorite if present.
func (r *MemoryRepository) Remove(_ context.Context, userID, hotelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hotels, ok := r.byUser[userID]; ok {
		delete(hotels, hotelID)
		if len(hotels) == 0 {
			delete(r.byUser, userID)
		}
	}
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
