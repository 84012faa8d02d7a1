package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/roomy/roomy/internal/booking"
	"github.com/roomy/roomy/internal/geo"
)

// MemoryRepository is an in-memory Repository used for local runs and tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	hotels map[string]*Hotel
}

// NewMemoryRepository creates a repository holding hotels.
func NewMemoryRepository(hotels ...Hotel) *MemoryRepository {
	r := &MemoryRepository{hotels: make(map[string]*Hotel, len(hotels))}
	for _, h := range hotels {
		r.Put(h)
	}
	return r
}

// NewSeededRepository returns a repository with the demo Lagos properties.
func NewSeededRepository() *MemoryRepository {
	return NewMemoryRepository(SeedHotels()...)
}

// Put adds or replaces a hotel.
func (r *MemoryRepository) Put(h Hotel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h.Suites = append([]booking.Suite(nil), h.Suites...)
	r.hotels[h.ID] = &h
}

// GetHotel retrieves a hotel by ID.
func (r *MemoryRepository) GetHotel(_ context.Context, id string) (*Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hotels[id]
	if !ok {
		return nil, ErrHotelNotFound
	}

	// Return a copy
	cpy := *h
	cpy.Suites = append([]booking.Suite(nil), h.Suites...)
	return &cpy, nil
}

// ListHotels returns every hotel ordered by name.
func (r *MemoryRepository) ListHotels(_ context.Context) ([]*Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hotels := make([]*Hotel, 0, len(r.hotels))
	for _, h := range r.hotels {
		cpy := *h
		cpy.Suites = nil
		hotels = append(hotels, &cpy)
	}
	sort.Slice(hotels, func(i, j int) bool { return hotels[i].Name < hotels[j].Name })
	return hotels, nil
}

// SeedHotels returns the demo catalog.
func SeedHotels() []Hotel {
	return []Hotel{
		{
			ID:       "htl_eko",
			Name:     "Eko Hotel & Suites",
			Address:  "Plot 1415 Adetokunbo Ademola Street, Victoria Island, Lagos",
			Location: geo.New(3.4305, 6.4267),
			Suites: []booking.Suite{
				{ID: "eko-classic", Name: "Classic Room", Description: "Queen bed, city view", PricePerNight: 95000},
				{ID: "eko-deluxe", Name: "Deluxe Suite", Description: "King bed, lagoon view, lounge access", PricePerNight: 150000},
				{ID: "eko-royal", Name: "Royal Suite", Description: "Price on request"},
			},
		},
		{
			ID:       "htl_ikoyi",
			Name:     "Ikoyi Garden Residence",
			Address:  "12 Bourdillon Road, Ikoyi, Lagos",
			Location: geo.New(3.4372, 6.4531),
			Suites: []booking.Suite{
				{ID: "ikg-studio", Name: "Studio", PricePerNight: 50000},
				{ID: "ikg-2bed", Name: "Two Bedroom Apartment", PricePerNight: 120000},
			},
		},
		{
			ID:       "htl_lekki",
			Name:     "Lekki Beach House",
			Address:  "Admiralty Way, Lekki Phase 1, Lagos",
			Location: geo.New(3.4746, 6.4474),
			Suites: []booking.Suite{
				{ID: "lbh-ocean", Name: "Ocean Room", PricePerNight: 72000},
			},
		},
	}
}

var _ Repository = (*MemoryRepository)(nil)
