package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomy/roomy/internal/booking"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL catalog repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetHotel retrieves a hotel and its suites.
func (r *PostgresRepository) GetHotel(ctx context.Context, id string) (*Hotel, error) {
	query := `
		SELECT id, name, address, lon, lat
		FROM hotels
		WHERE id = $1
	`

	var h Hotel
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&h.ID,
		&h.Name,
		&h.Address,
		&h.Location.Lon,
		&h.Location.Lat,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHotelNotFound
		}
		return nil, err
	}

	suites, err := r.listSuites(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Suites = suites

	return &h, nil
}

func (r *PostgresRepository) listSuites(ctx context.Context, hotelID string) ([]booking.Suite, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), COALESCE(price_per_night, 0), COALESCE(image_url, '')
		FROM suites
		WHERE hotel_id = $1
		ORDER BY position, id
	`

	rows, err := r.pool.Query(ctx, query, hotelID)
	if err != nil {
		return nil, fmt.Errorf("query suites: %w", err)
	}
	defer rows.Close()

	var suites []booking.Suite
	for rows.Next() {
		var s booking.Suite
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PricePerNight, &s.ImageURL); err != nil {
			return nil, fmt.Errorf("scan suite: %w", err)
		}
		suites = append(suites, s)
	}

	return suites, rows.Err()
}

// ListHotels returns every hotel ordered by name.
func (r *PostgresRepository) ListHotels(ctx context.Context) ([]*Hotel, error) {
	query := `
		SELECT id, name, address, lon, lat
		FROM hotels
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hotels []*Hotel
	for rows.Next() {
		var h Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Location.Lon, &h.Location.Lat); err != nil {
			return nil, err
		}
		hotels = append(hotels, &h)
	}

	return hotels, rows.Err()
}

var _ Repository = (*PostgresRepository)(nil)
