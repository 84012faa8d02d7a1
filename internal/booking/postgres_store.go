package booking

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRequestStore is a PostgreSQL implementation of RequestStore.
type PostgresRequestStore struct {
	pool *pgxpool.Pool
}

// NewPostgresRequestStore creates a new PostgreSQL request store.
func NewPostgresRequestStore(pool *pgxpool.Pool) *PostgresRequestStore {
	return &PostgresRequestStore{pool: pool}
}

// Save inserts a booking request, ignoring redeliveries of the same draft.
func (s *PostgresRequestStore) Save(ctx context.Context, d Draft) (bool, error) {
	query := `
		INSERT INTO booking_requests (
			id, sheet_id, user_id, hotel_id, hotel_name,
			suite_id, suite_name, check_in, check_out, check_out_provisional,
			nights, adults, children, price_per_night, subtotal, currency,
			promo_code, notes, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			NULLIF($17, ''), NULLIF($18, ''), $19
		)
		ON CONFLICT (id) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query,
		d.ID, d.SheetID, d.UserID, d.HotelID, d.HotelName,
		d.Suite.ID, d.Suite.Name, d.CheckIn.String(), d.CheckOut.String(), d.CheckOutProvisional,
		d.Nights, d.Guests.Adults, d.Guests.Children, d.PricePerNight, d.Subtotal, d.Currency,
		d.PromoCode, d.Notes, d.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert booking request: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Get retrieves a booking request by draft ID.
func (s *PostgresRequestStore) Get(ctx context.Context, id string) (*Draft, error) {
	query := `
		SELECT
			id, sheet_id, user_id, hotel_id, hotel_name,
			suite_id, suite_name, check_in::text, check_out::text, check_out_provisional,
			nights, adults, children, price_per_night, subtotal, currency,
			COALESCE(promo_code, ''), COALESCE(notes, ''), created_at
		FROM booking_requests
		WHERE id = $1
	`

	var (
		d                 Draft
		checkIn, checkOut string
	)
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.SheetID, &d.UserID, &d.HotelID, &d.HotelName,
		&d.Suite.ID, &d.Suite.Name, &checkIn, &checkOut, &d.CheckOutProvisional,
		&d.Nights, &d.Guests.Adults, &d.Guests.Children, &d.PricePerNight, &d.Subtotal, &d.Currency,
		&d.PromoCode, &d.Notes, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if d.CheckIn, err = civil.ParseDate(checkIn); err != nil {
		return nil, fmt.Errorf("parse check_in: %w", err)
	}
	if d.CheckOut, err = civil.ParseDate(checkOut); err != nil {
		return nil, fmt.Errorf("parse check_out: %w", err)
	}
	d.Suite.PricePerNight = d.PricePerNight

	return &d, nil
}

var _ RequestStore = (*PostgresRequestStore)(nil)
