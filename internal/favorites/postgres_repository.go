package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL favorites repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the user's favorites, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Favorite, error) {
	query := `
		SELECT id, user_id, hotel_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, hotel_id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	favs := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.HotelID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

// Toggle deletes the row if present and inserts fav otherwise, in one transaction.
func (r *PostgresRepository) Toggle(ctx context.Context, fav Favorite) (Favorite, bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Favorite{}, false, fmt.Errorf("begin toggle: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var removed Favorite
	err = tx.QueryRow(ctx, `
		DELETE FROM favorites
		WHERE user_id = $1 AND hotel_id = $2
		RETURNING id, user_id, hotel_id, created_at
	`, fav.UserID, fav.HotelID).Scan(&removed.ID, &removed.UserID, &removed.HotelID, &removed.CreatedAt)
	switch {
	case err == nil:
		if err := tx.Commit(ctx); err != nil {
			return Favorite{}, false, fmt.Errorf("commit toggle: %w", err)
		}
		return removed, false, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return Favorite{}, false, fmt.Errorf("delete favorite: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO favorites (id, user_id, hotel_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, hotel_id) DO NOTHING
	`, fav.ID, fav.UserID, fav.HotelID, fav.CreatedAt)
	if err != nil {
		return Favorite{}, false, fmt.Errorf("insert favorite: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Favorite{}, false, fmt.Errorf("commit toggle: %w", err)
	}
	return fav, true, nil
}

// Remove deletes the favorite if present.
func (r *PostgresRepository) Remove(ctx context.Context, userID, hotelID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND hotel_id = $2`, userID, hotelID)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
