package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "teranga/pkg/domain"
	txcontext "teranga/pkg/platform/tx"
)

// PostgresStore persists favorites in the favorites table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Exists treats "no row" as false, never as an error.
func (s *PostgresStore) Exists(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error) {
	var exists bool
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND property_id = $2)`,
		userID.String(), propertyID.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Add(ctx context.Context, userID id.UserID, propertyID id.PropertyID, at time.Time) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO favorites (user_id, property_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, property_id) DO NOTHING`,
		userID.String(), propertyID.String(), at)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// Remove succeeds when nothing was deleted.
func (s *PostgresStore) Remove(ctx context.Context, userID id.UserID, propertyID id.PropertyID) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND property_id = $2`,
		userID.String(), propertyID.String())
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListPropertyIDs(ctx context.Context, userID id.UserID) ([]id.PropertyID, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT property_id FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, property_id`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	out := make([]id.PropertyID, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		propertyID, err := id.ParsePropertyID(raw)
		if err != nil {
			return nil, fmt.Errorf("decode property id: %w", err)
		}
		out = append(out, propertyID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return out, nil
}
