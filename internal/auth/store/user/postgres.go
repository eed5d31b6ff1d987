package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"teranga/internal/auth/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists accounts in the users table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, user *models.User) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, verified, verified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID.String(), user.Email, user.PasswordHash, user.Verified, user.VerifiedAt, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("email %s: %w", user.Email, sentinel.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, userID.String())
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE email = $1`, email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		u          models.User
		userID     string
		verifiedAt sql.NullTime
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, email, password_hash, verified, verified_at, created_at FROM users `+where, arg).
		Scan(&userID, &u.Email, &u.PasswordHash, &u.Verified, &verifiedAt, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u.ID, err = id.ParseUserID(userID); err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.VerifiedAt = &t
	}
	return &u, nil
}

func (s *PostgresStore) MarkVerified(ctx context.Context, userID id.UserID, at time.Time) error {
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE users SET verified = true, verified_at = COALESCE(verified_at, $2)
		WHERE id = $1`, userID.String(), at)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
