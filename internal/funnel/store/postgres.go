package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teranga/internal/funnel/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
)

// PostgresStore persists profiles in user_profiles. Answer updates carry a
// "kyc_verified IS NULL" guard so a started verification freezes the row
// even against concurrent writers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `user_id, first_name, last_name, country, phone, professional_activity,
       revenue_range, has_eu_residency, kyc_verified, kyc_verified_at, created_at, updated_at`

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p          models.Profile
		userID     string
		verifiedAt sql.NullTime
	)
	err := row.Scan(&userID, &p.FirstName, &p.LastName, &p.Country, &p.Phone, &p.ProfessionalActivity,
		&p.RevenueRange, &p.HasEUResidency, &p.KYCVerified, &verifiedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.UserID, err = id.ParseUserID(userID); err != nil {
		return nil, fmt.Errorf("decode user id: %w", err)
	}
	if verifiedAt.Valid {
		p.KYCVerifiedAt = &verifiedAt.Time
	}
	return &p, nil
}

func (s *PostgresStore) FindProfile(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	p, err := scanProfile(txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return p, nil
}

// guarded runs an UPDATE ... RETURNING and maps an empty result to
// ErrNotFound or ErrInvalidState.
func (s *PostgresStore) guarded(ctx context.Context, userID id.UserID, query string, args ...any) (*models.Profile, error) {
	p, err := scanProfile(txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if _, ferr := s.FindProfile(ctx, userID); ferr != nil {
		return nil, ferr
	}
	return nil, sentinel.ErrInvalidState
}

func (s *PostgresStore) SavePersonal(ctx context.Context, userID id.UserID, info models.PersonalInfo, at time.Time) (*models.Profile, error) {
	return s.guarded(ctx, userID, `
		INSERT INTO user_profiles (user_id, last_name, first_name, country, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET last_name = EXCLUDED.last_name, first_name = EXCLUDED.first_name,
		    country = EXCLUDED.country, phone = EXCLUDED.phone, updated_at = EXCLUDED.updated_at
		WHERE user_profiles.kyc_verified IS NULL
		RETURNING `+profileColumns,
		userID.String(), info.LastName, info.FirstName, info.Country, info.Phone, at)
}

func (s *PostgresStore) SaveProfessional(ctx context.Context, userID id.UserID, info models.ProfessionalInfo, at time.Time) (*models.Profile, error) {
	return s.guarded(ctx, userID, `
		UPDATE user_profiles
		SET professional_activity = $2, revenue_range = $3, updated_at = $4
		WHERE user_id = $1 AND kyc_verified IS NULL
		RETURNING `+profileColumns,
		userID.String(), info.Activity, info.RevenueRange, at)
}

func (s *PostgresStore) SaveResidency(ctx context.Context, userID id.UserID, hasEUResidency bool, at time.Time) (*models.Profile, error) {
	return s.guarded(ctx, userID, `
		UPDATE user_profiles
		SET has_eu_residency = $2, updated_at = $3
		WHERE user_id = $1 AND kyc_verified IS NULL
		RETURNING `+profileColumns,
		userID.String(), hasEUResidency, at)
}

func (s *PostgresStore) MarkKYCVerified(ctx context.Context, userID id.UserID, at time.Time) (*models.Profile, error) {
	return s.guarded(ctx, userID, `
		UPDATE user_profiles
		SET kyc_verified = true, kyc_verified_at = COALESCE(kyc_verified_at, $2), updated_at = $2
		WHERE user_id = $1
		RETURNING `+profileColumns,
		userID.String(), at)
}

func (s *PostgresStore) MarkKYCInProgress(ctx context.Context, userID id.UserID, at time.Time) (*models.Profile, error) {
	return s.guarded(ctx, userID, `
		UPDATE user_profiles
		SET kyc_verified = false, updated_at = $2
		WHERE user_id = $1 AND kyc_verified IS DISTINCT FROM true
		RETURNING `+profileColumns,
		userID.String(), at)
}
