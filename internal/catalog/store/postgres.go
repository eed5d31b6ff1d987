package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"teranga/internal/catalog/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
)

// PostgresStore reads the catalog with relations expanded as JSON arrays, the
// same shape a relation-embedding backend returns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const propertySelect = `
SELECT p.id, p.title, COALESCE(p.description, ''), p.type, p.price, COALESCE(p.image_url, ''),
       p.location, p.country_code, COALESCE(p.coordinates, ''), p.status,
       COALESCE((SELECT json_agg(json_build_object('code', c.code, 'name', c.name))
                 FROM countries c WHERE c.code = p.country_code), '[]'::json),
       COALESCE((SELECT json_agg(json_build_object(
                    'initial_payment', s.initial_payment,
                    'monthly_payment', s.monthly_payment,
                    'duration', s.duration))
                 FROM property_payment_schedules s WHERE s.property_id = p.id), '[]'::json),
       COALESCE((SELECT json_agg(json_build_object(
                    'surface', d.surface,
                    'bedrooms', d.bedrooms,
                    'bathrooms', d.bathrooms,
                    'matterport_id', d.matterport_id,
                    'floor_plan_url', d.floor_plan_url))
                 FROM property_details d WHERE d.property_id = p.id), '[]'::json),
       COALESCE((SELECT json_agg(json_build_object('name', r.name, 'description', r.description) ORDER BY r.position)
                 FROM required_documents r WHERE r.property_id = p.id), '[]'::json),
       COALESCE((SELECT json_agg(json_build_object(
                    'id', dv.id,
                    'company_name', dv.company_name,
                    'logo_url', COALESCE(dv.logo_url, ''),
                    'description', COALESCE(dv.description, ''),
                    'website', COALESCE(dv.website, ''),
                    'phone', COALESCE(dv.phone, ''),
                    'email', COALESCE(dv.email, ''),
                    'developer_reviews', json_build_array(json_build_object(
                        'count', (SELECT count(*) FROM developer_reviews rv WHERE rv.developer_id = dv.id)))))
                 FROM developers dv WHERE dv.id = p.developer_id), '[]'::json)
FROM properties p`

func (s *PostgresStore) ListProperties(ctx context.Context, filter models.Filter) ([]models.RawProperty, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Type != "" {
		where = append(where, "p.type = "+arg(string(filter.Type)))
	}
	if filter.CountryCode != "" {
		where = append(where, "p.country_code = "+arg(filter.CountryCode))
	}
	if filter.MinPrice > 0 {
		where = append(where, "p.price >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		where = append(where, "p.price <= "+arg(filter.MaxPrice))
	}
	if filter.DeveloperID != "" {
		where = append(where, "p.developer_id::text = "+arg(filter.DeveloperID))
	}
	if filter.Search != "" {
		pattern := arg("%" + escapeLike(filter.Search) + "%")
		where = append(where, "(p.title ILIKE "+pattern+" OR p.location ILIKE "+pattern+")")
	}

	query := propertySelect
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY p.created_at DESC, p.id"
	return s.queryProperties(ctx, query, args...)
}

func (s *PostgresStore) FindProperty(ctx context.Context, propertyID id.PropertyID) (*models.RawProperty, error) {
	rows, err := s.queryProperties(ctx, propertySelect+"\nWHERE p.id = $1", propertyID.String())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return &rows[0], nil
}

func (s *PostgresStore) FindProperties(ctx context.Context, ids []id.PropertyID) ([]models.RawProperty, error) {
	if len(ids) == 0 {
		return []models.RawProperty{}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, pid := range ids {
		keys = append(keys, pid.String())
	}
	return s.queryProperties(ctx, propertySelect+"\nWHERE p.id = ANY($1::uuid[])\nORDER BY p.created_at DESC", pq.Array(keys))
}

func (s *PostgresStore) queryProperties(ctx context.Context, query string, args ...any) ([]models.RawProperty, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	out := []models.RawProperty{}
	for rows.Next() {
		var (
			raw                                            models.RawProperty
			countries, schedules, details, docs, developer []byte
		)
		if err := rows.Scan(
			&raw.ID, &raw.Title, &raw.Description, &raw.Type, &raw.Price, &raw.ImageURL,
			&raw.Location, &raw.CountryCode, &raw.Coordinates, &raw.Status,
			&countries, &schedules, &details, &docs, &developer,
		); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		for _, rel := range []struct {
			data []byte
			dst  json.Unmarshaler
		}{
			{countries, &raw.Countries},
			{schedules, &raw.PaymentSchedules},
			{details, &raw.Details},
			{docs, &raw.RequiredDocuments},
			{developer, &raw.Developers},
		} {
			if err := rel.dst.UnmarshalJSON(rel.data); err != nil {
				return nil, fmt.Errorf("decode relation for property %s: %w", raw.ID, err)
			}
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListDeveloperSummaries(ctx context.Context) ([]models.DeveloperSummary, error) {
	query := `
		SELECT d.id, d.company_name, COALESCE(d.logo_url, ''), COALESCE(d.description, ''),
		       (SELECT count(*) FROM developer_reviews r WHERE r.developer_id = d.id),
		       (SELECT count(*) FROM properties p WHERE p.developer_id = d.id),
		       (SELECT count(*) FROM properties p WHERE p.developer_id = d.id AND p.status = 'available'),
		       COALESCE((SELECT round(avg(r.rating)::numeric, 1) FROM developer_reviews r WHERE r.developer_id = d.id), 0)
		FROM developers d
		ORDER BY d.company_name
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query developers: %w", err)
	}
	defer rows.Close()

	out := []models.DeveloperSummary{}
	for rows.Next() {
		var d models.DeveloperSummary
		if err := rows.Scan(&d.ID, &d.CompanyName, &d.LogoURL, &d.Description,
			&d.TotalReviews, &d.TotalProperties, &d.AvailableProperties, &d.AverageRating); err != nil {
			return nil, fmt.Errorf("scan developer: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate developers: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindDeveloper(ctx context.Context, developerID id.DeveloperID) (*models.Developer, error) {
	query := `
		SELECT d.id, d.company_name, COALESCE(d.logo_url, ''), COALESCE(d.description, ''),
		       COALESCE(d.website, ''), COALESCE(d.phone, ''), COALESCE(d.email, ''),
		       (SELECT count(*) FROM developer_reviews r WHERE r.developer_id = d.id)
		FROM developers d
		WHERE d.id = $1
	`
	var d models.Developer
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, developerID.String()).Scan(
		&d.ID, &d.CompanyName, &d.LogoURL, &d.Description, &d.Website, &d.Phone, &d.Email, &d.TotalReviews)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find developer: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) ListReviews(ctx context.Context, developerID id.DeveloperID) ([]models.Review, error) {
	query := `
		SELECT id, author_name, rating, comment, created_at
		FROM developer_reviews
		WHERE developer_id = $1
		ORDER BY created_at DESC
	`
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, query, developerID.String())
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.AuthorName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) DeveloperStats(ctx context.Context, developerID id.DeveloperID) (models.DeveloperStats, error) {
	query := `
		SELECT count(*) FILTER (WHERE status = 'sold'),
		       count(*) FILTER (WHERE status = 'available')
		FROM properties
		WHERE developer_id = $1
	`
	var stats models.DeveloperStats
	if err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, query, developerID.String()).Scan(&stats.Sold, &stats.Available); err != nil {
		return models.DeveloperStats{}, fmt.Errorf("count developer properties: %w", err)
	}
	return stats, nil
}

// Seed upserts the fixture in one transaction.
func (s *PostgresStore) Seed(ctx context.Context, f *Fixture) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		for _, c := range f.Countries {
			if _, err := exec.ExecContext(ctx, `
				INSERT INTO countries (code, name) VALUES ($1, $2)
				ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`, c.Code, c.Name); err != nil {
				return fmt.Errorf("seed country %s: %w", c.Code, err)
			}
		}
		for _, d := range f.Developers {
			if _, err := exec.ExecContext(ctx, `
				INSERT INTO developers (id, company_name, logo_url, description, website, phone, email)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (id) DO UPDATE SET
					company_name = EXCLUDED.company_name, logo_url = EXCLUDED.logo_url,
					description = EXCLUDED.description, website = EXCLUDED.website,
					phone = EXCLUDED.phone, email = EXCLUDED.email`,
				d.ID, d.CompanyName, d.LogoURL, d.Description, d.Website, d.Phone, d.Email); err != nil {
				return fmt.Errorf("seed developer %s: %w", d.ID, err)
			}
			for _, r := range d.Reviews {
				if _, err := exec.ExecContext(ctx, `
					INSERT INTO developer_reviews (id, developer_id, author_name, rating, comment, created_at)
					VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
					ON CONFLICT (id) DO NOTHING`,
					r.ID, d.ID, r.AuthorName, r.Rating, r.Comment, nullTime(r.CreatedAt)); err != nil {
					return fmt.Errorf("seed review %s: %w", r.ID, err)
				}
			}
		}
		for _, p := range f.Properties {
			if err := seedProperty(ctx, exec, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func seedProperty(ctx context.Context, exec txcontext.Executor, p PropertyFixture) error {
	var developerID any
	if p.DeveloperID != "" {
		developerID = p.DeveloperID
	}
	if _, err := exec.ExecContext(ctx, `
		INSERT INTO properties (id, title, description, type, price, image_url, location,
		                        country_code, coordinates, status, developer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''), $10, $11, COALESCE($12, now()))
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title, description = EXCLUDED.description, type = EXCLUDED.type,
			price = EXCLUDED.price, image_url = EXCLUDED.image_url, location = EXCLUDED.location,
			country_code = EXCLUDED.country_code, coordinates = EXCLUDED.coordinates,
			status = EXCLUDED.status, developer_id = EXCLUDED.developer_id`,
		p.ID, p.Title, p.Description, p.Type, p.Price, p.ImageURL, p.Location,
		p.CountryCode, p.Coordinates, p.Status, developerID, nullTime(p.CreatedAt)); err != nil {
		return fmt.Errorf("seed property %s: %w", p.ID, err)
	}

	if p.PaymentSchedule != nil {
		schedule, err := p.PaymentSchedule.amounts()
		if err != nil {
			return fmt.Errorf("seed property %s: %w", p.ID, err)
		}
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO property_payment_schedules (property_id, initial_payment, monthly_payment, duration)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (property_id) DO UPDATE SET
				initial_payment = EXCLUDED.initial_payment,
				monthly_payment = EXCLUDED.monthly_payment,
				duration = EXCLUDED.duration`,
			p.ID, schedule.InitialPayment, schedule.MonthlyPayment, schedule.Duration); err != nil {
			return fmt.Errorf("seed schedule %s: %w", p.ID, err)
		}
	}

	if d := p.Details; d != nil {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO property_details (property_id, surface, bedrooms, bathrooms, matterport_id, floor_plan_url)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (property_id) DO UPDATE SET
				surface = EXCLUDED.surface, bedrooms = EXCLUDED.bedrooms, bathrooms = EXCLUDED.bathrooms,
				matterport_id = EXCLUDED.matterport_id, floor_plan_url = EXCLUDED.floor_plan_url`,
			p.ID, d.Surface, d.Bedrooms, d.Bathrooms, d.MatterportID, d.FloorPlanURL); err != nil {
			return fmt.Errorf("seed details %s: %w", p.ID, err)
		}
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM required_documents WHERE property_id = $1`, p.ID); err != nil {
		return fmt.Errorf("reset documents %s: %w", p.ID, err)
	}
	for i, doc := range p.RequiredDocuments {
		if _, err := exec.ExecContext(ctx, `
			INSERT INTO required_documents (property_id, position, name, description)
			VALUES ($1, $2, $3, $4)`, p.ID, i, doc.Name, doc.Description); err != nil {
			return fmt.Errorf("seed document %s/%d: %w", p.ID, i, err)
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
