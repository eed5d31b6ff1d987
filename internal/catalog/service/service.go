package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"teranga/internal/catalog/metrics"
	"teranga/internal/catalog/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/sentinel"
)

var tracer = otel.Tracer("teranga/catalog")

// Store is the read side of the property catalog. Implementations return
// backend rows in the RawProperty relation shape; only the service
// normalizes them.
type Store interface {
	ListProperties(ctx context.Context, filter models.Filter) ([]models.RawProperty, error)
	FindProperty(ctx context.Context, propertyID id.PropertyID) (*models.RawProperty, error)
	FindProperties(ctx context.Context, ids []id.PropertyID) ([]models.RawProperty, error)
	ListDeveloperSummaries(ctx context.Context) ([]models.DeveloperSummary, error)
	FindDeveloper(ctx context.Context, developerID id.DeveloperID) (*models.Developer, error)
	ListReviews(ctx context.Context, developerID id.DeveloperID) ([]models.Review, error)
	DeveloperStats(ctx context.Context, developerID id.DeveloperID) (models.DeveloperStats, error)
}

// Service serves normalized catalog views.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListProperties returns normalized properties matching filter, newest first.
func (s *Service) ListProperties(ctx context.Context, filter models.Filter) ([]models.Property, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "catalog.ListProperties")
	defer span.End()

	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	raws, err := s.store.ListProperties(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list properties")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	out := models.NormalizeAll(raws)
	span.SetAttributes(attribute.Int("catalog.count", len(out)))
	s.metrics.ObserveList(start, len(out))
	return out, nil
}

// GetProperty returns one normalized property.
func (s *Service) GetProperty(ctx context.Context, propertyID id.PropertyID) (*models.Property, error) {
	ctx, span := tracer.Start(ctx, "catalog.GetProperty",
		trace.WithAttributes(attribute.String("property.id", propertyID.String())))
	defer span.End()

	raw, err := s.store.FindProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "find property")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load property")
	}
	p := models.Normalize(*raw)
	return &p, nil
}

// GetProperties returns normalized properties for ids in catalog order.
// Unknown ids are skipped.
func (s *Service) GetProperties(ctx context.Context, ids []id.PropertyID) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	raws, err := s.store.FindProperties(ctx, ids)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load properties")
	}
	return models.NormalizeAll(raws), nil
}

func (s *Service) ListDevelopers(ctx context.Context) ([]models.DeveloperSummary, error) {
	summaries, err := s.store.ListDeveloperSummaries(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list developers")
	}
	return summaries, nil
}

// GetDeveloperProfile assembles the developer page. The four reads are
// independent and run concurrently; the first failure cancels the rest.
func (s *Service) GetDeveloperProfile(ctx context.Context, developerID id.DeveloperID) (*models.DeveloperProfile, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "catalog.GetDeveloperProfile")
	defer span.End()
	span.SetAttributes(attribute.String("developer.id", developerID.String()))

	var (
		developer *models.Developer
		raws      []models.RawProperty
		reviews   []models.Review
		stats     models.DeveloperStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		developer, err = s.store.FindDeveloper(gctx, developerID)
		return err
	})
	g.Go(func() error {
		var err error
		raws, err = s.store.ListProperties(gctx, models.Filter{DeveloperID: developerID.String()})
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = s.store.ListReviews(gctx, developerID)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.store.DeveloperStats(gctx, developerID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "developer not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "load developer profile")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load developer profile")
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	profile := &models.DeveloperProfile{
		Developer:  *developer,
		Properties: models.NormalizeAll(raws),
		Reviews:    reviews,
		Stats:      stats,
		Summary: models.DeveloperSummary{
			ID:                  developer.ID,
			CompanyName:         developer.CompanyName,
			LogoURL:             developer.LogoURL,
			Description:         developer.Description,
			TotalReviews:        int64(len(reviews)),
			TotalProperties:     stats.Sold + stats.Available,
			AvailableProperties: stats.Available,
			AverageRating:       models.AverageRating(reviews),
		},
	}
	s.metrics.ObserveProfile(start)
	return profile, nil
}

// DeveloperStats counts a developer's sold and available listings.
func (s *Service) DeveloperStats(ctx context.Context, developerID id.DeveloperID) (models.DeveloperStats, error) {
	if _, err := s.store.FindDeveloper(ctx, developerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.DeveloperStats{}, dErrors.New(dErrors.CodeNotFound, "developer not found")
		}
		return models.DeveloperStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load developer")
	}
	stats, err := s.store.DeveloperStats(ctx, developerID)
	if err != nil {
		return models.DeveloperStats{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count developer properties")
	}
	return stats, nil
}

// CheckMissingData lists properties whose details or payment schedule row
// is absent, before defaults hide the gap.
func (s *Service) CheckMissingData(ctx context.Context) (*models.MissingDataReport, error) {
	raws, err := s.store.ListProperties(ctx, models.Filter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	report := models.CheckMissing(raws)
	s.metrics.IncrementMissingDataChecks()
	if !report.IsClean() {
		s.logger.WarnContext(ctx, "catalog has incomplete properties",
			"missing_details", len(report.MissingDetails),
			"missing_payment_schedule", len(report.MissingPaymentSchedule),
		)
	}
	return &report, nil
}
