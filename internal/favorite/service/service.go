package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	catalog "teranga/internal/catalog/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/requestcontext"
)

var tracer = otel.Tracer("teranga/favorite")

type Store interface {
	Exists(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error)
	Add(ctx context.Context, userID id.UserID, propertyID id.PropertyID, at time.Time) error
	Remove(ctx context.Context, userID id.UserID, propertyID id.PropertyID) error
	ListPropertyIDs(ctx context.Context, userID id.UserID) ([]id.PropertyID, error)
}

type Catalog interface {
	GetProperty(ctx context.Context, propertyID id.PropertyID) (*catalog.Property, error)
	GetProperties(ctx context.Context, ids []id.PropertyID) ([]catalog.Property, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service toggles and lists a buyer's favorite properties.
type Service struct {
	store   Store
	catalog Catalog
	logger  *slog.Logger
	auditor AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

func New(store Store, catalog Catalog, opts ...Option) *Service {
	s := &Service{store: store, catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toggle flips the favorite and returns the new state. The insert ignores an
// existing row and the delete ignores a missing one, so racing toggles settle
// without errors.
func (s *Service) Toggle(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error) {
	ctx, span := tracer.Start(ctx, "favorite.Toggle",
		trace.WithAttributes(attribute.String("property_id", propertyID.String())))
	defer span.End()

	if _, err := s.catalog.GetProperty(ctx, propertyID); err != nil {
		return false, err
	}
	exists, err := s.store.Exists(ctx, userID, propertyID)
	if err != nil {
		span.RecordError(err)
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read favorite")
	}

	if exists {
		err = s.store.Remove(ctx, userID, propertyID)
	} else {
		err = s.store.Add(ctx, userID, propertyID, requestcontext.Now(ctx))
	}
	if err != nil {
		span.RecordError(err)
		return exists, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update favorite")
	}

	state := !exists
	if s.auditor != nil {
		reason := "removed"
		if state {
			reason = "added"
		}
		if err := s.auditor.Emit(ctx, audit.Event{
			UserID:  userID,
			Subject: propertyID.String(),
			Action:  string(audit.EventFavoriteToggled),
			Reason:  reason,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
		}
	}
	return state, nil
}

func (s *Service) IsFavorite(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error) {
	ok, err := s.store.Exists(ctx, userID, propertyID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read favorite")
	}
	return ok, nil
}

// List returns the favorite properties, most recently added first.
func (s *Service) List(ctx context.Context, userID id.UserID) ([]catalog.Property, error) {
	ctx, span := tracer.Start(ctx, "favorite.List")
	defer span.End()

	ids, err := s.store.ListPropertyIDs(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list favorites")
	}
	props, err := s.catalog.GetProperties(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]catalog.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}
	out := make([]catalog.Property, 0, len(ids))
	for _, pid := range ids {
		if p, ok := byID[pid.String()]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
