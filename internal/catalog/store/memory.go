package store

import (
	"context"
	"sort"
	"sync"

	"teranga/internal/catalog/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
)

// InMemory serves the catalog from a loaded fixture. Used by tests and by
// local runs without DATABASE_URL.
type InMemory struct {
	mu         sync.RWMutex
	properties []models.RawProperty
	developers map[string]DeveloperFixture
	order      []string
}

func NewInMemory() *InMemory {
	return &InMemory{developers: make(map[string]DeveloperFixture)}
}

// Load replaces the catalog with the fixture contents.
func (s *InMemory) Load(f *Fixture) {
	raws := f.rawProperties()
	created := make(map[string]int64, len(f.Properties))
	for _, p := range f.Properties {
		created[p.ID] = p.CreatedAt.UnixNano()
	}
	sort.SliceStable(raws, func(i, j int) bool {
		return created[raws[i].ID] > created[raws[j].ID]
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.properties = raws
	s.developers = make(map[string]DeveloperFixture, len(f.Developers))
	s.order = s.order[:0]
	for _, d := range f.Developers {
		s.developers[d.ID] = d
		s.order = append(s.order, d.ID)
	}
}

func (s *InMemory) ListProperties(_ context.Context, filter models.Filter) ([]models.RawProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RawProperty, 0, len(s.properties))
	for _, p := range s.properties {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InMemory) FindProperty(_ context.Context, propertyID id.PropertyID) (*models.RawProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := propertyID.String()
	for _, p := range s.properties {
		if p.ID == key {
			found := p
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindProperties(_ context.Context, ids []id.PropertyID) ([]models.RawProperty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]struct{}, len(ids))
	for _, pid := range ids {
		wanted[pid.String()] = struct{}{}
	}
	out := make([]models.RawProperty, 0, len(ids))
	for _, p := range s.properties {
		if _, ok := wanted[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InMemory) ListDeveloperSummaries(_ context.Context) ([]models.DeveloperSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DeveloperSummary, 0, len(s.order))
	for _, devID := range s.order {
		out = append(out, s.summaryLocked(s.developers[devID]))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, nil
}

func (s *InMemory) FindDeveloper(_ context.Context, developerID id.DeveloperID) (*models.Developer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.developers[developerID.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &models.Developer{
		ID:           d.ID,
		CompanyName:  d.CompanyName,
		LogoURL:      d.LogoURL,
		Description:  d.Description,
		Website:      d.Website,
		Phone:        d.Phone,
		Email:        d.Email,
		TotalReviews: int64(len(d.Reviews)),
	}, nil
}

func (s *InMemory) ListReviews(_ context.Context, developerID id.DeveloperID) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.developers[developerID.String()]
	if !ok {
		return []models.Review{}, nil
	}
	out := make([]models.Review, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		out = append(out, models.Review{
			ID:         r.ID,
			AuthorName: r.AuthorName,
			Rating:     r.Rating,
			Comment:    r.Comment,
			CreatedAt:  r.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) DeveloperStats(_ context.Context, developerID id.DeveloperID) (models.DeveloperStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summary := s.summaryLocked(s.developers[developerID.String()])
	return models.DeveloperStats{
		Sold:      summary.TotalProperties - summary.AvailableProperties,
		Available: summary.AvailableProperties,
	}, nil
}

func (s *InMemory) summaryLocked(d DeveloperFixture) models.DeveloperSummary {
	summary := models.DeveloperSummary{
		ID:           d.ID,
		CompanyName:  d.CompanyName,
		LogoURL:      d.LogoURL,
		Description:  d.Description,
		TotalReviews: int64(len(d.Reviews)),
	}
	reviews := make([]models.Review, 0, len(d.Reviews))
	for _, r := range d.Reviews {
		reviews = append(reviews, models.Review{Rating: r.Rating})
	}
	summary.AverageRating = models.AverageRating(reviews)
	if d.ID == "" {
		return summary
	}
	for _, p := range s.properties {
		dev, ok := p.Developers.First()
		if !ok || dev.ID != d.ID {
			continue
		}
		summary.TotalProperties++
		if p.Status == string(models.PropertyStatusAvailable) {
			summary.AvailableProperties++
		}
	}
	return summary
}
