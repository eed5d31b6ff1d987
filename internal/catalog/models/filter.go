package models

import (
	"strings"

	dErrors "teranga/pkg/domain-errors"
)

// Filter narrows property listings. Zero values mean "no constraint".
type Filter struct {
	Type        PropertyType
	CountryCode string
	MinPrice    int64
	MaxPrice    int64
	// Search matches title or location, case-insensitively.
	Search      string
	DeveloperID string
}

// Normalize trims free-text fields and upper-cases the country code.
func (f *Filter) Normalize() {
	f.CountryCode = strings.ToUpper(strings.TrimSpace(f.CountryCode))
	f.Search = strings.TrimSpace(f.Search)
	f.DeveloperID = strings.TrimSpace(f.DeveloperID)
}

func (f Filter) Validate() error {
	if f.Type != "" && !f.Type.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "type must be land or house")
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return dErrors.New(dErrors.CodeValidation, "price bounds must be positive")
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		return dErrors.New(dErrors.CodeValidation, "minPrice cannot exceed maxPrice")
	}
	return nil
}

// Matches applies the filter to a raw row. Used by stores without a query engine.
func (f Filter) Matches(raw RawProperty) bool {
	if f.Type != "" && PropertyType(raw.Type) != f.Type {
		return false
	}
	if f.CountryCode != "" && !strings.EqualFold(raw.CountryCode, f.CountryCode) {
		return false
	}
	if f.MinPrice > 0 && raw.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && raw.Price > f.MaxPrice {
		return false
	}
	if f.DeveloperID != "" {
		dev, ok := raw.Developers.First()
		if !ok || dev.ID != f.DeveloperID {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(raw.Title), needle) &&
			!strings.Contains(strings.ToLower(raw.Location), needle) {
			return false
		}
	}
	return true
}
