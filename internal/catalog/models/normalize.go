package models

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// PlaceholderImageURL is served for properties without an image.
	PlaceholderImageURL = "https://via.placeholder.com/800x600?text=No+Image"
	// DefaultMatterportID is the demo virtual tour shown for houses without one.
	DefaultMatterportID = "YpKmWx9vLs3"
	// DefaultFloorPlanURL is the demo floor plan shown for houses without one.
	DefaultFloorPlanURL = "https://images.unsplash.com/photo-1600607687939-ce8a6c25118c?auto=format&fit=crop&q=80&w=1200"

	// DefaultScheduleMonths is the amortization period of a synthesized schedule.
	DefaultScheduleMonths = 36
)

var (
	downPaymentShare = decimal.RequireFromString("0.2")
	financedShare    = decimal.RequireFromString("0.8")
)

// Normalize converts an expanded property row into the canonical Property.
// It is pure: the same input always yields the same output and raw is not modified.
func Normalize(raw RawProperty) Property {
	imageURL := raw.ImageURL
	if imageURL == "" {
		imageURL = PlaceholderImageURL
	}

	return Property{
		ID:                raw.ID,
		Title:             raw.Title,
		Description:       raw.Description,
		Type:              PropertyType(raw.Type),
		Price:             raw.Price,
		ImageURL:          imageURL,
		Location:          raw.Location,
		Country:           normalizeCountry(raw),
		Coordinates:       ParseCoordinates(raw.Coordinates),
		Status:            PropertyStatus(raw.Status),
		PaymentSchedule:   normalizeSchedule(raw),
		Details:           normalizeDetails(raw),
		RequiredDocuments: normalizeDocuments(raw),
		Developer:         normalizeDeveloper(raw),
	}
}

// NormalizeAll normalizes rows in order.
func NormalizeAll(raws []RawProperty) []Property {
	out := make([]Property, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw))
	}
	return out
}

func normalizeCountry(raw RawProperty) Country {
	if c, ok := raw.Countries.First(); ok {
		return Country{Code: c.Code, Name: c.Name}
	}
	return Country{Code: raw.CountryCode, Name: raw.CountryCode}
}

// ParseCoordinates reads the stored "(lng,lat)" point and swaps it into
// {lat, lng}. Absent or malformed input yields the origin.
func ParseCoordinates(point string) Coordinates {
	point = strings.TrimSpace(point)
	point = strings.TrimSuffix(strings.TrimPrefix(point, "("), ")")
	parts := strings.Split(point, ",")
	if len(parts) != 2 {
		return Coordinates{}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}
	}
	return Coordinates{Lat: lat, Lng: lng}
}

// DefaultSchedule is a 20% down payment with the remainder over 36 months.
func DefaultSchedule(price int64) PaymentSchedule {
	p := decimal.NewFromInt(price)
	return PaymentSchedule{
		InitialPayment: p.Mul(downPaymentShare),
		MonthlyPayment: p.Mul(financedShare).Div(decimal.NewFromInt(DefaultScheduleMonths)),
		Duration:       DefaultScheduleMonths,
	}
}

// normalizeSchedule falls back field by field: a zero amount or duration in
// the stored schedule is treated as missing.
func normalizeSchedule(raw RawProperty) PaymentSchedule {
	schedule := DefaultSchedule(raw.Price)
	stored, ok := raw.PaymentSchedules.First()
	if !ok {
		return schedule
	}
	if !stored.InitialPayment.IsZero() {
		schedule.InitialPayment = stored.InitialPayment
	}
	if !stored.MonthlyPayment.IsZero() {
		schedule.MonthlyPayment = stored.MonthlyPayment
	}
	if stored.Duration != 0 {
		schedule.Duration = stored.Duration
	}
	return schedule
}

// DefaultDetails returns the per-type details used when a property has none.
func DefaultDetails(t PropertyType) Details {
	if t == PropertyTypeHouse {
		return Details{Surface: 200, Bedrooms: intPtr(3), Bathrooms: intPtr(2)}
	}
	return Details{Surface: 500}
}

func normalizeDetails(raw RawProperty) Details {
	kind := PropertyType(raw.Type)
	details := DefaultDetails(kind)
	stored, ok := raw.Details.First()
	if !ok {
		return details
	}

	if stored.Surface != 0 {
		details.Surface = stored.Surface
	}
	if kind != PropertyTypeHouse {
		// land never carries rooms, tours or floor plans
		return details
	}
	if stored.Bedrooms != nil && *stored.Bedrooms != 0 {
		details.Bedrooms = intPtr(*stored.Bedrooms)
	}
	if stored.Bathrooms != nil && *stored.Bathrooms != 0 {
		details.Bathrooms = intPtr(*stored.Bathrooms)
	}
	details.MatterportID = stringPtr(DefaultMatterportID)
	if stored.MatterportID != nil && *stored.MatterportID != "" {
		details.MatterportID = stringPtr(*stored.MatterportID)
	}
	details.FloorPlanURL = stringPtr(DefaultFloorPlanURL)
	if stored.FloorPlanURL != nil && *stored.FloorPlanURL != "" {
		details.FloorPlanURL = stringPtr(*stored.FloorPlanURL)
	}
	return details
}

func normalizeDocuments(raw RawProperty) []RequiredDocument {
	docs := raw.RequiredDocuments.All()
	out := make([]RequiredDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, RequiredDocument{Name: d.Name, Description: d.Description})
	}
	return out
}

func normalizeDeveloper(raw RawProperty) *Developer {
	d, ok := raw.Developers.First()
	if !ok {
		return nil
	}
	var total int64
	if reviews, ok := d.Reviews.First(); ok {
		total = reviews.Count
	}
	return &Developer{
		ID:           d.ID,
		CompanyName:  d.CompanyName,
		LogoURL:      d.LogoURL,
		Description:  d.Description,
		Website:      d.Website,
		Phone:        d.Phone,
		Email:        d.Email,
		TotalReviews: total,
	}
}

func intPtr(v int) *int          { return &v }
func stringPtr(v string) *string { return &v }
