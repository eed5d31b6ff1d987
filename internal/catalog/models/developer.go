package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeveloperSummary is a directory entry with catalog aggregates.
type DeveloperSummary struct {
	ID                  string          `json:"id"`
	CompanyName         string          `json:"company_name"`
	LogoURL             string          `json:"logo_url"`
	Description         string          `json:"description"`
	TotalReviews        int64           `json:"total_reviews"`
	TotalProperties     int64           `json:"total_properties"`
	AvailableProperties int64           `json:"available_properties"`
	AverageRating       decimal.Decimal `json:"avg_rating"`
}

type Review struct {
	ID         string    `json:"id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// DeveloperStats counts a developer's listings by status.
type DeveloperStats struct {
	Sold      int64 `json:"sold"`
	Available int64 `json:"available"`
}

// DeveloperProfile is the developer page: the developer, its normalized
// properties, its reviews and listing stats.
type DeveloperProfile struct {
	Developer  Developer        `json:"developer"`
	Properties []Property       `json:"properties"`
	Reviews    []Review         `json:"reviews"`
	Stats      DeveloperStats   `json:"stats"`
	Summary    DeveloperSummary `json:"summary"`
}

// AverageRating returns the mean rating rounded to one decimal, zero when
// there are no reviews.
func AverageRating(reviews []Review) decimal.Decimal {
	if len(reviews) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range reviews {
		sum = sum.Add(decimal.NewFromInt(int64(r.Rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(reviews)))).Round(1)
}
