package models

import "github.com/shopspring/decimal"

type PropertyType string

const (
	PropertyTypeLand  PropertyType = "land"
	PropertyTypeHouse PropertyType = "house"
)

func (t PropertyType) IsValid() bool {
	return t == PropertyTypeLand || t == PropertyTypeHouse
}

type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "available"
	PropertyStatusSold      PropertyStatus = "sold"
)

// Property is the canonical view of a catalog entry. It is rebuilt from raw
// rows on every fetch and never mutated by the buyer flow.
//
// Invariants:
//   - PaymentSchedule and Details are always populated
//   - a land property never carries bedrooms, bathrooms, a virtual tour or a floor plan
type Property struct {
	ID                string             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Type              PropertyType       `json:"type"`
	Price             int64              `json:"price"`
	ImageURL          string             `json:"imageUrl"`
	Location          string             `json:"location"`
	Country           Country            `json:"country"`
	Coordinates       Coordinates        `json:"coordinates"`
	Status            PropertyStatus     `json:"status"`
	PaymentSchedule   PaymentSchedule    `json:"paymentSchedule"`
	Details           Details            `json:"details"`
	RequiredDocuments []RequiredDocument `json:"requiredDocuments"`
	Developer         *Developer         `json:"developer,omitempty"`
}

func (p Property) IsAvailable() bool {
	return p.Status == PropertyStatusAvailable
}

type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PaymentSchedule is the financing plan: an initial payment then Duration
// monthly payments. Amounts are in the base currency (XOF).
type PaymentSchedule struct {
	InitialPayment decimal.Decimal `json:"initialPayment"`
	MonthlyPayment decimal.Decimal `json:"monthlyPayment"`
	Duration       int             `json:"duration"`
}

type Details struct {
	Surface      float64 `json:"surface"`
	Bedrooms     *int    `json:"bedrooms"`
	Bathrooms    *int    `json:"bathrooms"`
	MatterportID *string `json:"matterportId"`
	FloorPlanURL *string `json:"floorPlanUrl"`
}

type RequiredDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Developer struct {
	ID           string `json:"id"`
	CompanyName  string `json:"company_name"`
	LogoURL      string `json:"logo_url"`
	Description  string `json:"description"`
	Website      string `json:"website"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	TotalReviews int64  `json:"total_reviews"`
}
