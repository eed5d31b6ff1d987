package models

import "github.com/shopspring/decimal"

// RawProperty is a property row with its relations expanded, exactly as the
// data store returns it. Only Normalize reads it.
type RawProperty struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	Location    string `json:"location"`
	CountryCode string `json:"country_code"`
	// Coordinates is the serialized "(lng,lat)" point.
	Coordinates string `json:"coordinates"`
	Status      string `json:"status"`

	Countries         Relation[RawCountry]          `json:"countries"`
	PaymentSchedules  Relation[RawPaymentSchedule]  `json:"property_payment_schedules"`
	Details           Relation[RawDetails]          `json:"property_details"`
	RequiredDocuments Relation[RawRequiredDocument] `json:"required_documents"`
	Developers        Relation[RawDeveloper]        `json:"developers"`
}

type RawCountry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RawPaymentSchedule struct {
	InitialPayment decimal.Decimal `json:"initial_payment"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Duration       int             `json:"duration"`
}

type RawDetails struct {
	Surface      float64 `json:"surface" yaml:"surface"`
	Bedrooms     *int    `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms    *int    `json:"bathrooms" yaml:"bathrooms"`
	MatterportID *string `json:"matterport_id" yaml:"matterport_id"`
	FloorPlanURL *string `json:"floor_plan_url" yaml:"floor_plan_url"`
}

type RawRequiredDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RawDeveloper struct {
	ID          string                 `json:"id"`
	CompanyName string                 `json:"company_name"`
	LogoURL     string                 `json:"logo_url"`
	Description string                 `json:"description"`
	Website     string                 `json:"website"`
	Phone       string                 `json:"phone"`
	Email       string                 `json:"email"`
	Reviews     Relation[RawCountAggr] `json:"developer_reviews"`
}

// RawCountAggr is an aggregate count row ("developer_reviews(count)").
type RawCountAggr struct {
	Count int64 `json:"count"`
}
