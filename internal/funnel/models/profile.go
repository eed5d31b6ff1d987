package models

import (
	"slices"
	"strings"
	"time"

	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
)

// EuropeanCallingCodes are the phone prefixes that route a buyer through
// the residency step: France, Belgium, Germany.
var EuropeanCallingCodes = []string{"+33", "+32", "+49"}

// Countries offered on the personal step, keyed by ISO code.
var Countries = map[string]string{
	"ML": "Mali",
	"SN": "Sénégal",
	"CI": "Côte d'Ivoire",
	"FR": "France",
	"BE": "Belgique",
	"DE": "Allemagne",
}

// CountryName returns the display name for code, or code itself.
func CountryName(code string) string {
	if name, ok := Countries[code]; ok {
		return name
	}
	return code
}

var Activities = []string{
	"Salarié du secteur privé",
	"Fonctionnaire",
	"Entrepreneur",
	"Profession libérale",
	"Commerçant",
	"Retraité",
	"Autre",
}

var RevenueRanges = []string{
	"Moins de 500 000 FCFA",
	"500 000 - 1 000 000 FCFA",
	"1 000 000 - 2 000 000 FCFA",
	"2 000 000 - 5 000 000 FCFA",
	"Plus de 5 000 000 FCFA",
}

// KYCStatus is derived from Profile.KYCVerified.
type KYCStatus string

const (
	KYCNotStarted KYCStatus = "not_started"
	KYCInProgress KYCStatus = "in_progress"
	KYCVerified   KYCStatus = "verified"
)

// Profile is the buyer's funnel record, one per account.
type Profile struct {
	UserID               id.UserID  `json:"user_id"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Country              string     `json:"country"`
	Phone                string     `json:"phone"`
	ProfessionalActivity string     `json:"professional_activity"`
	RevenueRange         string     `json:"revenue_range"`
	HasEUResidency       Tristate   `json:"has_eu_residency"`
	KYCVerified          Tristate   `json:"kyc_verified"`
	KYCVerifiedAt        *time.Time `json:"kyc_verified_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// KYCStatus maps the tristate: unset is not started, false is in progress.
func (p *Profile) KYCStatus() KYCStatus {
	if p == nil {
		return KYCNotStarted
	}
	switch {
	case p.KYCVerified.IsTrue():
		return KYCVerified
	case p.KYCVerified.IsFalse():
		return KYCInProgress
	default:
		return KYCNotStarted
	}
}

// IsLocked reports whether funnel answers are frozen by a started or
// completed identity verification.
func (p *Profile) IsLocked() bool {
	return p.KYCStatus() != KYCNotStarted
}

func (p *Profile) HasPersonalInfo() bool {
	return p != nil && p.FirstName != "" && p.LastName != "" && p.Country != "" && p.Phone != ""
}

func (p *Profile) HasProfessionalInfo() bool {
	return p != nil && p.ProfessionalActivity != "" && p.RevenueRange != ""
}

// HasEuropeanPhone reports whether the phone starts with a European
// calling code.
func (p *Profile) HasEuropeanPhone() bool {
	if p == nil {
		return false
	}
	phone := strings.TrimSpace(p.Phone)
	for _, code := range EuropeanCallingCodes {
		if strings.HasPrefix(phone, code) {
			return true
		}
	}
	return false
}

// Completion is the share of the six answer fields filled, 0-100.
func (p *Profile) Completion() int {
	if p == nil {
		return 0
	}
	fields := []string{p.FirstName, p.LastName, p.Country, p.Phone, p.ProfessionalActivity, p.RevenueRange}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return (filled*100 + len(fields)/2) / len(fields)
}

// PersonalInfo is the personal step form.
type PersonalInfo struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

func (r *PersonalInfo) Normalize() {
	r.LastName = strings.TrimSpace(r.LastName)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.Country = strings.ToUpper(strings.TrimSpace(r.Country))
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r PersonalInfo) Validate() error {
	switch {
	case r.LastName == "":
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	case r.FirstName == "":
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	case r.Country == "":
		return dErrors.New(dErrors.CodeValidation, "country is required")
	case r.Phone == "":
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if _, ok := Countries[r.Country]; !ok {
		return dErrors.New(dErrors.CodeValidation, "country is not supported")
	}
	return nil
}

// ProfessionalInfo is the professional step form.
type ProfessionalInfo struct {
	Activity     string `json:"professional_activity"`
	RevenueRange string `json:"revenue_range"`
}

func (r *ProfessionalInfo) Normalize() {
	r.Activity = strings.TrimSpace(r.Activity)
	r.RevenueRange = strings.TrimSpace(r.RevenueRange)
}

func (r ProfessionalInfo) Validate() error {
	if !slices.Contains(Activities, r.Activity) {
		return dErrors.New(dErrors.CodeValidation, "professional_activity must be one of the listed activities")
	}
	if !slices.Contains(RevenueRanges, r.RevenueRange) {
		return dErrors.New(dErrors.CodeValidation, "revenue_range must be one of the listed ranges")
	}
	return nil
}
