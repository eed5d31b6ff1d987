package store

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"teranga/internal/catalog/models"
)

// Fixture is the YAML catalog seed: reference countries, developers with
// their reviews, and properties with optional schedule and detail rows.
type Fixture struct {
	Countries  []CountryFixture   `yaml:"countries"`
	Developers []DeveloperFixture `yaml:"developers"`
	Properties []PropertyFixture  `yaml:"properties"`
}

type CountryFixture struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type DeveloperFixture struct {
	ID          string          `yaml:"id"`
	CompanyName string          `yaml:"company_name"`
	LogoURL     string          `yaml:"logo_url"`
	Description string          `yaml:"description"`
	Website     string          `yaml:"website"`
	Phone       string          `yaml:"phone"`
	Email       string          `yaml:"email"`
	Reviews     []ReviewFixture `yaml:"reviews"`
}

type ReviewFixture struct {
	ID         string    `yaml:"id"`
	AuthorName string    `yaml:"author_name"`
	Rating     int       `yaml:"rating"`
	Comment    string    `yaml:"comment"`
	CreatedAt  time.Time `yaml:"created_at"`
}

type PropertyFixture struct {
	ID                string             `yaml:"id"`
	Title             string             `yaml:"title"`
	Description       string             `yaml:"description"`
	Type              string             `yaml:"type"`
	Price             int64              `yaml:"price"`
	ImageURL          string             `yaml:"image_url"`
	Location          string             `yaml:"location"`
	CountryCode       string             `yaml:"country_code"`
	Coordinates       string             `yaml:"coordinates"`
	Status            string             `yaml:"status"`
	DeveloperID       string             `yaml:"developer_id"`
	PaymentSchedule   *ScheduleFixture   `yaml:"payment_schedule"`
	Details           *models.RawDetails `yaml:"details"`
	RequiredDocuments []DocumentFixture  `yaml:"required_documents"`
	CreatedAt         time.Time          `yaml:"created_at"`
}

type ScheduleFixture struct {
	InitialPayment string `yaml:"initial_payment"`
	MonthlyPayment string `yaml:"monthly_payment"`
	Duration       int    `yaml:"duration"`
}

type DocumentFixture struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadFixture decodes and validates a YAML seed.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFixtureFile opens and decodes a YAML seed file.
func LoadFixtureFile(path string) (*Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog fixture: %w", err)
	}
	defer file.Close()
	return LoadFixture(file)
}

// Validate checks ids, enums and references so seeding never half-applies.
func (f *Fixture) Validate() error {
	developers := make(map[string]struct{}, len(f.Developers))
	for _, d := range f.Developers {
		if _, err := uuid.Parse(d.ID); err != nil {
			return fmt.Errorf("developer %q: invalid id: %w", d.CompanyName, err)
		}
		for _, r := range d.Reviews {
			if _, err := uuid.Parse(r.ID); err != nil {
				return fmt.Errorf("developer %q review: invalid id: %w", d.CompanyName, err)
			}
			if r.Rating < 1 || r.Rating > 5 {
				return fmt.Errorf("developer %q review %s: rating must be 1-5", d.CompanyName, r.ID)
			}
		}
		developers[d.ID] = struct{}{}
	}
	for _, p := range f.Properties {
		if _, err := uuid.Parse(p.ID); err != nil {
			return fmt.Errorf("property %q: invalid id: %w", p.Title, err)
		}
		if !models.PropertyType(p.Type).IsValid() {
			return fmt.Errorf("property %q: unknown type %q", p.Title, p.Type)
		}
		if p.Status != string(models.PropertyStatusAvailable) && p.Status != string(models.PropertyStatusSold) {
			return fmt.Errorf("property %q: unknown status %q", p.Title, p.Status)
		}
		if p.DeveloperID != "" {
			if _, ok := developers[p.DeveloperID]; !ok {
				return fmt.Errorf("property %q: unknown developer %s", p.Title, p.DeveloperID)
			}
		}
		if s := p.PaymentSchedule; s != nil {
			if _, err := s.amounts(); err != nil {
				return fmt.Errorf("property %q: %w", p.Title, err)
			}
		}
	}
	return nil
}

func (s ScheduleFixture) amounts() (models.RawPaymentSchedule, error) {
	out := models.RawPaymentSchedule{Duration: s.Duration}
	var err error
	if s.InitialPayment != "" {
		if out.InitialPayment, err = decimal.NewFromString(s.InitialPayment); err != nil {
			return out, fmt.Errorf("initial_payment: %w", err)
		}
	}
	if s.MonthlyPayment != "" {
		if out.MonthlyPayment, err = decimal.NewFromString(s.MonthlyPayment); err != nil {
			return out, fmt.Errorf("monthly_payment: %w", err)
		}
	}
	return out, nil
}

// rawProperties expands the fixture into the relation shape a query returns.
func (f *Fixture) rawProperties() []models.RawProperty {
	countries := make(map[string]models.RawCountry, len(f.Countries))
	for _, c := range f.Countries {
		countries[c.Code] = models.RawCountry{Code: c.Code, Name: c.Name}
	}
	developers := make(map[string]models.RawDeveloper, len(f.Developers))
	for _, d := range f.Developers {
		developers[d.ID] = d.raw()
	}

	out := make([]models.RawProperty, 0, len(f.Properties))
	for _, p := range f.Properties {
		raw := models.RawProperty{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Type:        p.Type,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Location:    p.Location,
			CountryCode: p.CountryCode,
			Coordinates: p.Coordinates,
			Status:      p.Status,
		}
		if c, ok := countries[p.CountryCode]; ok {
			raw.Countries = models.One(c)
		}
		if p.PaymentSchedule != nil {
			schedule, _ := p.PaymentSchedule.amounts()
			raw.PaymentSchedules = models.One(schedule)
		}
		if p.Details != nil {
			raw.Details = models.One(*p.Details)
		}
		docs := make([]models.RawRequiredDocument, 0, len(p.RequiredDocuments))
		for _, d := range p.RequiredDocuments {
			docs = append(docs, models.RawRequiredDocument{Name: d.Name, Description: d.Description})
		}
		raw.RequiredDocuments = models.Many(docs...)
		if d, ok := developers[p.DeveloperID]; ok {
			raw.Developers = models.One(d)
		}
		out = append(out, raw)
	}
	return out
}

func (d DeveloperFixture) raw() models.RawDeveloper {
	return models.RawDeveloper{
		ID:          d.ID,
		CompanyName: d.CompanyName,
		LogoURL:     d.LogoURL,
		Description: d.Description,
		Website:     d.Website,
		Phone:       d.Phone,
		Email:       d.Email,
		Reviews:     models.One(models.RawCountAggr{Count: int64(len(d.Reviews))}),
	}
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
