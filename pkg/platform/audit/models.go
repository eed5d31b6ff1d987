package audit

import (
	"context"
	"time"

	id "teranga/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// Downstream consumers route and retain by category.
type EventCategory string

const (
	// CategoryCompliance covers events with legal or contractual weight:
	// account creation, identity verification, payments.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to account security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity useful for product analytics
	// and debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	// Subject is the entity acted on: a purchase, property or funnel step.
	Subject string
	Action  string
	Reason  string
	// RequestID and DeviceLabel are filled from the request context when empty.
	RequestID   string
	DeviceLabel string
}

type AuditEvent string

const (
	// Account events
	EventUserCreated        AuditEvent = "user_created"
	EventUserVerified       AuditEvent = "user_verified"
	EventVerificationResent AuditEvent = "verification_code_resent"
	EventUserSignedIn       AuditEvent = "user_signed_in"
	EventUserSignedOut      AuditEvent = "user_signed_out"
	EventAuthFailed         AuditEvent = "auth_failed"
	EventVerificationFailed AuditEvent = "verification_failed"

	// Funnel events
	EventProfileUpdated AuditEvent = "profile_updated"
	EventKYCStarted     AuditEvent = "kyc_started"
	EventKYCSubmitted   AuditEvent = "kyc_submitted"

	// Purchase events
	EventPurchaseInitiated     AuditEvent = "purchase_initiated"
	EventPurchaseStatusChanged AuditEvent = "purchase_status_changed"
	EventPurchasePaid          AuditEvent = "purchase_paid"
	EventLoanApplicationFiled  AuditEvent = "loan_application_submitted"
	EventPurchaseDeleted       AuditEvent = "purchase_deleted"
	EventPurchaseMessagePosted AuditEvent = "purchase_message_posted"

	// Catalog and favorites
	EventFavoriteToggled AuditEvent = "favorite_toggled"
	EventCatalogSeeded   AuditEvent = "catalog_seeded"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated:          CategoryCompliance,
	EventUserVerified:         CategoryCompliance,
	EventKYCSubmitted:         CategoryCompliance,
	EventPurchaseInitiated:    CategoryCompliance,
	EventPurchasePaid:         CategoryCompliance,
	EventLoanApplicationFiled: CategoryCompliance,
	EventPurchaseDeleted:      CategoryCompliance,

	EventAuthFailed:         CategorySecurity,
	EventVerificationFailed: CategorySecurity,
	EventUserSignedOut:      CategorySecurity,

	EventUserSignedIn:          CategoryOperations,
	EventVerificationResent:    CategoryOperations,
	EventProfileUpdated:        CategoryOperations,
	EventKYCStarted:            CategoryOperations,
	EventPurchaseStatusChanged: CategoryOperations,
	EventPurchaseMessagePosted: CategoryOperations,
	EventFavoriteToggled:       CategoryOperations,
	EventCatalogSeeded:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. The Postgres implementation is an outbox.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// OutboxEntry is a persisted event awaiting relay.
type OutboxEntry struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

// Outbox is the relay's view of the store.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}

// Payload is the JSON document written to the outbox and published as the
// Kafka record value.
type Payload struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	UserID      string `json:"user_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Action      string `json:"action"`
	Reason      string `json:"reason,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	DeviceLabel string `json:"device_label,omitempty"`
}

// NewPayload derives the outbox document for event. The category always
// comes from the action.
func NewPayload(eventID string, event Event) Payload {
	p := Payload{
		ID:          eventID,
		Category:    string(AuditEvent(event.Action).Category()),
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339Nano),
		Subject:     event.Subject,
		Action:      event.Action,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
		DeviceLabel: event.DeviceLabel,
	}
	if !event.UserID.IsNil() {
		p.UserID = event.UserID.String()
	}
	return p
}

// Event converts a payload back into an Event.
func (p Payload) Event() Event {
	e := Event{
		Category:    EventCategory(p.Category),
		Subject:     p.Subject,
		Action:      p.Action,
		Reason:      p.Reason,
		RequestID:   p.RequestID,
		DeviceLabel: p.DeviceLabel,
	}
	if ts, err := time.Parse(time.RFC3339Nano, p.Timestamp); err == nil {
		e.Timestamp = ts
	}
	if uid, err := id.ParseUserID(p.UserID); err == nil {
		e.UserID = uid
	}
	return e
}
