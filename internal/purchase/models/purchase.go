package models

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	catalog "teranga/internal/catalog/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
)

// Purchase is one buyer's attempt to acquire one property.
type Purchase struct {
	ID               id.PurchaseID    `json:"id"`
	UserID           id.UserID        `json:"user_id"`
	PropertyID       id.PropertyID    `json:"property_id"`
	Status           Status           `json:"status"`
	PaymentMethod    *PaymentMethod   `json:"payment_method,omitempty"`
	PaymentReference *string          `json:"payment_reference,omitempty"`
	PaidAmount       *decimal.Decimal `json:"paid_amount,omitempty"`
	PaidAt           *time.Time       `json:"paid_at,omitempty"`
	LoanApplication  *LoanApplication `json:"loan_application,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsOwnedBy scopes every buyer read and write.
func (p *Purchase) IsOwnedBy(userID id.UserID) bool {
	return p != nil && p.UserID == userID
}

// PaymentMethod is the direct-payment channel.
type PaymentMethod string

const (
	PaymentBankTransfer    PaymentMethod = "bank_transfer"
	PaymentInstantTransfer PaymentMethod = "instant_transfer"
	PaymentCard            PaymentMethod = "card"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.TrimSpace(raw))
	switch m {
	case PaymentBankTransfer, PaymentInstantTransfer, PaymentCard:
		return m, nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "payment_method must be bank_transfer, instant_transfer or card")
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentBankTransfer:
		return "Virement bancaire"
	case PaymentInstantTransfer:
		return "Virement SEPA instantané"
	case PaymentCard:
		return "Carte bancaire"
	}
	return string(m)
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewTransactionID returns "TRX" followed by nine uppercase alphanumerics.
func NewTransactionID() string {
	return "TRX" + randomAlphanumeric(9)
}

// randomAlphanumeric draws without modulo bias by rejecting bytes above the
// largest multiple of the alphabet size.
func randomAlphanumeric(n int) string {
	const limit = 256 - 256%len(referenceAlphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if int(b) < limit && len(out) < n {
				out = append(out, referenceAlphabet[int(b)%len(referenceAlphabet)])
			}
		}
	}
	return string(out)
}

// LoanStatus tracks a financing request.
type LoanStatus string

const (
	LoanPending  LoanStatus = "pending"
	LoanApproved LoanStatus = "approved"
	LoanRejected LoanStatus = "rejected"
)

type LoanApplication struct {
	Status      LoanStatus     `json:"status"`
	Documents   []LoanDocument `json:"documents"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

type LoanDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Message is one entry of a purchase's conversation log.
type Message struct {
	ID         id.MessageID  `json:"id"`
	PurchaseID id.PurchaseID `json:"purchase_id"`
	SenderID   id.UserID     `json:"sender_id"`
	Content    string        `json:"content"`
	CreatedAt  time.Time     `json:"created_at"`
}

// MaxMessageLength bounds a single message.
const MaxMessageLength = 4000

// NormalizeMessage trims content and rejects empty or oversized text.
func NormalizeMessage(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", dErrors.New(dErrors.CodeValidation, "message cannot be empty")
	}
	if len([]rune(content)) > MaxMessageLength {
		return "", dErrors.New(dErrors.CodeValidation, "message is too long")
	}
	return content, nil
}

// View is a purchase as the buyer sees it: the purchase, its normalized
// property and its message log.
type View struct {
	Purchase
	StatusLabel string            `json:"status_label"`
	Property    *catalog.Property `json:"property,omitempty"`
	Messages    []Message         `json:"messages,omitempty"`
}

// PaymentConfirmation is returned by CompleteDirectPayment.
type PaymentConfirmation struct {
	PurchaseID id.PurchaseID   `json:"purchase_id"`
	Reference  string          `json:"reference"`
	Method     PaymentMethod   `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAt     time.Time       `json:"paid_at"`
	// AlreadyCompleted is set when the purchase had been paid before.
	AlreadyCompleted bool `json:"already_completed"`
}

// AcquisitionResult tells the buyer where to go after starting a purchase.
type AcquisitionResult struct {
	Purchase   *Purchase `json:"purchase"`
	RedirectTo string    `json:"redirect_to"`
}
