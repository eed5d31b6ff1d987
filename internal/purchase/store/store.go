// Package store persists purchases, their loan applications and message logs.
//
// Every status change is a guarded update: it applies only while the row is
// still in one of the expected statuses and otherwise reports
// sentinel.ErrInvalidState (or sentinel.ErrNotFound when the row is gone).
package store

import (
	"time"

	"github.com/shopspring/decimal"

	"teranga/internal/purchase/models"
)

// Payment carries the fields written when a direct payment completes.
type Payment struct {
	Method    models.PaymentMethod
	Reference string
	Amount    decimal.Decimal
	PaidAt    time.Time
}
