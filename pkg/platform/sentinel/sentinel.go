package sentinel

import "errors"

// Sentinel errors for store facts. Stores return these (optionally wrapped) and
// services translate them into domain errors:
//   - ErrNotFound: row does not exist
//   - ErrConflict: unique constraint already satisfied by another row
//   - ErrInvalidState: guarded update found the row in a different status
//   - ErrExpired: verification code or token has expired
//   - ErrAlreadyUsed: verification code already consumed
//   - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")
	ErrAlreadyUsed  = errors.New("already used")
	ErrUnavailable  = errors.New("unavailable")
)
