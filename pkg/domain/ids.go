// Package domain holds typed identifiers shared across modules. Each ID wraps a
// UUID so a PropertyID can never be passed where a PurchaseID is expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "teranga/pkg/domain-errors"
)

type (
	UserID      uuid.UUID
	PropertyID  uuid.UUID
	PurchaseID  uuid.UUID
	DeveloperID uuid.UUID
	MessageID   uuid.UUID
)

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id PropertyID) String() string  { return uuid.UUID(id).String() }
func (id PurchaseID) String() string  { return uuid.UUID(id).String() }
func (id DeveloperID) String() string { return uuid.UUID(id).String() }
func (id MessageID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PurchaseID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DeveloperID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets typed IDs serialize as plain UUID strings in JSON.
func (id UserID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id PropertyID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id PurchaseID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id DeveloperID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id MessageID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" cannot be nil")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

func ParsePropertyID(s string) (PropertyID, error) {
	u, err := parseUUID(s, "property id")
	return PropertyID(u), err
}

func ParsePurchaseID(s string) (PurchaseID, error) {
	u, err := parseUUID(s, "purchase id")
	return PurchaseID(u), err
}

func ParseDeveloperID(s string) (DeveloperID, error) {
	u, err := parseUUID(s, "developer id")
	return DeveloperID(u), err
}

func ParseMessageID(s string) (MessageID, error) {
	u, err := parseUUID(s, "message id")
	return MessageID(u), err
}
