package models

import (
	"net/mail"
	"strings"
	"time"

	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
)

// User is an account. Sign-in is refused until the email is verified.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Verified     bool
	VerifiedAt   *time.Time
	CreatedAt    time.Time
}

// VerificationCode is the one-time code mailed after sign-up.
type VerificationCode struct {
	Code     string
	IssuedAt time.Time
	Attempts int
}

const (
	// MaxVerifyAttempts wrong codes burn the current code; a new one must be requested.
	MaxVerifyAttempts = 3
	// ResendCooldown is the minimum gap between two codes for the same email.
	ResendCooldown = 60 * time.Second
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims and lowercases the email.
func (c *Credentials) Normalize() {
	c.Email = NormalizeEmail(c.Email)
}

func (c Credentials) Validate() error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	if c.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendRequest struct {
	Email string `json:"email"`
}

// SignUpResult tells the client a code was sent; no session exists yet.
type SignUpResult struct {
	UserID               id.UserID `json:"user_id"`
	Email                string    `json:"email"`
	VerificationRequired bool      `json:"verification_required"`
}

type TokenResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	UserID      id.UserID `json:"user_id"`
}

type UserInfo struct {
	ID        id.UserID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Verified  bool      `json:"verified"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeValidation, "invalid email")
	}
	return nil
}
