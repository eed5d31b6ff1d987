package password

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	dErrors "teranga/pkg/domain-errors"
)

// MinLength matches the hosted auth provider's default password policy.
const MinLength = 6

// ErrMismatch reports a password that does not match the stored hash.
var ErrMismatch = errors.New("password mismatch")

// Hash creates a bcrypt hash of the provided password.
func Hash(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinLength {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", MinLength))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks if a plaintext password matches a bcrypt hash.
func Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}
