package jwttoken

import (
	dErrors "teranga/pkg/domain-errors"
	authmw "teranga/pkg/platform/middleware/auth"
)

// MiddlewareValidator exposes the service to authmw.RequireAuth, which knows
// nothing about jwt claims.
type MiddlewareValidator struct {
	service *JWTService
}

func NewMiddlewareValidator(service *JWTService) *MiddlewareValidator {
	return &MiddlewareValidator{service: service}
}

// ValidateToken also rejects tokens without a jti, since sign-out could not
// revoke them.
func (v *MiddlewareValidator) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no id")
	}
	return &authmw.JWTClaims{UserID: claims.UserID, JTI: claims.ID}, nil
}
