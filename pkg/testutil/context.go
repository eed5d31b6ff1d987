package testutil

import (
	"net/http"

	id "teranga/pkg/domain"
	"teranga/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the userID is not a valid UUID, it will not be added to the context.
func WithUserID(req *http.Request, userID string) *http.Request {
	if parsedUserID, err := id.ParseUserID(userID); err == nil {
		return req.WithContext(requestcontext.WithUserID(req.Context(), parsedUserID))
	}
	return req
}

// WithAuth adds the user ID and token ID the auth middleware would set.
// Invalid user IDs are silently ignored.
func WithAuth(req *http.Request, userID, tokenID string) *http.Request {
	ctx := req.Context()
	if parsedUserID, err := id.ParseUserID(userID); err == nil {
		ctx = requestcontext.WithUserID(ctx, parsedUserID)
	}
	if tokenID != "" {
		ctx = requestcontext.WithTokenID(ctx, tokenID)
	}
	return req.WithContext(ctx)
}
