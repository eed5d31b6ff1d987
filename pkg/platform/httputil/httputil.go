// Package httputil writes JSON responses and coded error bodies.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	dErrors "teranga/pkg/domain-errors"
)

// Money amounts (shopspring/decimal) go out as JSON numbers, the same shape
// as integer prices, instead of the library's default quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// maxBodyBytes caps request bodies decoded by DecodeJSON.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// StatusFor maps a domain error code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict, dErrors.CodeInvalidState, dErrors.CodeProfileLocked:
		return http.StatusConflict
	case dErrors.CodePrecondition:
		return http.StatusPreconditionFailed
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes {"error","error_description"} for err. Internal errors
// never expose their description.
func WriteError(w http.ResponseWriter, err error) {
	body := errorBody{Error: string(dErrors.CodeInternal)}
	if de, ok := dErrors.As(err); ok {
		body.Error = string(de.Code)
		body.ErrorDescription = de.Message
	}
	if body.Error == string(dErrors.CodeInternal) {
		body.ErrorDescription = ""
	}
	WriteJSON(w, StatusFor(dErrors.Code(body.Error)), body)
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes a bounded request body into dst. Unknown fields are
// rejected so typos in client payloads surface as bad requests.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// DecodeOptionalJSON is DecodeJSON for endpoints whose body may be absent.
// An empty body leaves dst untouched whatever the declared length, so
// chunked requests are decoded like sized ones.
func DecodeOptionalJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
