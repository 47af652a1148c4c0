// Package httpx provides the shared JSON response envelope, request
// middleware and body decoding used by every API route.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
)

// statusCoded is implemented by auth.Error and any other failure that knows
// its own HTTP status and code.
type statusCoded interface {
	error
	HTTPStatus() int
	ErrorCode() string
	PublicMessage() string
}

// Envelope is the uniform response body. Success responses carry data;
// failures carry a code and message. HTTP status is 2xx exactly when
// Success is true.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

// Err writes a failure envelope.
func Err(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	SetError(r.Context(), code)
	writeJSON(w, status, Envelope{Success: false, Code: code, Message: message})
}

// AuthErr writes a typed pipeline error (auth guard, feature gate)
// unchanged, or a generic 500 for anything else.
func AuthErr(w http.ResponseWriter, r *http.Request, err error) {
	var sc statusCoded
	if errors.As(err, &sc) {
		Err(w, r, sc.HTTPStatus(), sc.ErrorCode(), sc.PublicMessage())
		return
	}
	Err(w, r, http.StatusInternalServerError, "internal/error", "An unexpected error occurred")
}

// DomainErr maps a tagged store error to the envelope. resource prefixes the
// error code ("calendar" -> "calendar/not-found"). Unrecognized errors become
// a generic 500 with the detail kept server-side.
func DomainErr(w http.ResponseWriter, r *http.Request, resource string, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		Err(w, r, http.StatusNotFound, resource+"/not-found", capitalized(resource)+" not found")
	case errors.Is(err, errs.ErrCapacityExceeded):
		Err(w, r, http.StatusBadRequest, resource+"/capacity-exceeded", err.Error())
	case errors.Is(err, errs.ErrInvalidStatus):
		Err(w, r, http.StatusBadRequest, resource+"/invalid-status", err.Error())
	case errors.Is(err, errs.ErrAlreadyExists):
		Err(w, r, http.StatusBadRequest, resource+"/already-exists", err.Error())
	case errors.Is(err, errs.ErrConflict):
		Err(w, r, http.StatusConflict, resource+"/conflict", err.Error())
	case errors.Is(err, errs.ErrForbidden):
		Err(w, r, http.StatusForbidden, resource+"/forbidden", err.Error())
	default:
		var sc statusCoded
		if errors.As(err, &sc) {
			Err(w, r, sc.HTTPStatus(), sc.ErrorCode(), sc.PublicMessage())
			return
		}
		Err(w, r, http.StatusInternalServerError, "internal/error", "An unexpected error occurred")
	}
}

func writeJSON(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func capitalized(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
