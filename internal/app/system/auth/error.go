package auth

import "net/http"

// Error is a typed pipeline failure carrying the HTTP status, a
// machine-readable code ("namespace/reason") and a human message. Guard and
// the feature-flag gate raise it; the response envelope passes it through
// unchanged.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// HTTPStatus, ErrorCode and PublicMessage let the response envelope map the
// error without importing this package.

func (e *Error) HTTPStatus() int        { return e.Status }
func (e *Error) ErrorCode() string      { return e.Code }
func (e *Error) PublicMessage() string  { return e.Message }

// NewError builds an Error.
func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Convenience constructors for the common guard failures.

func errMissingToken() *Error {
	return NewError(http.StatusUnauthorized, "auth/missing-token", "Authorization header required")
}

func errInvalidToken(message string) *Error {
	return NewError(http.StatusUnauthorized, "auth/invalid-token", message)
}

func errForbidden(message string) *Error {
	return NewError(http.StatusForbidden, "auth/forbidden", message)
}
