// Package errs defines the closed set of domain errors returned by stores.
//
// Handlers discriminate on these sentinels with errors.Is and map them to
// HTTP status codes and machine-readable error codes. Stores must not leak
// driver errors for expected conditions; they wrap or translate them here.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that the requested document does not exist or is
	// not visible to the caller. Handlers map it to 404.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded signals that an enrollment would push a class past
	// its capacity. Handlers map it to 400.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidStatus signals a disallowed status transition. Handlers map
	// it to 400.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrAlreadyExists signals a uniqueness violation (duplicate slug,
	// duplicate attendance date, teacher already assigned). Handlers map it
	// to 400.
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict signals that the document changed underneath the caller.
	ErrConflict = errors.New("conflict")

	// ErrForbidden signals an ownership or permission failure detected at
	// the store layer. Handlers map it to 403, or fold it into 404 on
	// routes that hide existence.
	ErrForbidden = errors.New("forbidden")
)

// Wrap annotates a sentinel with detail while keeping errors.Is working.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, sentinel)...)
}
