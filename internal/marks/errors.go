package marks

import (
	"errors"
	"net/http"
)

// Domain errors for mark operations.
var (
	ErrNotFound  = errors.New("mark not found")
	ErrDuplicate = errors.New("mark already exists")
	ErrInvalidID = errors.New("invalid mark id")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation        = errors.New("invalid import file")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum import size")
	ErrCorruptWorkbook   = errors.New("workbook is corrupt or unreadable")
	ErrInvalidCommand    = errors.New("invalid import request")

	// Row-level rejection reasons. They are logged and counted, never returned
	// from Import.
	ErrMissingField  = errors.New("missing required field")
	ErrExampleMarker = errors.New("example marker present despite green fill")
)

// ValidationError rejects an import before any parsing or store mutation.
type ValidationError struct {
	Reason error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return e.Reason.Error() + ": " + e.Detail
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

// MapHTTPStatus maps mark domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrInvalidID) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
