package workpapers

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/auditmarks/pkg/storage"
)

// Domain errors for work-paper operations.
var (
	ErrNotFound     = errors.New("work paper not found")
	ErrDuplicate    = errors.New("work paper already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
)

// MapHTTPStatus maps work-paper domain errors to appropriate HTTP status codes.
// Errors outside the domain fall through to the storage mapping.
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
	if errors.Is(err, ErrInvalidFile) {
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
