// Package workpapers implements the work-paper document domain.
// It stores audit work papers in blob storage, tracks their metadata, and
// delivers them with the matching audit marks stamped in.
package workpapers

import (
	"time"

	"github.com/google/uuid"
)

// WorkPaper is a stored audit document. Its filename identifies it for
// mark matching.
type WorkPaper struct {
	ID          uuid.UUID `json:"id"`
	AuditID     int       `json:"audit_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"storage_key"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a work paper.
type CreateCommand struct {
	Data        []byte `validate:"required"`
	Filename    string `validate:"required"`
	ContentType string
	AuditID     int `validate:"gt=0"`
}

// BatchResult reports the outcome of a single file within a batch upload.
// On success, WorkPaper is populated and Error is empty.
// On failure, Error describes the problem and WorkPaper is nil.
type BatchResult struct {
	WorkPaper *WorkPaper `json:"work_paper,omitempty"`
	Filename  string     `json:"filename"`
	Error     string     `json:"error,omitempty"`
}

// Delivery is a work paper ready to be sent to a client.
type Delivery struct {
	Filename    string
	ContentType string
	Data        []byte
}
