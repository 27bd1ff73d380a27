package workpapers

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/auditmarks/pkg/query"
	"github.com/JaimeStill/auditmarks/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "work_papers", "w").
	Project("id", "ID").
	Project("audit_id", "AuditID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("uploaded_at", "UploadedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "UploadedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for work-paper queries.
// Nil fields are ignored. AuditID and ContentType use exact matching.
// Filename uses case-insensitive contains matching.
type Filters struct {
	AuditID     *int    `json:"audit_id,omitempty"`
	Filename    *string `json:"filename,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AuditID", f.AuditID).
		WhereContains("Filename", f.Filename).
		WhereEquals("ContentType", f.ContentType)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("audit_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			f.AuditID = &id
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	return f
}

func scanWorkPaper(s repository.Scanner) (WorkPaper, error) {
	var w WorkPaper
	err := s.Scan(
		&w.ID,
		&w.AuditID,
		&w.Filename,
		&w.ContentType,
		&w.SizeBytes,
		&w.StorageKey,
		&w.UploadedAt,
		&w.UpdatedAt,
	)
	return w, err
}
