package marks

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/auditmarks/pkg/query"
	"github.com/JaimeStill/auditmarks/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "audit_marks", "m").
	Project("id", "ID").
	Project("audit_id", "AuditID").
	Project("symbol", "Symbol").
	Project("description", "Description").
	Project("work_paper_number", "WorkPaperNumber").
	Project("category", "Category").
	Project("is_active", "IsActive").
	Project("source_row", "SourceRow").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// storeOrder is the iteration order used by the matcher: insertion order.
var storeOrder = []query.SortField{
	{Field: "CreatedAt"},
	{Field: "SourceRow"},
	{Field: "ID"},
}

// Filters contains optional filtering criteria for mark queries.
// Nil fields are ignored. Symbol and WorkPaperNumber use case-insensitive
// contains matching; the rest match exactly.
type Filters struct {
	AuditID         *int    `json:"audit_id,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
	Category        *string `json:"category,omitempty"`
	Symbol          *string `json:"symbol,omitempty"`
	WorkPaperNumber *string `json:"work_paper_number,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("AuditID", f.AuditID).
		WhereEquals("IsActive", f.IsActive).
		WhereEquals("Category", f.Category).
		WhereContains("Symbol", f.Symbol).
		WhereContains("WorkPaperNumber", f.WorkPaperNumber)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("audit_id"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			f.AuditID = &id
		}
	}

	if v := values.Get("is_active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			f.IsActive = &active
		}
	}

	if v := values.Get("category"); v != "" {
		f.Category = &v
	}

	if v := values.Get("symbol"); v != "" {
		f.Symbol = &v
	}

	if v := values.Get("work_paper_number"); v != "" {
		f.WorkPaperNumber = &v
	}

	return f
}

func scanMark(s repository.Scanner) (Mark, error) {
	var m Mark
	err := s.Scan(
		&m.ID,
		&m.AuditID,
		&m.Symbol,
		&m.Description,
		&m.WorkPaperNumber,
		&m.Category,
		&m.IsActive,
		&m.SourceRow,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}
