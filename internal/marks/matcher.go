package marks

import (
	"context"
	"log/slog"
	"strings"
)

// Matcher selects the marks of an audit that apply to a document filename.
type Matcher struct {
	store  Store
	logger *slog.Logger
}

// NewMatcher creates a Matcher reading from store.
func NewMatcher(store Store, logger *slog.Logger) *Matcher {
	return &Matcher{
		store:  store,
		logger: logger,
	}
}

// MatchesFor returns the active marks of auditID whose normalized work-paper
// number and the normalized filename contain one another. Marks without a
// work-paper number never match. Store order is preserved.
func (m *Matcher) MatchesFor(ctx context.Context, auditID int, filename string) ([]Mark, error) {
	candidates, err := m.store.QueryActive(ctx, auditID)
	if err != nil {
		return nil, err
	}

	target := Normalize(filename)
	matched := make([]Mark, 0)
	for _, mark := range candidates {
		if mark.AuditID != auditID || !mark.IsActive || HasExampleMarker(mark.Description) {
			continue
		}
		if Matches(mark, target) {
			m.logger.Debug("mark matched", "work_paper", *mark.WorkPaperNumber, "filename", filename)
			matched = append(matched, mark)
		}
	}
	return matched, nil
}

// Matches reports whether mark applies to an already normalized filename.
// Empty tokens on either side never match.
func Matches(mark Mark, normalizedFilename string) bool {
	if mark.WorkPaperNumber == nil || normalizedFilename == "" {
		return false
	}
	wp := Normalize(*mark.WorkPaperNumber)
	if wp == "" {
		return false
	}
	return strings.Contains(normalizedFilename, wp) || strings.Contains(wp, normalizedFilename)
}
