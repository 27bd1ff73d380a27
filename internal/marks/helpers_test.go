package marks

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

const (
	green  = "C6EFCE"
	yellow = "FFF4CE"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}

type testRow struct {
	values []string
	fill   string
}

// buildWorkbook writes a header row followed by rows starting at row 2.
// A nil values slice leaves the row empty.
func buildWorkbook(t *testing.T, rows ...testRow) []byte {
	t.Helper()

	wb, err := sheet.New("Marcas")
	require.NoError(t, err)
	defer wb.Close()

	for i, h := range []string{"Símbolo", "Descripción", "Papel de Trabajo", "Categoría"} {
		require.NoError(t, wb.SetCell(sheet.Coordinate{Row: 1, Column: i + 1}, h, sheet.Style{Bold: true}))
	}

	for i, row := range rows {
		for col, v := range row.values {
			c := sheet.Coordinate{Row: firstDataRow + i, Column: col + 1}
			require.NoError(t, wb.SetCell(c, v, sheet.Style{Fill: row.fill}))
		}
	}

	data, err := wb.Bytes()
	require.NoError(t, err)
	return data
}

// memStore is an in-memory Store whose transactions work on a copy that is
// only published when fn succeeds.
type memStore struct {
	mu         sync.Mutex
	marks      []Mark
	insertErr  error
	deleteErr  error
	queryErr   error
	insertRuns int
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, marks: slices.Clone(s.marks)}
	if err := fn(tx); err != nil {
		return err
	}
	s.marks = tx.marks
	return nil
}

func (s *memStore) QueryActive(ctx context.Context, auditID int) ([]Mark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queryErr != nil {
		return nil, s.queryErr
	}

	var out []Mark
	for _, m := range s.marks {
		if m.AuditID == auditID && m.IsActive && !HasExampleMarker(m.Description) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) forAudit(auditID int) []Mark {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Mark
	for _, m := range s.marks {
		if m.AuditID == auditID {
			out = append(out, m)
		}
	}
	return out
}

type memTx struct {
	store *memStore
	marks []Mark
}

func (t *memTx) DeleteAll(ctx context.Context, auditID int) (int64, error) {
	if t.store.deleteErr != nil {
		return 0, t.store.deleteErr
	}

	before := len(t.marks)
	t.marks = slices.DeleteFunc(t.marks, func(m Mark) bool {
		return m.AuditID == auditID
	})
	return int64(before - len(t.marks)), nil
}

func (t *memTx) BulkInsert(ctx context.Context, auditID int, records []Record) (int, error) {
	t.store.insertRuns++
	if t.store.insertErr != nil {
		return 0, t.store.insertErr
	}

	for _, rec := range records {
		t.marks = append(t.marks, Mark{
			ID:              uuid.New(),
			AuditID:         auditID,
			Symbol:          rec.Symbol,
			Description:     rec.Description,
			WorkPaperNumber: rec.WorkPaperNumber,
			Category:        rec.Category,
			IsActive:        true,
			SourceRow:       ptr(rec.Row),
		})
	}
	return len(records), nil
}

func seedMark(auditID int, symbol, description string, workPaper *string) Mark {
	return Mark{
		ID:              uuid.New(),
		AuditID:         auditID,
		Symbol:          symbol,
		Description:     description,
		WorkPaperNumber: workPaper,
		IsActive:        true,
	}
}
