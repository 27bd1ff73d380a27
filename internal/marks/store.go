package marks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/auditmarks/pkg/query"
	"github.com/JaimeStill/auditmarks/pkg/repository"
)

// Store is the persistence boundary used by the import pipeline and the
// matcher. Mutations only happen inside WithinTx, which commits when fn
// returns nil and rolls back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	// QueryActive returns active marks for the audit, excluding descriptions
	// that carry an example marker, in store iteration order.
	QueryActive(ctx context.Context, auditID int) ([]Mark, error)
}

// Tx is the unit of work of an import run.
type Tx interface {
	DeleteAll(ctx context.Context, auditID int) (int64, error)
	BulkInsert(ctx context.Context, auditID int, records []Record) (int, error)
}

var insertColumns = []string{
	"id", "audit_id", "symbol", "description",
	"work_paper_number", "category", "is_active", "source_row",
}

type sqlStore struct {
	db        *sql.DB
	batchSize int
}

// NewStore creates a Store over a PostgreSQL connection pool. Bulk inserts
// are split into statements of at most batchSize rows.
func NewStore(db *sql.DB, batchSize int) Store {
	if batchSize < 1 {
		batchSize = 500
	}
	return &sqlStore{db: db, batchSize: batchSize}
}

func (s *sqlStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	_, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, fn(&sqlTx{tx: tx, batchSize: s.batchSize})
	})
	return err
}

func (s *sqlStore) QueryActive(ctx context.Context, auditID int) ([]Mark, error) {
	active := true
	qb := query.
		NewBuilder(projection, storeOrder...).
		WhereEquals("AuditID", &auditID).
		WhereEquals("IsActive", &active)

	for _, marker := range ExampleMarkers {
		qb.WhereExcludes("Description", &marker)
	}

	q, args := qb.Build()
	marks, err := repository.QueryMany(ctx, s.db, q, args, scanMark)
	if err != nil {
		return nil, fmt.Errorf("query active marks: %w", err)
	}
	return marks, nil
}

type sqlTx struct {
	tx        *sql.Tx
	batchSize int
}

func (t *sqlTx) DeleteAll(ctx context.Context, auditID int) (int64, error) {
	n, err := repository.Exec(ctx, t.tx, "DELETE FROM audit_marks WHERE audit_id = $1", auditID)
	if err != nil {
		return 0, fmt.Errorf("delete marks for audit %d: %w", auditID, err)
	}
	return n, nil
}

func (t *sqlTx) BulkInsert(ctx context.Context, auditID int, records []Record) (int, error) {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = []any{
			uuid.New(),
			auditID,
			rec.Symbol,
			rec.Description,
			rec.WorkPaperNumber,
			rec.Category,
			true,
			rec.Row,
		}
	}

	n, err := repository.InsertValues(ctx, t.tx, "audit_marks", insertColumns, rows, t.batchSize)
	if err != nil {
		return 0, fmt.Errorf("insert marks for audit %d: %w", auditID, err)
	}
	return int(n), nil
}
