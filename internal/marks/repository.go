package marks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/auditmarks/pkg/pagination"
	"github.com/JaimeStill/auditmarks/pkg/query"
	"github.com/JaimeStill/auditmarks/pkg/repository"
)

// Options carries the mark settings resolved from configuration.
type Options struct {
	Import    ImportOptions
	BatchSize int
}

type repo struct {
	db         *sql.DB
	importer   *Importer
	matcher    *Matcher
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a mark repository implementing the System interface.
func New(
	db *sql.DB,
	logger *slog.Logger,
	pagination pagination.Config,
	opts Options,
	metrics *Metrics,
) System {
	logger = logger.With("system", "marks")
	store := NewStore(db, opts.BatchSize)

	return &repo{
		db:         db,
		importer:   NewImporter(store, opts.Import, logger, metrics),
		matcher:    NewMatcher(store, logger),
		logger:     logger,
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Mark], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Symbol", "Description", "WorkPaperNumber", "Category")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count marks: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	marks, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanMark)
	if err != nil {
		return nil, fmt.Errorf("query marks: %w", err)
	}

	result := pagination.NewPageResult(marks, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Mark, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	m, err := repository.QueryOne(ctx, r.db, q, args, scanMark)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &m, nil
}

func (r *repo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Mark, error) {
	q := `
		UPDATE audit_marks
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, audit_id, symbol, description, work_paper_number, category, is_active, source_row, created_at, updated_at`

	m, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Mark, error) {
		return repository.QueryOne(ctx, tx, q, []any{id, active}, scanMark)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("mark activation changed", "id", id, "is_active", active)
	return &m, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM audit_marks WHERE id = $1",
			id,
		)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("mark deleted", "id", id)
	return nil
}

func (r *repo) Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	return r.importer.Import(ctx, cmd)
}

func (r *repo) Template() ([]byte, error) {
	return BuildTemplate()
}

func (r *repo) MatchesFor(ctx context.Context, auditID int, filename string) ([]Mark, error) {
	return r.matcher.MatchesFor(ctx, auditID, filename)
}
