package workpapers

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"runtime"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/auditmarks/pkg/pagination"
	"github.com/JaimeStill/auditmarks/pkg/query"
	"github.com/JaimeStill/auditmarks/pkg/repository"
	"github.com/JaimeStill/auditmarks/pkg/storage"
)

// Stamper adds the matching audit marks to a document before delivery.
// It returns data unchanged when nothing applies or stamping fails.
type Stamper interface {
	Document(ctx context.Context, auditID int, filename string, data []byte) []byte
}

type repo struct {
	db         *sql.DB
	storage    storage.System
	stamper    Stamper
	validate   *validator.Validate
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a work-paper repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	stamper Stamper,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		stamper:    stamper,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logger.With("system", "workpapers"),
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
) (*pagination.PageResult[WorkPaper], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count work papers: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	papers, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanWorkPaper)
	if err != nil {
		return nil, fmt.Errorf("query work papers: %w", err)
	}

	result := pagination.NewPageResult(papers, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*WorkPaper, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	w, err := repository.QueryOne(ctx, r.db, q, args, scanWorkPaper)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &w, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*WorkPaper, error) {
	if err := r.validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	id := uuid.New()
	key := buildStorageKey(cmd.AuditID, id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload work paper blob: %w", err)
	}

	q := `
		INSERT INTO work_papers(id, audit_id, filename, content_type, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, audit_id, filename, content_type, size_bytes, storage_key, uploaded_at, updated_at`

	insertArgs := []any{
		id,
		cmd.AuditID,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		key,
	}

	w, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (WorkPaper, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanWorkPaper)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("work paper created", "id", w.ID, "audit_id", w.AuditID, "filename", w.Filename)
	return &w, nil
}

// CreateBatch uploads every command with bounded concurrency. Failures are
// reported per file and never cancel the remaining uploads.
func (r *repo) CreateBatch(ctx context.Context, cmds []CreateCommand) []BatchResult {
	results := make([]BatchResult, len(cmds))

	var g errgroup.Group
	g.SetLimit(workerCount(len(cmds)))

	for i := range cmds {
		g.Go(func() error {
			results[i].Filename = cmds[i].Filename

			w, err := r.Create(ctx, cmds[i])
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].WorkPaper = w
			return nil
		})
	}

	g.Wait()
	return results
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	w, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM work_papers WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, w.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", w.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("work paper deleted", "id", id)
	return nil
}

func (r *repo) Download(ctx context.Context, id uuid.UUID) (*Delivery, error) {
	w, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := r.storage.Download(ctx, w.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("download work paper blob: %w", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read work paper blob: %w", err)
	}

	return &Delivery{
		Filename:    w.Filename,
		ContentType: w.ContentType,
		Data:        r.stamper.Document(ctx, w.AuditID, w.Filename, data),
	}, nil
}

func workerCount(n int) int {
	return max(1, min(n, runtime.NumCPU()))
}

func buildStorageKey(auditID int, id uuid.UUID, filename string) string {
	return fmt.Sprintf("audits/%d/workpapers/%s/%s", auditID, id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "workpaper"
	}
	return url.PathEscape(name)
}
