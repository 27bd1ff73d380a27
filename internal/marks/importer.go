package marks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/auditmarks/pkg/formatting"
	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

// markColumns is the number of columns holding mark fields.
const markColumns = 4

// firstDataRow skips the header row.
const firstDataRow = 2

// ImportOptions bounds what the importer accepts.
type ImportOptions struct {
	MaxSize    int64
	Extensions []string
}

type rowExtractor interface {
	Extract(row []sheet.Cell, index int) (Record, error)
}

// Importer runs the color-driven spreadsheet import.
type Importer struct {
	store     Store
	extractor rowExtractor
	validate  *validator.Validate
	opts      ImportOptions
	logger    *slog.Logger
	metrics   *Metrics
}

// NewImporter creates an Importer persisting into store.
func NewImporter(store Store, opts ImportOptions, logger *slog.Logger, metrics *Metrics) *Importer {
	logger = logger.With("component", "importer")
	return &Importer{
		store:     store,
		extractor: NewExtractor(logger),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// Import validates the uploaded workbook, classifies every data row by its
// fill color and persists the green rows for the audit in one transaction.
//
// A *ValidationError is returned when the file is rejected before parsing.
// Row-level failures never abort the run; they are counted and reported in
// the result. Store failures roll back every mutation of the run.
func (i *Importer) Import(ctx context.Context, cmd ImportCommand) (*ImportResult, error) {
	if err := i.validate.Struct(cmd); err != nil {
		i.metrics.run("rejected")
		return nil, &ValidationError{Reason: ErrInvalidCommand, Detail: err.Error()}
	}

	logger := i.logger.With("audit_id", cmd.AuditID, "file", cmd.File.Name())

	wb, err := i.load(cmd.File)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		i.metrics.run("rejected")
		return nil, err
	}
	defer wb.Close()

	result := &ImportResult{Errors: []string{}}
	records, err := i.parse(wb, result, logger)
	if err != nil {
		i.metrics.run("failed")
		return nil, err
	}

	err = i.store.WithinTx(ctx, func(tx Tx) error {
		if cmd.ReplaceExisting {
			n, err := tx.DeleteAll(ctx, cmd.AuditID)
			if err != nil {
				return err
			}
			result.MarksReplaced = n
			logger.Info("existing marks removed", "count", n)
		}

		if len(records) == 0 {
			return nil
		}

		n, err := tx.BulkInsert(ctx, cmd.AuditID, records)
		if err != nil {
			return err
		}
		result.MarksImported = n
		return nil
	})
	if err != nil {
		logger.Error("import rolled back", "error", err)
		i.metrics.run("failed")
		return nil, fmt.Errorf("persist marks: %w", err)
	}

	result.Success = true
	i.metrics.run("success")
	i.metrics.observe(result)

	logger.Info(
		"import completed",
		"imported", result.MarksImported,
		"skipped_white", result.MarksSkippedWhite,
		"skipped_yellow", result.MarksSkippedYellow,
		"skipped_invalid", result.MarksSkippedInvalid,
		"replaced", result.MarksReplaced,
	)
	return result, nil
}

func (i *Importer) load(f File) (*sheet.Workbook, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	if !slices.Contains(i.opts.Extensions, ext) {
		return nil, &ValidationError{
			Reason: ErrUnsupportedFormat,
			Detail: fmt.Sprintf("%q, expected one of %s", ext, strings.Join(i.opts.Extensions, ", ")),
		}
	}

	if f.Size() > i.opts.MaxSize {
		return nil, &ValidationError{
			Reason: ErrFileTooLarge,
			Detail: fmt.Sprintf("%s, limit %s", formatting.FormatBytes(f.Size(), 1), formatting.FormatBytes(i.opts.MaxSize, 0)),
		}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &ValidationError{Reason: ErrCorruptWorkbook, Detail: err.Error()}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, i.opts.MaxSize+1))
	if err != nil {
		return nil, &ValidationError{Reason: ErrCorruptWorkbook, Detail: err.Error()}
	}
	if int64(len(data)) > i.opts.MaxSize {
		return nil, &ValidationError{
			Reason: ErrFileTooLarge,
			Detail: "limit " + formatting.FormatBytes(i.opts.MaxSize, 0),
		}
	}

	wb, err := sheet.Open(bytes.NewReader(data))
	if err != nil {
		return nil, &ValidationError{Reason: ErrCorruptWorkbook, Detail: err.Error()}
	}
	return wb, nil
}

func (i *Importer) parse(wb *sheet.Workbook, result *ImportResult, logger *slog.Logger) ([]Record, error) {
	rows, err := wb.Rows(firstDataRow, markColumns)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var records []Record
	for n, cells := range rows {
		index := firstDataRow + n
		rec, err := i.processRow(cells, index, result, logger)
		if err != nil {
			logger.Error("row processing failed", "row", index, "error", err)
			result.rowError(index, err)
			continue
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// processRow classifies a row on the fill of every cell it spans, while
// only the mark columns are extracted.
func (i *Importer) processRow(
	cells []sheet.Cell,
	index int,
	result *ImportResult,
	logger *slog.Logger,
) (rec *Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	switch Classify(cells) {
	case RowYellow:
		logger.Debug("yellow row skipped", "row", index)
		result.MarksSkippedYellow++
	case RowWhite:
		if hasData(cells) {
			logger.Debug("uncolored row skipped", "row", index)
			result.MarksSkippedWhite++
		}
	case RowGreen:
		r, err := i.extractor.Extract(cells, index)
		if err != nil {
			result.MarksSkippedInvalid++
			return nil, nil
		}
		return &r, nil
	}
	return nil, nil
}
