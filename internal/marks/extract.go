package marks

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

// Column positions of the mark fields, 1-based.
const (
	colSymbol = iota + 1
	colDescription
	colWorkPaper
	colCategory
)

// Extractor turns green rows into candidate records.
type Extractor struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewExtractor creates an Extractor that logs rejected rows to logger.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Extract builds a Record from a green row. It returns ErrMissingField when
// the symbol or description is empty and ErrExampleMarker when the
// description carries an example marker; the description check wins over
// the row color.
func (e *Extractor) Extract(row []sheet.Cell, index int) (Record, error) {
	rec := Record{
		Symbol:          cellText(row, colSymbol),
		Description:     cellText(row, colDescription),
		WorkPaperNumber: optionalText(row, colWorkPaper),
		Category:        optionalText(row, colCategory),
		Row:             index,
	}

	if err := e.validate.Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			e.logger.Warn("row missing required field", "row", index, "field", verrs[0].Field())
			return Record{}, fmt.Errorf("%w: %s", ErrMissingField, strings.ToLower(verrs[0].Field()))
		}
		return Record{}, err
	}

	if HasExampleMarker(rec.Description) {
		e.logger.Warn("row contains example marker", "row", index)
		return Record{}, ErrExampleMarker
	}

	return rec, nil
}

func cellText(row []sheet.Cell, col int) string {
	if col > len(row) {
		return ""
	}
	return strings.TrimSpace(row[col-1].Value)
}

func optionalText(row []sheet.Cell, col int) *string {
	v := cellText(row, col)
	if v == "" {
		return nil
	}
	return &v
}
