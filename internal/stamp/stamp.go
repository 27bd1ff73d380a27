// Package stamp adds the audit marks matched for a document to a copy of it
// before delivery. Word documents receive the marks in the footer of every
// section; spreadsheets receive them as new rows below the populated range.
//
// Stamping is fail-safe: on any error the original bytes are returned and the
// failure is only logged.
package stamp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/auditmarks/internal/marks"
)

// ProgramToken exempts a document from stamping when its filename contains
// it in any case.
const ProgramToken = "PROGRAMA"

// Document kinds handled by the stamper.
const (
	KindWord  = "word"
	KindSheet = "sheet"
)

// ErrRowSafety reports an attempt to write a mark row at or above the last
// populated row of a spreadsheet. It indicates a defect, never user error.
var ErrRowSafety = errors.New("mark row would overwrite existing content")

// ErrNoFooter is returned when no section footer of a Word document could be
// stamped.
var ErrNoFooter = errors.New("no section footer could be stamped")

// Matcher resolves the marks that apply to a document.
type Matcher interface {
	MatchesFor(ctx context.Context, auditID int, filename string) ([]marks.Mark, error)
}

// Style holds the text and formatting of the injected marks section.
type Style struct {
	Title     string
	Color     string
	Size      float64
	TitleFill string
	MarkFill  string
	Gap       int
}

// DefaultStyle returns the standard marks section styling.
func DefaultStyle() Style {
	return Style{
		Title:     "MARCAS DE AUDITORÍA UTILIZADAS:",
		Color:     "0070C0",
		Size:      11,
		TitleFill: "D3D3D3",
		MarkFill:  "E7E6E6",
		Gap:       3,
	}
}

// Stamper injects matched marks into documents.
type Stamper struct {
	matcher Matcher
	style   Style
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Stamper. Zero fields of style fall back to DefaultStyle.
func New(matcher Matcher, style Style, logger *slog.Logger, metrics *Metrics) *Stamper {
	def := DefaultStyle()
	if style.Title == "" {
		style.Title = def.Title
	}
	if style.Color == "" {
		style.Color = def.Color
	}
	if style.Size <= 0 {
		style.Size = def.Size
	}
	if style.TitleFill == "" {
		style.TitleFill = def.TitleFill
	}
	if style.MarkFill == "" {
		style.MarkFill = def.MarkFill
	}
	if style.Gap <= 0 {
		style.Gap = def.Gap
	}

	return &Stamper{
		matcher: matcher,
		style:   style,
		logger:  logger.With("system", "stamp"),
		metrics: metrics,
	}
}

// IsProgram reports whether filename names a program document.
func IsProgram(filename string) bool {
	return strings.Contains(strings.ToUpper(filename), ProgramToken)
}

// Document stamps data according to the extension of filename. Files of any
// other type are returned as given.
func (s *Stamper) Document(ctx context.Context, auditID int, filename string, data []byte) []byte {
	switch kindOf(filename) {
	case KindWord:
		return s.Word(ctx, auditID, filename, data)
	case KindSheet:
		return s.Sheet(ctx, auditID, filename, data)
	}
	return data
}

// Word appends the matched marks to the footer of every section of a
// .docx document.
func (s *Stamper) Word(ctx context.Context, auditID int, filename string, data []byte) []byte {
	return s.apply(ctx, KindWord, auditID, filename, data, s.stampWord)
}

// Sheet appends the matched marks as new rows below the populated range of
// the active sheet of a .xlsx workbook.
func (s *Stamper) Sheet(ctx context.Context, auditID int, filename string, data []byte) []byte {
	return s.apply(ctx, KindSheet, auditID, filename, data, s.stampSheet)
}

type mutation func(data []byte, matched []marks.Mark, logger *slog.Logger) ([]byte, error)

func (s *Stamper) apply(
	ctx context.Context,
	kind string,
	auditID int,
	filename string,
	data []byte,
	mutate mutation,
) (out []byte) {
	logger := s.logger.With("audit_id", auditID, "file", filename, "kind", kind)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("stamping panicked, delivering original", "panic", fmt.Sprint(r))
			s.metrics.record(kind, OutcomeFailed)
			out = data
		}
	}()

	if IsProgram(filename) {
		logger.Info("program document delivered without marks")
		s.metrics.record(kind, OutcomeSkippedProgram)
		return data
	}

	matched, err := s.matcher.MatchesFor(ctx, auditID, filename)
	if err != nil {
		logger.Error("mark lookup failed, delivering original", "error", err)
		s.metrics.record(kind, OutcomeFailed)
		return data
	}

	if len(matched) == 0 {
		logger.Info("no matching marks, delivering original")
		s.metrics.record(kind, OutcomeNoMatch)
		return data
	}

	result, err := mutate(data, matched, logger)
	if err != nil {
		if errors.Is(err, ErrRowSafety) {
			logger.Error("row safety violation, delivering original", "error", err)
		} else {
			logger.Error("stamping failed, delivering original", "error", err)
		}
		s.metrics.record(kind, OutcomeFailed)
		return data
	}

	logger.Info("marks stamped", "count", len(matched))
	s.metrics.record(kind, OutcomeStamped)
	return result
}

func kindOf(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return KindWord
	case ".xlsx":
		return KindSheet
	}
	return ""
}
