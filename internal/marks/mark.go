// Package marks implements the audit mark domain: persisted marks, the
// color-driven spreadsheet import pipeline, filename matching, and the
// example template that documents the color contract.
package marks

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TemplateFilename is the default download name for the example workbook.
const TemplateFilename = "plantilla_marcas_auditoria.xlsx"

// ExampleMarkers flag template or placeholder rows. A description containing
// either marker is never imported or matched.
var ExampleMarkers = []string{"Ejemplo:", "Example:"}

// Mark is an audit annotation scoped to exactly one audit.
type Mark struct {
	ID              uuid.UUID `json:"id"`
	AuditID         int       `json:"audit_id"`
	Symbol          string    `json:"symbol"`
	Description     string    `json:"description"`
	WorkPaperNumber *string   `json:"work_paper_number"`
	Category        *string   `json:"category"`
	IsActive        bool      `json:"is_active"`
	SourceRow       *int      `json:"source_row"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Label is the text injected into documents for this mark.
func (m Mark) Label() string {
	return m.Symbol + "  " + m.Description
}

// DescriptionShort truncates the description to 50 characters for listings.
func (m Mark) DescriptionShort() string {
	r := []rune(m.Description)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return m.Description
}

// MarshalJSON adds the truncated description shown in listings.
func (m Mark) MarshalJSON() ([]byte, error) {
	type mark Mark
	return json.Marshal(struct {
		mark
		DescriptionShort string `json:"description_short"`
	}{mark(m), m.DescriptionShort()})
}

// HasExampleMarker reports whether s contains one of the ExampleMarkers.
// The check is case-sensitive.
func HasExampleMarker(s string) bool {
	for _, marker := range ExampleMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// Record is a candidate mark extracted from a green spreadsheet row.
// It is not yet persisted; Row is kept for diagnostics.
type Record struct {
	Symbol          string  `validate:"required"`
	Description     string  `validate:"required"`
	WorkPaperNumber *string
	Category        *string
	Row             int
}

// File is an uploaded spreadsheet handle.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

type memFile struct {
	name string
	data []byte
}

// NewFile wraps in-memory bytes as a File.
func NewFile(name string, data []byte) File {
	return &memFile{name: name, data: data}
}

func (f *memFile) Name() string { return f.name }
func (f *memFile) Size() int64  { return int64(len(f.data)) }

func (f *memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type formFile struct {
	header *multipart.FileHeader
}

// FromMultipart adapts a multipart upload to a File.
func FromMultipart(h *multipart.FileHeader) File {
	return &formFile{header: h}
}

func (f *formFile) Name() string { return f.header.Filename }
func (f *formFile) Size() int64  { return f.header.Size }

func (f *formFile) Open() (io.ReadCloser, error) {
	return f.header.Open()
}

// ImportCommand carries the inputs of one import run.
type ImportCommand struct {
	AuditID         int  `validate:"gt=0"`
	File            File `validate:"required"`
	ReplaceExisting bool
}
