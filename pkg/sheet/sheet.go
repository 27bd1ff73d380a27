// Package sheet provides a narrow spreadsheet capability over excelize.
// It exposes cell coordinates, background fill reads, styled writes and
// merges on a single working sheet, which is all the mark import, template
// and stamping paths need from a workbook.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Coordinate addresses a cell by 1-based row and column.
type Coordinate struct {
	Row    int
	Column int
}

// Name returns the A1-style reference for the coordinate.
func (c Coordinate) Name() (string, error) {
	return excelize.CoordinatesToCellName(c.Column, c.Row)
}

// Cell is a read view of a single cell: its position, its formatted value,
// and the raw background color of its fill (empty when the cell has none).
type Cell struct {
	Coordinate
	Value string
	Fill  string
}

// Style describes the formatting applied by SetCell.
// Zero values leave the corresponding attribute unset.
type Style struct {
	Fill       string
	Bold       bool
	Size       float64
	FontColor  string
	Horizontal string
	Vertical   string
	Wrap       bool
	Border     bool
}

// Workbook wraps an excelize file and tracks the sheet that reads and
// writes operate on.
type Workbook struct {
	file   *excelize.File
	sheet  string
	fills  map[int]string
	styles map[Style]int
}

// Open reads a workbook from r and selects its active sheet.
func Open(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		f.Close()
		return nil, fmt.Errorf("open workbook: no active sheet")
	}

	return wrap(f, name), nil
}

// New creates an empty workbook whose first sheet is named sheetName.
func New(sheetName string) (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	return wrap(f, sheetName), nil
}

func wrap(f *excelize.File, sheet string) *Workbook {
	return &Workbook{
		file:   f,
		sheet:  sheet,
		fills:  make(map[int]string),
		styles: make(map[Style]int),
	}
}

// Close releases resources held by the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheet returns the name of the working sheet.
func (w *Workbook) Sheet() string {
	return w.sheet
}

// AddSheet appends a sheet and makes it the working sheet.
func (w *Workbook) AddSheet(name string) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	w.sheet = name
	return nil
}

// Use switches the working sheet and marks it active in the workbook.
func (w *Workbook) Use(name string) error {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("find sheet %s: %w", name, err)
	}
	if idx < 0 {
		return fmt.Errorf("sheet %s does not exist", name)
	}
	w.file.SetActiveSheet(idx)
	w.sheet = name
	return nil
}

// MaxRow returns the highest populated row of the working sheet. Both the
// stored sheet dimension and the materialized rows are consulted so styled
// but empty trailing rows are counted.
func (w *Workbook) MaxRow() (int, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}

	_, dimRow, err := w.dimension()
	if err != nil {
		return 0, err
	}

	return max(len(rows), dimRow), nil
}

// MaxColumn returns the highest populated column of the working sheet.
func (w *Workbook) MaxColumn() (int, error) {
	dimCol, _, err := w.dimension()
	if err != nil {
		return 0, err
	}

	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}
	for _, r := range rows {
		dimCol = max(dimCol, len(r))
	}
	return dimCol, nil
}

// Rows reads every row from start to MaxRow. Each row spans at least
// columns cells, widened to MaxColumn when the sheet is wider.
func (w *Workbook) Rows(start, columns int) ([][]Cell, error) {
	maxRow, err := w.MaxRow()
	if err != nil {
		return nil, err
	}
	maxCol, err := w.MaxColumn()
	if err != nil {
		return nil, err
	}

	width := max(columns, maxCol)
	out := make([][]Cell, 0, max(maxRow-start+1, 0))
	for r := start; r <= maxRow; r++ {
		cells, err := w.Row(r, width)
		if err != nil {
			return nil, err
		}
		out = append(out, cells)
	}
	return out, nil
}

// Row reads columns 1..width of the given row.
func (w *Workbook) Row(row, width int) ([]Cell, error) {
	cells := make([]Cell, 0, width)
	for col := 1; col <= width; col++ {
		coord := Coordinate{Row: row, Column: col}
		name, err := coord.Name()
		if err != nil {
			return nil, err
		}

		value, err := w.file.GetCellValue(w.sheet, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		fill, err := w.fill(name)
		if err != nil {
			return nil, err
		}

		cells = append(cells, Cell{Coordinate: coord, Value: value, Fill: fill})
	}
	return cells, nil
}

func (w *Workbook) fill(cell string) (string, error) {
	idx, err := w.file.GetCellStyle(w.sheet, cell)
	if err != nil {
		return "", fmt.Errorf("read style %s: %w", cell, err)
	}

	if hex, ok := w.fills[idx]; ok {
		return hex, nil
	}

	st, err := w.file.GetStyle(idx)
	if err != nil {
		return "", fmt.Errorf("resolve style %d: %w", idx, err)
	}

	var hex string
	if st != nil && len(st.Fill.Color) > 0 {
		hex = st.Fill.Color[0]
	}
	w.fills[idx] = hex
	return hex, nil
}

// SetCell writes value at c with the given style.
func (w *Workbook) SetCell(c Coordinate, value any, style Style) error {
	name, err := c.Name()
	if err != nil {
		return err
	}

	if err := w.file.SetCellValue(w.sheet, name, value); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	id, err := w.style(style)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(w.sheet, name, name, id); err != nil {
		return fmt.Errorf("style %s: %w", name, err)
	}
	return nil
}

// Merge merges the rectangular range from..to on the working sheet.
func (w *Workbook) Merge(from, to Coordinate) error {
	start, err := from.Name()
	if err != nil {
		return err
	}
	end, err := to.Name()
	if err != nil {
		return err
	}
	if err := w.file.MergeCell(w.sheet, start, end); err != nil {
		return fmt.Errorf("merge %s:%s: %w", start, end, err)
	}
	return nil
}

// SetColumnWidth sets the width of a lettered column on the working sheet.
func (w *Workbook) SetColumnWidth(column string, width float64) error {
	return w.file.SetColWidth(w.sheet, column, column, width)
}

// Bytes serializes the workbook.
func (w *Workbook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.file.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Workbook) style(s Style) (int, error) {
	if id, ok := w.styles[s]; ok {
		return id, nil
	}

	st := &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: s.Horizontal,
			Vertical:   s.Vertical,
			WrapText:   s.Wrap,
		},
	}

	if s.Bold || s.Size > 0 || s.FontColor != "" {
		st.Font = &excelize.Font{
			Bold:  s.Bold,
			Size:  s.Size,
			Color: s.FontColor,
		}
	}

	if s.Fill != "" {
		st.Fill = excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{s.Fill},
		}
	}

	if s.Border {
		st.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		}
	}

	id, err := w.file.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[s] = id
	return id, nil
}

func (w *Workbook) dimension() (col, row int, err error) {
	dim, err := w.file.GetSheetDimension(w.sheet)
	if err != nil {
		return 0, 0, fmt.Errorf("read dimension: %w", err)
	}
	if dim == "" {
		return 0, 0, nil
	}

	ref := dim
	if _, after, ok := strings.Cut(dim, ":"); ok {
		ref = after
	}

	col, row, err = excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0, 0, fmt.Errorf("parse dimension %q: %w", dim, err)
	}
	return col, row, nil
}
