package stamp

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/auditmarks/internal/marks"
	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

// Columns spanned by the marks section.
const (
	firstColumn = 2
	lastColumn  = 5
)

// stampSheet writes a merged title Gap rows below the last populated row of
// the active sheet, then one row per mark starting two rows below the title.
// Every written row must lie strictly below the original content.
func (s *Stamper) stampSheet(data []byte, matched []marks.Mark, logger *slog.Logger) ([]byte, error) {
	wb, err := sheet.Open(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	lastRow, err := wb.MaxRow()
	if err != nil {
		return nil, err
	}

	titleRow := lastRow + s.style.Gap
	logger.Debug("marks section placed", "last_row", lastRow, "title_row", titleRow)

	if err := guard(titleRow, lastRow); err != nil {
		return nil, err
	}

	title := sheet.Coordinate{Row: titleRow, Column: firstColumn}
	if err := wb.Merge(title, sheet.Coordinate{Row: titleRow, Column: lastColumn}); err != nil {
		return nil, err
	}
	if err := wb.SetCell(title, s.style.Title, s.cellStyle(s.style.TitleFill)); err != nil {
		return nil, err
	}

	markStyle := s.cellStyle(s.style.MarkFill)
	for i, m := range matched {
		row := titleRow + 2 + i
		if err := guard(row, lastRow); err != nil {
			return nil, err
		}
		if err := wb.SetCell(sheet.Coordinate{Row: row, Column: firstColumn}, m.Label(), markStyle); err != nil {
			return nil, err
		}
	}

	return wb.Bytes()
}

func guard(row, lastRow int) error {
	if row <= lastRow {
		return fmt.Errorf("%w: row %d, last populated row %d", ErrRowSafety, row, lastRow)
	}
	return nil
}

func (s *Stamper) cellStyle(fill string) sheet.Style {
	return sheet.Style{
		Fill:       fill,
		Bold:       true,
		Size:       s.style.Size,
		FontColor:  s.style.Color,
		Horizontal: "left",
		Vertical:   "center",
	}
}
