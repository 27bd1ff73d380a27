package marks

import (
	"strings"

	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

// RowColor is the import classification of a spreadsheet row.
type RowColor int

const (
	RowWhite RowColor = iota
	RowYellow
	RowGreen
)

func (c RowColor) String() string {
	switch c {
	case RowGreen:
		return "green"
	case RowYellow:
		return "yellow"
	default:
		return "white"
	}
}

// GreenPalette lists the fills that mark a row for import. Several shades
// are accepted so theme and tint variants still qualify.
var GreenPalette = []string{
	"00FF00", "C6EFCE", "90EE90", "92D050", "C5E0B4",
	"00B050", "E2EFDA", "A9D08E", "70AD47",
}

// YellowPalette lists the fills of template example rows.
var YellowPalette = []string{
	"FFFF00", "FFFFE0", "FFF4CE", "FFEB9C", "FFD966",
	"FFC000", "F4B084", "FCE4D6",
}

// NormalizeColor strips a leading '#', drops the alpha byte of an 8-digit
// ARGB value, and uppercases the result.
func NormalizeColor(raw string) string {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(hex) == 8 {
		hex = hex[2:]
	}
	return strings.ToUpper(hex)
}

// Classify returns the color class of a row. Yellow is tested before green,
// so a row carrying both is treated as an example and skipped.
func Classify(row []sheet.Cell) RowColor {
	if rowMatches(row, YellowPalette) {
		return RowYellow
	}
	if rowMatches(row, GreenPalette) {
		return RowGreen
	}
	return RowWhite
}

func rowMatches(row []sheet.Cell, palette []string) bool {
	for _, cell := range row {
		hex := NormalizeColor(cell.Fill)
		if hex == "" {
			continue
		}
		for _, shade := range palette {
			if strings.Contains(hex, shade) {
				return true
			}
		}
	}
	return false
}

// hasData reports whether any of the first four cells holds a value.
// Columns past the fourth are ignored.
func hasData(row []sheet.Cell) bool {
	for i, cell := range row {
		if i >= 4 {
			break
		}
		if cell.Value != "" {
			return true
		}
	}
	return false
}
