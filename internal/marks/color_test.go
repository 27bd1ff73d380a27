package marks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

func cells(fills ...string) []sheet.Cell {
	row := make([]sheet.Cell, len(fills))
	for i, f := range fills {
		row[i] = sheet.Cell{Coordinate: sheet.Coordinate{Row: 2, Column: i + 1}, Value: "x", Fill: f}
	}
	return row
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"C6EFCE", "C6EFCE"},
		{"#c6efce", "C6EFCE"},
		{"FFC6EFCE", "C6EFCE"},
		{" ff00ff00 ", "00FF00"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeColor(tt.raw))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		row  []sheet.Cell
		want RowColor
	}{
		{"light green", cells("C6EFCE", "", "", ""), RowGreen},
		{"argb green", cells("FF92D050"), RowGreen},
		{"green in a later cell", cells("", "", "00B050"), RowGreen},
		{"yellow", cells("FFFF00"), RowYellow},
		{"light yellow", cells("#FFF4CE"), RowYellow},
		{"yellow wins over green", cells("C6EFCE", "FFF4CE"), RowYellow},
		{"no fill", cells("", "", "", ""), RowWhite},
		{"other color", cells("4472C4"), RowWhite},
		{"empty row", nil, RowWhite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.row))
		})
	}
}

func TestRowColorString(t *testing.T) {
	assert.Equal(t, "green", RowGreen.String())
	assert.Equal(t, "yellow", RowYellow.String())
	assert.Equal(t, "white", RowWhite.String())
}

func TestHasData(t *testing.T) {
	t.Run("value in first four columns", func(t *testing.T) {
		row := []sheet.Cell{{}, {}, {Value: "C-1"}, {}}
		assert.True(t, hasData(row))
	})

	t.Run("value past the fourth column is ignored", func(t *testing.T) {
		row := []sheet.Cell{{}, {}, {}, {}, {Value: "nota"}}
		assert.False(t, hasData(row))
	})

	t.Run("empty", func(t *testing.T) {
		assert.False(t, hasData(nil))
	})
}
