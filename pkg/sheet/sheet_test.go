package sheet_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

func TestCoordinateName(t *testing.T) {
	name, err := sheet.Coordinate{Row: 12, Column: 28}.Name()
	require.NoError(t, err)
	assert.Equal(t, "AB12", name)

	_, err = sheet.Coordinate{Row: 0, Column: 1}.Name()
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	wb, err := sheet.New("Marcas")
	require.NoError(t, err)

	require.NoError(t, wb.SetCell(sheet.Coordinate{Row: 1, Column: 1}, "MARCAS", sheet.Style{Bold: true, Fill: "D3D3D3"}))
	require.NoError(t, wb.SetCell(sheet.Coordinate{Row: 2, Column: 1}, "A-1", sheet.Style{Fill: "FFFF00"}))
	require.NoError(t, wb.SetCell(sheet.Coordinate{Row: 2, Column: 2}, "Caja", sheet.Style{}))
	require.NoError(t, wb.SetCell(sheet.Coordinate{Row: 3, Column: 1}, 42, sheet.Style{Border: true}))
	require.NoError(t, wb.Merge(sheet.Coordinate{Row: 1, Column: 1}, sheet.Coordinate{Row: 1, Column: 3}))
	require.NoError(t, wb.SetColumnWidth("A", 20))

	data, err := wb.Bytes()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	reopened, err := sheet.Open(bytes.NewReader(data))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, "Marcas", reopened.Sheet())

	maxRow, err := reopened.MaxRow()
	require.NoError(t, err)
	assert.Equal(t, 3, maxRow)

	rows, err := reopened.Rows(2, 4)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rows[0], 4)

	assert.Equal(t, "A-1", rows[0][0].Value)
	assert.Equal(t, sheet.Coordinate{Row: 2, Column: 1}, rows[0][0].Coordinate)
	assert.Contains(t, strings.ToUpper(rows[0][0].Fill), "FFFF00")
	assert.Equal(t, "Caja", rows[0][1].Value)
	assert.Empty(t, rows[0][1].Fill)
	assert.Equal(t, "42", rows[1][0].Value)
	assert.Empty(t, rows[1][3].Value)
}

func TestAddAndUseSheet(t *testing.T) {
	wb, err := sheet.New("Marcas")
	require.NoError(t, err)
	defer wb.Close()

	require.NoError(t, wb.AddSheet("Papeles"))
	assert.Equal(t, "Papeles", wb.Sheet())

	require.NoError(t, wb.Use("Marcas"))
	assert.Equal(t, "Marcas", wb.Sheet())

	assert.Error(t, wb.Use("Inexistente"))
}

func TestOpenInvalid(t *testing.T) {
	_, err := sheet.Open(strings.NewReader("not a workbook"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}
