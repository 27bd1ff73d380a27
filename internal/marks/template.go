package marks

import (
	"fmt"

	"github.com/JaimeStill/auditmarks/pkg/sheet"
)

// Template sheet names.
const (
	TemplateSheet     = "Marcas de Auditoría"
	InstructionsSheet = "Instrucciones"
)

// Fills used by the template rows. Green and yellow belong to the
// classifier palettes so the template imports as documented.
const (
	templateHeaderFill = "4472C4"
	templateGreenFill  = "C6EFCE"
	templateYellowFill = "FFF4CE"
)

var templateHeaders = []string{"Símbolo", "Descripción", "Papel de Trabajo", "Categoría"}

var templateWidths = []struct {
	column string
	width  float64
}{
	{"A", 12},
	{"B", 50},
	{"C", 18},
	{"D", 15},
}

type templateRow struct {
	values [markColumns]string
	fill   string
}

var templateRows = []templateRow{
	{[markColumns]string{"✓", "Verificado con extracto bancario", "1", "Efectivo"}, templateGreenFill},
	{[markColumns]string{"◊", "Revisado y confirmado", "2", "Efectivo"}, templateGreenFill},
	{[markColumns]string{"★", "Referenciado cruzado con libro mayor", "10", "Egresos"}, templateGreenFill},
	{[markColumns]string{"⊕", "Verificado matemáticamente", "11", "Egresos"}, templateGreenFill},
	{[markColumns]string{"×", "Marca inactiva - no se importará", "C-1", "Cuentas por cobrar"}, ""},
	{[markColumns]string{"▲", "Examinado con documentación de respaldo", "D-1", "Propiedad"}, templateGreenFill},
	{[markColumns]string{"❌", "Ejemplo: Marca de ejemplo 1", "TEST-1", "Ejemplo"}, templateYellowFill},
	{[markColumns]string{"⚠", "Ejemplo: Marca de ejemplo 2", "TEST-2", "Ejemplo"}, templateYellowFill},
}

type instruction struct {
	text  string
	style sheet.Style
}

var (
	instructionTitle   = sheet.Style{Fill: templateHeaderFill, Bold: true, Size: 12, FontColor: "FFFFFF", Horizontal: "left", Vertical: "top", Wrap: true}
	instructionHeading = sheet.Style{Bold: true, Horizontal: "left", Vertical: "top", Wrap: true}
	instructionBody    = sheet.Style{Horizontal: "left", Vertical: "top", Wrap: true}
)

var instructions = []instruction{
	{"INSTRUCCIONES PARA USAR ESTA PLANTILLA", instructionTitle},
	{"", instructionBody},
	{"1. COLOR DE FILAS:", instructionHeading},
	{"   🟢 VERDE: Marque las filas que desea importar al sistema", instructionBody},
	{"   ⚪ BLANCO/SIN COLOR: Estas filas NO se importarán (marcas inactivas)", instructionBody},
	{"   🟡 AMARILLO: Estas filas NO se importarán (son ejemplos de referencia)", instructionBody},
	{"", instructionBody},
	{"2. COLUMNAS REQUERIDAS:", instructionHeading},
	{"   • Símbolo: Carácter o emoji que representa la marca (ej: ✓, ◊, ★)", instructionBody},
	{"   • Descripción: Texto que explica qué significa esta marca", instructionBody},
	{"   • Papel de Trabajo: Código del papel (ej: 1, 10, A-1) - usado para emparejar con documentos", instructionBody},
	{"   • Categoría: Agrupación opcional (ej: Efectivo, Inventario)", instructionBody},
	{"", instructionBody},
	{"3. CÓMO MARCAR FILAS COMO VERDES:", instructionHeading},
	{"   a. Seleccione toda la fila", instructionBody},
	{"   b. Clic derecho → Formato de celdas → Relleno", instructionBody},
	{"   c. Seleccione color verde claro (ej: #C6EFCE)", instructionBody},
	{"", instructionBody},
	{"4. EJEMPLOS:", instructionHeading},
	{"   • Vea la pestaña 'Marcas de Auditoría' para ejemplos con colores", instructionBody},
	{"   • Las filas verdes en la plantilla serán importadas", instructionBody},
	{"   • Las filas amarillas son ejemplos y serán ignoradas", instructionBody},
	{"", instructionBody},
	{"5. DESPUÉS DE COMPLETAR:", instructionHeading},
	{"   • Guarde el archivo", instructionBody},
	{"   • En el sistema, vaya a su auditoría", instructionBody},
	{"   • Clic en 'Marcas de Auditoría'", instructionBody},
	{"   • Suba este archivo Excel", instructionBody},
	{"", instructionBody},
	{"6. NÚMEROS DE PAPEL DE TRABAJO:", instructionHeading},
	{"   • Use el número/nombre del archivo sin extensión", instructionBody},
	{"   • Ejemplo: Para archivo '1 PROGRAMA.docx' use '1'", instructionBody},
	{"   • Ejemplo: Para archivo '10 INTEGRACION EGRESOS.xlsx' use '10'", instructionBody},
	{"   • El sistema normalizará automáticamente (quita espacios, guiones, etc.)", instructionBody},
}

// BuildTemplate generates the example workbook: a header row, color-coded
// sample rows on the marks sheet and an instructions sheet. The marks sheet
// is left active so the template imports as documented.
func BuildTemplate() ([]byte, error) {
	wb, err := sheet.New(TemplateSheet)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	if err := writeTemplateRows(wb); err != nil {
		return nil, fmt.Errorf("build template rows: %w", err)
	}

	if err := wb.AddSheet(InstructionsSheet); err != nil {
		return nil, err
	}
	if err := writeInstructions(wb); err != nil {
		return nil, fmt.Errorf("build instructions: %w", err)
	}

	if err := wb.Use(TemplateSheet); err != nil {
		return nil, err
	}
	return wb.Bytes()
}

func writeTemplateRows(wb *sheet.Workbook) error {
	header := sheet.Style{
		Fill:       templateHeaderFill,
		Bold:       true,
		Size:       12,
		FontColor:  "FFFFFF",
		Horizontal: "center",
		Vertical:   "center",
		Border:     true,
	}
	for i, h := range templateHeaders {
		if err := wb.SetCell(sheet.Coordinate{Row: 1, Column: i + 1}, h, header); err != nil {
			return err
		}
	}

	for _, w := range templateWidths {
		if err := wb.SetColumnWidth(w.column, w.width); err != nil {
			return err
		}
	}

	for i, row := range templateRows {
		style := sheet.Style{
			Fill:       row.fill,
			Size:       11,
			Horizontal: "left",
			Vertical:   "center",
			Wrap:       true,
			Border:     true,
		}
		for col, v := range row.values {
			c := sheet.Coordinate{Row: firstDataRow + i, Column: col + 1}
			if err := wb.SetCell(c, v, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeInstructions(wb *sheet.Workbook) error {
	if err := wb.SetColumnWidth("A", 80); err != nil {
		return err
	}
	for i, line := range instructions {
		if err := wb.SetCell(sheet.Coordinate{Row: i + 1, Column: 1}, line.text, line.style); err != nil {
			return err
		}
	}
	return nil
}
