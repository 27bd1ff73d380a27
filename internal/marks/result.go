package marks

import "fmt"

// ImportResult summarizes one import run. It lives only for the duration
// of the call that produced it.
type ImportResult struct {
	Success             bool     `json:"success"`
	MarksImported       int      `json:"marks_imported"`
	MarksSkippedWhite   int      `json:"marks_skipped_white"`
	MarksSkippedYellow  int      `json:"marks_skipped_yellow"`
	MarksSkippedInvalid int      `json:"marks_skipped_invalid"`
	MarksReplaced       int64    `json:"marks_replaced"`
	Errors              []string `json:"errors"`
}

// Summary renders the counters as four human-readable lines.
func (r ImportResult) Summary() string {
	return fmt.Sprintf(
		"✅ Importadas: %d marcas\n"+
			"⚪ Omitidas (blancas/sin color): %d\n"+
			"🟡 Omitidas (ejemplos amarillos): %d\n"+
			"❌ Omitidas (inválidas): %d",
		r.MarksImported,
		r.MarksSkippedWhite,
		r.MarksSkippedYellow,
		r.MarksSkippedInvalid,
	)
}

// Response is the JSON body returned by the import endpoint.
type Response struct {
	ImportResult
	Summary string `json:"summary"`
}

func newResponse(r *ImportResult) Response {
	return Response{ImportResult: *r, Summary: r.Summary()}
}

func (r *ImportResult) rowError(row int, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("Fila %d: Error al procesar - %v", row, err))
	r.MarksSkippedInvalid++
}
