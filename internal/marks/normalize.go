package marks

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize canonicalizes a filename or work-paper number for comparison:
// the text is uppercased with full Unicode case mapping, so "ß" becomes
// "SS", and every character outside A-Z and 0-9 is dropped.
//
//	"A 1 Balance.docx"       -> "A1BALANCEDOCX"
//	"A-1"                    -> "A1"
//	"10 INTEGRACION EGRESOS" -> "10INTEGRACIONEGRESOS"
func Normalize(text string) string {
	upper := cases.Upper(language.Und).String(text)

	var sb strings.Builder
	sb.Grow(len(upper))
	for i := 0; i < len(upper); i++ {
		c := upper[i]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
