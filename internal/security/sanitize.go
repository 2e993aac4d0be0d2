package security

import (
	"strings"
	"unicode"
)

// formulaTriggers are the leading characters that make Excel, LibreOffice
// and Google Sheets treat a cell as a formula
const formulaTriggers = "=+-@\t\r"

// SanitizeCell prepares untrusted text for a CSV cell. Control characters are
// removed and a leading formula trigger is escaped with a single quote.
func SanitizeCell(s string) string {
	s = RemoveControlCharacters(s)
	if s != "" && strings.ContainsRune(formulaTriggers, rune(s[0])) {
		return "'" + s
	}
	return s
}

// RemoveControlCharacters removes null bytes and control characters, keeping
// tabs and line breaks
func RemoveControlCharacters(s string) string {
	clean := true
	for _, r := range s {
		if !keepRune(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keepRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepRune(r rune) bool {
	return unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
