package guest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns the comparison form of s: accents removed, lowercased,
// surrounding whitespace trimmed (e.g. "  Sofía PÉREZ " -> "sofia perez").
// Display text is never normalized.
func Normalize(s string) string {
	result, _, _ := transform.String(stripAccents, strings.ToLower(s))
	return strings.TrimSpace(result)
}
