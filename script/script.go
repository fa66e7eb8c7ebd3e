// Package script filters text down to a single Unicode writing system.
package script

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Gujarati covers the assigned code points of the Gujarati block,
// U+0A80 to U+0AFF.
var Gujarati = unicode.Gujarati

// Filter keeps only the runes of table plus whitespace, then collapses
// whitespace runs into single spaces. Input is NFC-normalized first so that
// vowel signs and their base consonants stay together.
func Filter(s string, table *unicode.RangeTable) string {
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(table, r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// FilterGujarati is Filter with the Gujarati table.
func FilterGujarati(s string) string {
	return Filter(s, Gujarati)
}

// Contains reports whether s has at least one rune of table.
func Contains(s string, table *unicode.RangeTable) bool {
	for _, r := range s {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// IsMostly reports whether more than half of the letters and marks in s
// belong to table. Digits, punctuation and spaces are not counted.
func IsMostly(s string, table *unicode.RangeTable) bool {
	var inScript, total int
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsMark(r) {
			continue
		}
		total++
		if unicode.Is(table, r) {
			inScript++
		}
	}
	return total > 0 && inScript*2 > total
}

// Lookup returns the range table for a script name such as "gujarati".
func Lookup(name string) (*unicode.RangeTable, bool) {
	for scriptName, table := range unicode.Scripts {
		if strings.EqualFold(scriptName, name) {
			return table, true
		}
	}
	return nil, false
}
