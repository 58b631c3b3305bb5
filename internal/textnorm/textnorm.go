// Package textnorm holds the whitespace and Unicode cleanup shared by every
// stage of the pipeline.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Collapse replaces every run of Unicode whitespace with a single space and
// trims both ends.
func Collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimRight(b.String(), " ")
}

// apostrophes maps typographic quote marks seen in typeset catalogs to the
// ASCII apostrophe so that name heuristics only need one form.
var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'")

// Clean composes text to NFC, folds typographic apostrophes and collapses
// whitespace. Readers apply it once to every string they emit.
func Clean(s string) string {
	return Collapse(apostrophes.Replace(norm.NFC.String(s)))
}

// IsUpper reports whether s has at least one upper-case letter and no
// lower-case letter.
func IsUpper(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}
