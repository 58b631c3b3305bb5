// Package names extracts individual platform (hull) names from the tables and
// free-text lists found under a class heading.
//
// Two strategies exist. FromTable reads the first column of a fleet list and
// is authoritative. FromText scans short upper-case paragraphs for runs of
// upper-case tokens and is only a fallback. Both pass every candidate
// through Clean and Valid and return accepted names in document order;
// deduplication is left to the caller.
package names

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperifyio/fleetcat/internal/textnorm"
)

// MaxTextLen bounds the paragraphs FromText will look at. Longer upper-case
// paragraphs are running text, not name lists.
const MaxTextLen = 200

var (
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
	pennantRe = regexp.MustCompile(`\b[PYA] ?\d+\b`)
	classRe   = regexp.MustCompile(`\bCLASS$`)
	runRe     = regexp.MustCompile(`\p{Lu}[\p{Lu}\d'\-]{2,}(?: \p{Lu}[\p{Lu}\d'\-]{2,})*`)
)

// blacklist holds words that mark a candidate as a role, craft or
// organisational label instead of a vessel name.
var blacklist = map[string]struct{}{
	"CLASS": {}, "CRAFT": {}, "BOATS": {}, "BOAT": {},
	"PATROL": {}, "INSHORE": {}, "RESPONSE": {},
	"PBF": {}, "PBR": {}, "PB": {}, "WPB": {},
	"NAVY": {}, "COAST": {}, "GUARD": {},
	"SURVEY": {}, "AIRCRAFT": {},
	"HELICOPTER": {}, "SQUADRON": {},
	"WING": {}, "FLIGHT": {},
}

// Clean strips parenthetical asides such as "(ex-USS FOO)", pennant
// numbers such as "P 131", and collapses whitespace.
func Clean(s string) string {
	s = parenRe.ReplaceAllString(s, " ")
	s = pennantRe.ReplaceAllString(s, " ")
	return textnorm.Collapse(s)
}

// Valid reports whether a cleaned candidate looks like a vessel name.
func Valid(s string) bool {
	if utf8.RuneCountInString(s) < 3 {
		return false
	}
	if classRe.MatchString(s) {
		return false
	}
	hasUpper := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == '-', r == ' ':
		default:
			return false
		}
	}
	if !hasUpper {
		return false
	}
	for _, tok := range strings.Fields(s) {
		if _, bad := blacklist[strings.Trim(tok, "'-")]; bad {
			return false
		}
	}
	return true
}

// FromTable treats rows[0] as a header and offers the first cell of every
// following row. Tables with fewer than two rows contribute nothing.
func FromTable(rows [][]string) []string {
	if len(rows) < 2 {
		return nil
	}
	var out []string
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		out = appendValid(out, row[0])
	}
	return out
}

// FromText returns upper-case token runs from a short, fully upper-case
// paragraph. Any other paragraph contributes nothing.
func FromText(text string) []string {
	text = textnorm.Collapse(text)
	if !Eligible(text) {
		return nil
	}
	// Asides are dropped before matching so that "(EX-FOO)" cannot surface
	// as a run of its own.
	text = parenRe.ReplaceAllString(text, " , ")
	var out []string
	for _, m := range runRe.FindAllString(text, -1) {
		out = appendValid(out, m)
	}
	return out
}

// Eligible reports whether a collapsed paragraph qualifies for FromText.
func Eligible(text string) bool {
	return utf8.RuneCountInString(text) < MaxTextLen && textnorm.IsUpper(text)
}

func appendValid(out []string, candidate string) []string {
	if n := Clean(candidate); Valid(n) {
		out = append(out, n)
	}
	return out
}
