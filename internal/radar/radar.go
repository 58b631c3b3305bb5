// Package radar parses the "Radars:" paragraph of a catalog entry into
// individual radar fits.
package radar

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hyperifyio/fleetcat/internal/doc"
	"github.com/hyperifyio/fleetcat/internal/textnorm"
)

var (
	blockRe    = regexp.MustCompile(`(?i)\bradars?\b`)
	labelRe    = regexp.MustCompile(`(?i)^radars?\s*:\s*`)
	sentenceRe = regexp.MustCompile(`\.\s+`)
	fragmentRe = regexp.MustCompile(`^(?:[A-Z](?:/[A-Z])?-)?(?:BAND)?$`)
)

// bandFragments are tokens left behind when a band qualifier such as
// "L-band" is split across segments.
var bandFragments = map[string]struct{}{
	"L-": {}, "K-": {}, "F-": {}, "G-": {}, "X-": {}, "BAND": {},
}

// vendors are manufacturer names that make a digit-free radar name credible.
var vendors = map[string]struct{}{
	"RAYTHEON": {}, "THALES": {}, "SAAB": {}, "INDRA": {},
	"SELEX": {}, "LEONARDO": {}, "LOCKHEED": {},
	"NORTHROP": {}, "ELTA": {}, "FURUNO": {},
	"JRC": {}, "HENSOLDT": {},
}

// IsBlock reports whether a paragraph describes radars, i.e. mentions
// "radar" or "radars" as a whole word.
func IsBlock(text string) bool {
	return blockRe.MatchString(text)
}

// Parse splits a radar paragraph into fits. Each sentence of the form
// "<type>: <name>; <details>" yields one Radar; sentences without a colon
// are skipped.
func Parse(text string) []doc.Radar {
	text = labelRe.ReplaceAllString(textnorm.Collapse(text), "")
	var out []doc.Radar
	for _, seg := range sentenceRe.Split(text, -1) {
		seg = strings.TrimRight(seg, ". ")
		kind, rest, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		name, _, _ := strings.Cut(rest, ";")
		out = append(out, doc.Radar{
			Type: strings.TrimSpace(kind),
			Name: strings.TrimSpace(name),
			Band: Band(rest),
		})
	}
	return out
}

// Band maps band keywords in s to a band label. Source text sometimes prints
// I-band as "L-band", so both map to BandI.
func Band(s string) string {
	low := strings.ToLower(s)
	switch {
	case strings.Contains(low, "l-band"), strings.Contains(low, "i-band"):
		return doc.BandI
	case strings.Contains(low, "e/f"):
		return doc.BandEF
	case strings.Contains(low, "g-band"):
		return doc.BandG
	}
	return ""
}

// ValidName rejects names that are band fragments or that carry neither a
// digit nor a known manufacturer.
func ValidName(name string) bool {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 3 {
		return false
	}
	upper := strings.ToUpper(name)
	if fragmentRe.MatchString(strings.ReplaceAll(upper, " ", "")) {
		return false
	}
	for _, tok := range strings.Fields(upper) {
		if _, bad := bandFragments[tok]; bad {
			return false
		}
	}
	if strings.IndexFunc(name, unicode.IsDigit) >= 0 {
		return true
	}
	words := strings.FieldsFunc(upper, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := vendors[w]; ok {
			return true
		}
	}
	return false
}

// Filter returns the radars whose names pass ValidName, keeping order.
func Filter(in []doc.Radar) []doc.Radar {
	out := make([]doc.Radar, 0, len(in))
	for _, r := range in {
		if ValidName(r.Name) {
			out = append(out, r)
		}
	}
	return out
}
