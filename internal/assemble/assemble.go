// Package assemble turns a classified element stream into raw class entries.
//
// The assembler is a fold: Step takes the current State and one element and
// returns the next State together with the entry it flushed, if any. State
// values are never mutated in place, so any intermediate State can be kept
// and inspected.
package assemble

import (
	"regexp"

	"github.com/hyperifyio/fleetcat/internal/classify"
	"github.com/hyperifyio/fleetcat/internal/doc"
	"github.com/hyperifyio/fleetcat/internal/names"
	"github.com/hyperifyio/fleetcat/internal/radar"
	"github.com/hyperifyio/fleetcat/internal/textnorm"
)

// suffixRe matches class-heading continuations such as "(PB)" that the
// layout sets as a separate heading span.
var suffixRe = regexp.MustCompile(`^\([A-Z0-9]+\)$`)

// State is the assembler's position in the hierarchy. The zero value is the
// initial state: no country, unknown platform type, no open entry.
type State struct {
	Country      string
	PlatformType string

	// InEntry reports whether Entry is open.
	InEntry bool
	Entry   doc.RawEntry

	// afterHeader is set while the last non-ignored element was a class
	// heading; only then may a suffix heading extend the label.
	afterHeader bool
	nextSeq     int
}

func (s State) platformType() string {
	if s.PlatformType == "" {
		return doc.UnknownPlatformType
	}
	return s.PlatformType
}

// flush closes the open entry, if any.
func (s State) flush() (State, *doc.RawEntry) {
	if !s.InEntry {
		return s, nil
	}
	e := s.Entry
	s.InEntry = false
	s.Entry = doc.RawEntry{}
	return s, &e
}

// Step applies one classified element. Rules are checked in order: country,
// platform type, suffix merge, new class heading, content. Content arriving
// with no open entry is dropped.
func Step(s State, role classify.Role, el doc.Element) (State, *doc.RawEntry) {
	var flushed *doc.RawEntry
	switch role {
	case classify.Ignore:
		return s, nil

	case classify.Country:
		s, flushed = s.flush()
		s.Country = textnorm.Collapse(el.Text)
		s.PlatformType = doc.UnknownPlatformType
		s.afterHeader = false
		return s, flushed

	case classify.PlatformType:
		s.PlatformType = textnorm.Collapse(el.Text)
		s.afterHeader = false
		return s, nil

	case classify.PlatformClassHeader:
		text := textnorm.Collapse(el.Text)
		if s.InEntry && s.afterHeader && suffixRe.MatchString(text) {
			s.Entry.ClassLabel += " " + text
			return s, nil
		}
		s, flushed = s.flush()
		s.Entry = doc.RawEntry{
			Seq:          s.nextSeq,
			Country:      s.Country,
			PlatformType: s.platformType(),
			ClassLabel:   text,
		}
		s.nextSeq++
		s.InEntry = true
		s.afterHeader = true
		return s, flushed
	}

	s.afterHeader = false
	if !s.InEntry {
		return s, nil
	}
	s.Entry = appendContent(s.Entry, role, el)
	return s, nil
}

// Finish flushes the open entry at end of stream.
func Finish(s State) (State, *doc.RawEntry) {
	s, flushed := s.flush()
	s.afterHeader = false
	return s, flushed
}

// appendContent returns a copy of e with the element's contribution added.
// Slices are always reallocated so earlier States keep their own view.
func appendContent(e doc.RawEntry, role classify.Role, el doc.Element) doc.RawEntry {
	switch role {
	case classify.Table:
		if len(el.Rows) == 0 {
			return e
		}
		e.Content = appendOwned(e.Content, doc.TableContent(el.Rows))
		e.Names = appendOwned(e.Names, names.FromTable(el.Rows)...)

	case classify.FreeParagraph:
		text := textnorm.Collapse(el.Text)
		if text == "" {
			return e
		}
		e.Content = appendOwned(e.Content, doc.TextContent(text))
		switch {
		case radar.IsBlock(text):
			e.Radars = appendOwned(e.Radars, radar.Parse(text)...)
		case names.Eligible(text):
			e.Names = appendOwned(e.Names, names.FromText(text)...)
		}

	case classify.Image:
		if el.ImageRef == "" {
			return e
		}
		e.Images = appendOwned(e.Images, el.ImageRef)
	}
	return e
}

func appendOwned[T any](s []T, v ...T) []T {
	if len(v) == 0 {
		return s
	}
	out := make([]T, 0, len(s)+len(v))
	out = append(out, s...)
	return append(out, v...)
}
