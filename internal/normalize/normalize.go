// Package normalize re-validates raw class entries and reduces them to the
// final record shape.
//
// Normalization runs after assembly has finished and looks at each entry on
// its own: names and radars are recomputed from the entry's content with
// stricter filters than the assembler applies, section headings that share
// the class-heading style are dropped, and image lists are reduced according
// to the configured policy. The pass is a pure function of its input.
package normalize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/fleetcat/internal/doc"
	"github.com/hyperifyio/fleetcat/internal/names"
	"github.com/hyperifyio/fleetcat/internal/radar"
	"github.com/hyperifyio/fleetcat/internal/textnorm"
)

// ImagePolicy selects which image references survive into a record.
type ImagePolicy string

const (
	ImagesAll   ImagePolicy = "all"
	ImagesFirst ImagePolicy = "first"
)

// ParseImagePolicy accepts "all" or "first"; empty means all.
func ParseImagePolicy(s string) (ImagePolicy, error) {
	switch p := ImagePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", ImagesAll:
		return ImagesAll, nil
	case ImagesFirst:
		return p, nil
	}
	return "", fmt.Errorf("unknown image policy %q (want all or first)", s)
}

// sectionLabels are headings typeset like class headings that introduce
// country-level sections instead of a platform class.
var sectionLabels = map[string]struct{}{
	"PENNANT LIST":  {},
	"DELETIONS":     {},
	"NOTES":         {},
	"COMMENTS":      {},
	"PROGRAMMES":    {},
	"PROGRAMS":      {},
	"MODERNISATION": {},
	"MODERNIZATION": {},
	"STRUCTURE":     {},
	"OPERATIONAL":   {},
	"AUXILIARIES":   {},
	"COAST DEFENCE": {},
	"COAST DEFENSE": {},
}

// IsSectionLabel reports whether a cleaned class label names a non-platform
// section.
func IsSectionLabel(label string) bool {
	_, ok := sectionLabels[strings.ToUpper(textnorm.Collapse(label))]
	return ok
}

// Stats summarises one normalization run.
type Stats struct {
	Input    int `json:"input"`
	Emitted  int `json:"emitted"`
	Rejected int `json:"rejected"`
}

// Normalizer turns raw entries into records. Workers > 1 spreads entries
// over that many goroutines; output order always follows input order.
type Normalizer struct {
	Policy  ImagePolicy
	Workers int
	Logger  zerolog.Logger
}

// Run normalizes entries. The only error it returns is ctx's.
func (n Normalizer) Run(ctx context.Context, entries []doc.RawEntry) ([]doc.Record, Stats, error) {
	results := make([]*doc.Record, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	workers := n.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i := range entries {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, ok := n.Entry(entries[i])
			if !ok {
				n.Logger.Info().
					Int("seq", entries[i].Seq).
					Str("country", entries[i].Country).
					Str("label", entries[i].ClassLabel).
					Msg("rejected section heading")
				return nil
			}
			results[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, Stats{}, err
	}

	st := Stats{Input: len(entries)}
	out := make([]doc.Record, 0, len(entries))
	for _, r := range results {
		if r == nil {
			st.Rejected++
			continue
		}
		out = append(out, *r)
	}
	st.Emitted = len(out)
	return out, st, nil
}

// Entry normalizes a single entry. ok is false when the entry is a section
// heading and must be dropped.
func (n Normalizer) Entry(e doc.RawEntry) (rec doc.Record, ok bool) {
	label := textnorm.Collapse(e.ClassLabel)
	if IsSectionLabel(label) {
		return doc.Record{}, false
	}
	return doc.Record{
		Country:       e.Country,
		PlatformType:  e.PlatformType,
		PlatformClass: label,
		PlatformNames: Names(e.Content),
		Radars:        Radars(e.Content),
		Images:        reduceImages(e.Images, n.Policy),
	}, true
}

// Names recomputes platform names from an entry's content. Table-derived
// names win; free-text names are used only when no table yields any.
// The result is deduplicated and sorted, and never nil.
func Names(content []doc.Content) []string {
	var fromTables, fromText []string
	for _, c := range content {
		switch c.Kind {
		case doc.ContentTable:
			fromTables = append(fromTables, names.FromTable(c.Rows)...)
		case doc.ContentText:
			if radar.IsBlock(c.Text) {
				continue
			}
			fromText = append(fromText, names.FromText(c.Text)...)
		}
	}
	if len(fromTables) > 0 {
		return dedupSorted(fromTables)
	}
	return dedupSorted(fromText)
}

// Radars recomputes radar fits from an entry's radar paragraphs and keeps
// only plausible names. Never nil.
func Radars(content []doc.Content) []doc.Radar {
	out := []doc.Radar{}
	for _, c := range content {
		switch c.Kind {
		case doc.ContentText:
			if radar.IsBlock(c.Text) {
				out = append(out, radar.Filter(radar.Parse(c.Text))...)
			}
		case doc.ContentTable:
		}
	}
	return out
}

func dedupSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func reduceImages(images []string, p ImagePolicy) []string {
	if len(images) == 0 {
		return []string{}
	}
	if p == ImagesFirst {
		return []string{images[0]}
	}
	return append([]string(nil), images...)
}
