package assemble

import (
	"github.com/rs/zerolog"

	"github.com/hyperifyio/fleetcat/internal/classify"
	"github.com/hyperifyio/fleetcat/internal/doc"
)

// Stats counts what happened to the elements of one stream.
type Stats struct {
	Elements  int `json:"elements"`
	Ignored   int `json:"ignored"`
	Discarded int `json:"discarded"`
	Merged    int `json:"merged"`
	Entries   int `json:"entries"`
}

// Assembler folds a whole stream. The zero value uses the default classifier
// and a disabled logger.
type Assembler struct {
	Classifier classify.Classifier
	Logger     zerolog.Logger
}

// Assemble classifies every element in order and returns the raw entries in
// the order their headings appeared.
func (a Assembler) Assemble(elements []doc.Element) ([]doc.RawEntry, Stats) {
	var (
		st  State
		out []doc.RawEntry
		ss  Stats
	)
	for i, el := range elements {
		ss.Elements++
		role := a.Classifier.Classify(el)
		switch {
		case role == classify.Ignore:
			ss.Ignored++
		case isContent(role) && !st.InEntry:
			ss.Discarded++
			a.Logger.Debug().Int("element", i).Str("role", role.String()).Msg("content before first class heading; dropped")
		}
		prev := st
		next, flushed := Step(st, role, el)
		if role == classify.PlatformClassHeader && prev.InEntry && next.Entry.Seq == prev.Entry.Seq {
			ss.Merged++
			a.Logger.Debug().Str("label", next.Entry.ClassLabel).Msg("merged class suffix")
		}
		if flushed != nil {
			out = append(out, *flushed)
		}
		st = next
	}
	if _, flushed := Finish(st); flushed != nil {
		out = append(out, *flushed)
	}
	ss.Entries = len(out)
	return out, ss
}

// Assemble is shorthand for the zero Assembler.
func Assemble(elements []doc.Element) []doc.RawEntry {
	out, _ := Assembler{Logger: zerolog.Nop()}.Assemble(elements)
	return out
}

func isContent(r classify.Role) bool {
	return r == classify.Table || r == classify.FreeParagraph || r == classify.Image
}
