package assemble

import (
	"reflect"
	"testing"

	"github.com/hyperifyio/fleetcat/internal/classify"
	"github.com/hyperifyio/fleetcat/internal/doc"
)

func country(s string) doc.Element { return doc.Element{Kind: doc.KindSpan, RoleHint: "font8", Text: s} }
func ptype(s string) doc.Element   { return doc.Element{Kind: doc.KindSpan, RoleHint: "font6", Text: s} }
func header(s string) doc.Element  { return doc.Element{Kind: doc.KindSpan, RoleHint: "font5", Text: s} }
func para(s string) doc.Element    { return doc.Element{Kind: doc.KindParagraph, Text: s} }
func image(s string) doc.Element   { return doc.Element{Kind: doc.KindImage, ImageRef: s} }
func table(rows ...[]string) doc.Element {
	return doc.Element{Kind: doc.KindTable, Rows: rows}
}

func TestAssemble_HeaderSuffixMerge(t *testing.T) {
	got := Assemble([]doc.Element{country("A"), header("FOO"), header("(PB)")})
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d: %#v", len(got), got)
	}
	if got[0].ClassLabel != "FOO (PB)" {
		t.Fatalf("label = %q", got[0].ClassLabel)
	}
}

func TestAssemble_SuffixAfterContentStartsNewEntry(t *testing.T) {
	got := Assemble([]doc.Element{header("FOO"), para("Displacement: 20 t"), header("(PB)")})
	if len(got) != 2 {
		t.Fatalf("expected two entries, got %d", len(got))
	}
	if got[1].ClassLabel != "(PB)" {
		t.Fatalf("second label = %q", got[1].ClassLabel)
	}
}

func TestAssemble_IgnoredElementsDoNotBreakMerge(t *testing.T) {
	noise := doc.Element{Kind: doc.KindSpan, RoleHint: "font2", Text: "page 12"}
	got := Assemble([]doc.Element{header("FOO"), noise, header("(PBF)")})
	if len(got) != 1 || got[0].ClassLabel != "FOO (PBF)" {
		t.Fatalf("got %#v", got)
	}
}

func TestAssemble_NonSuffixHeaderAfterHeaderStartsNewEntry(t *testing.T) {
	got := Assemble([]doc.Element{header("FOO"), header("BAR CLASS")})
	if len(got) != 2 {
		t.Fatalf("expected two entries, got %#v", got)
	}
}

func TestAssemble_CountryAndTypeScoping(t *testing.T) {
	got := Assemble([]doc.Element{country("A"), ptype("T1"), header("X"), country("B"), header("Y")})
	if len(got) != 2 {
		t.Fatalf("expected two entries, got %d", len(got))
	}
	if got[0].ClassLabel != "X" || got[0].Country != "A" || got[0].PlatformType != "T1" {
		t.Fatalf("entry X = %#v", got[0])
	}
	if got[1].ClassLabel != "Y" || got[1].Country != "B" || got[1].PlatformType != doc.UnknownPlatformType {
		t.Fatalf("entry Y = %#v", got[1])
	}
}

func TestAssemble_TypeChangeKeepsEntryOpen(t *testing.T) {
	got := Assemble([]doc.Element{country("A"), ptype("T1"), header("X"), ptype("T2"), para("ALPHA"), header("Y")})
	if len(got) != 2 {
		t.Fatalf("expected two entries, got %d", len(got))
	}
	if got[0].PlatformType != "T1" || len(got[0].Content) != 1 {
		t.Fatalf("entry X = %#v", got[0])
	}
	if got[1].PlatformType != "T2" {
		t.Fatalf("entry Y type = %q", got[1].PlatformType)
	}
}

func TestAssemble_EndOfStreamFlush(t *testing.T) {
	got := Assemble([]doc.Element{country("A"), header("LAST")})
	if len(got) != 1 || got[0].ClassLabel != "LAST" {
		t.Fatalf("got %#v", got)
	}
	if len(got[0].Content) != 0 || len(got[0].Images) != 0 {
		t.Fatalf("expected empty entry, got %#v", got[0])
	}
}

func TestAssemble_PreambleDiscarded(t *testing.T) {
	a := Assembler{}
	got, st := a.Assemble([]doc.Element{para("Foreword"), image("cover.png"), country("A"), para("Intro"), header("X")})
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %#v", got)
	}
	if len(got[0].Content) != 0 {
		t.Fatalf("preamble leaked into entry: %#v", got[0].Content)
	}
	if st.Discarded != 3 || st.Entries != 1 || st.Elements != 5 {
		t.Fatalf("stats = %#v", st)
	}
}

func TestAssemble_ContentAndCandidates(t *testing.T) {
	got := Assemble([]doc.Element{
		country("ALBANIA"),
		ptype("PATROL FORCES"),
		header("ILIRIA CLASS"),
		table([]string{"Name", "No"}, []string{"ILIRIA", "P 131"}, []string{"ORIKU", "P 132"}),
		para("Radars: Navigation: Furuno 1942; I-band."),
		para("LISSUS BUTRINTI"),
		para("Built by Damen Shipyards."),
		image("img/iliria.jpg"),
		image(""),
		table(),
	})
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d", len(got))
	}
	e := got[0]
	if len(e.Content) != 4 {
		t.Fatalf("content = %#v", e.Content)
	}
	if e.Content[0].Kind != doc.ContentTable || e.Content[1].Kind != doc.ContentText {
		t.Fatalf("content order/kinds wrong: %#v", e.Content)
	}
	wantNames := []string{"ILIRIA", "ORIKU", "LISSUS BUTRINTI"}
	if !reflect.DeepEqual(e.Names, wantNames) {
		t.Fatalf("names = %v, want %v", e.Names, wantNames)
	}
	if len(e.Radars) != 1 || e.Radars[0].Name != "Furuno 1942" || e.Radars[0].Band != doc.BandI {
		t.Fatalf("radars = %#v", e.Radars)
	}
	if !reflect.DeepEqual(e.Images, []string{"img/iliria.jpg"}) {
		t.Fatalf("images = %v", e.Images)
	}
}

func TestAssemble_RadarParagraphNotOfferedForNames(t *testing.T) {
	got := Assemble([]doc.Element{header("X"), para("RADARS: SEARCH: THALES VARIANT")})
	if len(got[0].Names) != 0 {
		t.Fatalf("radar paragraph produced names: %v", got[0].Names)
	}
	if len(got[0].Radars) != 1 {
		t.Fatalf("expected radar fit, got %#v", got[0].Radars)
	}
}

func TestStep_DoesNotMutatePreviousState(t *testing.T) {
	s0, _ := Step(State{}, classify.PlatformClassHeader, header("X"))
	s1, _ := Step(s0, classify.FreeParagraph, para("one"))
	s2, _ := Step(s1, classify.FreeParagraph, para("two"))
	if len(s0.Entry.Content) != 0 || len(s1.Entry.Content) != 1 || len(s2.Entry.Content) != 2 {
		t.Fatalf("states share content: %d %d %d", len(s0.Entry.Content), len(s1.Entry.Content), len(s2.Entry.Content))
	}
	if s1.Entry.Content[0].Text != "one" {
		t.Fatalf("s1 content overwritten: %#v", s1.Entry.Content)
	}
}

func TestStep_SeqIncreases(t *testing.T) {
	got := Assemble([]doc.Element{header("A"), header("B"), header("(C)"), country("Z"), header("D")})
	var seqs []int
	for _, e := range got {
		seqs = append(seqs, e.Seq)
	}
	// "(C)" follows "B" directly and merges into it.
	if !reflect.DeepEqual(seqs, []int{0, 1, 2}) {
		t.Fatalf("seqs = %v", seqs)
	}
	if got[1].ClassLabel != "B (C)" {
		t.Fatalf("label = %q", got[1].ClassLabel)
	}
}
