// Package doc defines the element stream consumed by the extraction pipeline
// and the raw and final record shapes it produces.
package doc

// Kind identifies the structural kind of a content element as reported by
// the document reader.
type Kind string

const (
	KindSpan      Kind = "span"
	KindParagraph Kind = "paragraph"
	KindTable     Kind = "table"
	KindImage     Kind = "image"
)

// Element is one unit of the source stream. Elements are produced by a
// reader in document order and are not modified afterwards.
type Element struct {
	Kind     Kind       `json:"kind"`
	RoleHint string     `json:"role_hint,omitempty"`
	Text     string     `json:"text,omitempty"`
	Rows     [][]string `json:"rows,omitempty"`
	ImageRef string     `json:"image_ref,omitempty"`
}

// ContentKind tags the variant held by a Content value.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentTable
)

// Content is either a block of free text or a table. Exactly one of Text or
// Rows is meaningful, selected by Kind.
type Content struct {
	Kind ContentKind
	Text string
	Rows [][]string
}

// TextContent wraps a paragraph.
func TextContent(s string) Content { return Content{Kind: ContentText, Text: s} }

// TableContent wraps table rows. The slice is not copied.
func TableContent(rows [][]string) Content { return Content{Kind: ContentTable, Rows: rows} }

// Radar is a single radar fit parsed from a description block.
type Radar struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Band string `json:"band"`
}

// Band labels.
const (
	BandI  = "I-band"
	BandEF = "E/F-band"
	BandG  = "G-band"
)

// UnknownPlatformType is stamped on entries created before any platform-type
// heading was seen for the current country.
const UnknownPlatformType = "unknown"

// RawEntry is the assembler's output for one platform-class heading.
// Country and PlatformType are copied at creation and never change.
type RawEntry struct {
	Seq          int       `json:"seq"`
	Country      string    `json:"country"`
	PlatformType string    `json:"platform_type"`
	ClassLabel   string    `json:"platform_class"`
	Content      []Content `json:"raw_text"`
	Images       []string  `json:"images"`

	// Candidates recorded while assembling, in document order. The
	// normalizer recomputes both from Content with stricter filters.
	Names  []string `json:"names,omitempty"`
	Radars []Radar  `json:"radars,omitempty"`
}

// Record is the normalized output unit.
type Record struct {
	Country       string   `json:"country"`
	PlatformType  string   `json:"platform_type"`
	PlatformClass string   `json:"platform_class"`
	PlatformNames []string `json:"platform_names"`
	Radars        []Radar  `json:"radars"`
	Images        []string `json:"images"`
}
