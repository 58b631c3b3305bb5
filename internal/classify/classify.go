// Package classify maps content elements to the semantic role they play in
// the catalog layout. Classification looks at one element at a time; any
// decision that depends on neighbouring elements belongs to the assembler.
package classify

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/fleetcat/internal/doc"
)

// Role is the semantic role of an element.
type Role int

const (
	Ignore Role = iota
	Country
	PlatformType
	PlatformClassHeader
	Table
	FreeParagraph
	Image
)

var roleNames = map[Role]string{
	Ignore:              "ignore",
	Country:             "country",
	PlatformType:        "platform_type",
	PlatformClassHeader: "platform_class",
	Table:               "table",
	FreeParagraph:       "paragraph",
	Image:               "image",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole is the inverse of Role.String for the heading roles that may
// appear in a style map.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "country":
		return Country, nil
	case "platform_type", "type":
		return PlatformType, nil
	case "platform_class", "class":
		return PlatformClassHeader, nil
	case "ignore":
		return Ignore, nil
	}
	return Ignore, fmt.Errorf("unknown role %q", s)
}

// StyleMap assigns a heading role to a style identifier (for HTML exports,
// the class name of the span carrying the heading). Keys match
// case-insensitively, as HTML class and tag names do.
type StyleMap map[string]Role

// DefaultStyles is the layout of the reference catalog's HTML export: the
// largest font marks a country, the next a platform type and the class
// headings use a third style.
func DefaultStyles() StyleMap {
	return StyleMap{
		"font8": Country,
		"font6": PlatformType,
		"font5": PlatformClassHeader,
	}
}

// Classifier is stateless; the zero value uses DefaultStyles.
type Classifier struct {
	Styles StyleMap
}

// Classify returns the role of e. Unknown or missing metadata yields Ignore.
func (c Classifier) Classify(e doc.Element) Role {
	switch e.Kind {
	case doc.KindTable:
		return Table
	case doc.KindImage:
		return Image
	case doc.KindParagraph:
		if role, ok := c.styleRole(e.RoleHint); ok {
			return role
		}
		return FreeParagraph
	case doc.KindSpan:
		if role, ok := c.styleRole(e.RoleHint); ok {
			return role
		}
	}
	return Ignore
}

func (c Classifier) styleRole(hint string) (Role, bool) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return Ignore, false
	}
	styles := c.Styles
	if styles == nil {
		styles = DefaultStyles()
	}
	role, ok := styles[hint]
	if !ok {
		for k, r := range styles {
			if strings.EqualFold(k, hint) {
				role, ok = r, true
				break
			}
		}
	}
	if !ok || role == Ignore {
		return Ignore, false
	}
	return role, true
}
