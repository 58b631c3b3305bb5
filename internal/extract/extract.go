package extract

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/fleetcat/internal/doc"
	"github.com/hyperifyio/fleetcat/internal/textnorm"
)

// Document is the element stream read from one source document.
type Document struct {
	Title    string
	Elements []doc.Element
}

// FromHTML walks an HTML export in document order and emits styled spans,
// paragraphs, tables and images. headingStyles lists the class names (or tag
// names such as "h3") that carry catalog headings; a paragraph holding such a
// span is split so the heading is emitted on its own.
func FromHTML(input []byte, headingStyles []string) (Document, error) {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil {
		return Document{}, fmt.Errorf("parse html: %w", err)
	}
	w := &walker{headings: make(map[string]struct{}, len(headingStyles))}
	for _, s := range headingStyles {
		w.headings[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	title := ""
	if head := findFirst(node, "head"); head != nil {
		if t := findFirst(head, "title"); t != nil {
			title = textnorm.Clean(textOf(t))
		}
	}
	root := findFirst(node, "body")
	if root == nil {
		root = node
	}
	w.walk(root)
	return Document{Title: title, Elements: w.out}, nil
}

type walker struct {
	headings map[string]struct{}
	out      []doc.Element
}

func (w *walker) emit(e doc.Element) { w.out = append(w.out, e) }

func (w *walker) walk(n *html.Node) {
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}
	name := strings.ToLower(n.Data)
	switch name {
	case "script", "style", "noscript", "head", "iframe":
		return
	case "table":
		w.emit(doc.Element{Kind: doc.KindTable, Rows: tableRows(n)})
		return
	case "img":
		w.emit(doc.Element{Kind: doc.KindImage, ImageRef: strings.TrimSpace(attr(n, "src"))})
		return
	case "span":
		if w.headingClass(n) == "" && w.hasInline(n) {
			break
		}
		w.emit(doc.Element{Kind: doc.KindSpan, RoleHint: w.hint(n), Text: textnorm.Clean(textOf(n))})
		return
	case "p":
		w.paragraph(n)
		return
	}
	if _, ok := w.headings[name]; ok {
		w.emit(doc.Element{Kind: doc.KindSpan, RoleHint: name, Text: textnorm.Clean(textOf(n))})
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// paragraph emits p as one element unless it contains heading spans or
// images, in which case those are emitted in place and the surrounding text
// becomes separate paragraphs.
func (w *walker) paragraph(p *html.Node) {
	if hint := w.headingClass(p); hint != "" {
		w.emit(doc.Element{Kind: doc.KindParagraph, RoleHint: hint, Text: textnorm.Clean(textOf(p))})
		return
	}
	if !w.hasInline(p) {
		w.emitText(textOf(p))
		return
	}
	var pending strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			pending.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "br":
				pending.WriteByte(' ')
				return
			case "img":
				w.emitText(pending.String())
				pending.Reset()
				w.emit(doc.Element{Kind: doc.KindImage, ImageRef: strings.TrimSpace(attr(n, "src"))})
				return
			case "span":
				if hint := w.headingClass(n); hint != "" {
					w.emitText(pending.String())
					pending.Reset()
					w.emit(doc.Element{Kind: doc.KindSpan, RoleHint: hint, Text: textnorm.Clean(textOf(n))})
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}
	w.emitText(pending.String())
}

func (w *walker) emitText(s string) {
	if s = textnorm.Clean(s); s != "" {
		w.emit(doc.Element{Kind: doc.KindParagraph, Text: s})
	}
}

// hasInline reports whether p holds a heading span or an image below it.
func (w *walker) hasInline(p *html.Node) bool {
	found := false
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		for c := n.FirstChild; c != nil && !found; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch strings.ToLower(c.Data) {
				case "img":
					found = true
					return
				case "span":
					if w.headingClass(c) != "" {
						found = true
						return
					}
				}
			}
			dfs(c)
		}
	}
	dfs(p)
	return found
}

// hint returns the heading class of n, or its first class when none of its
// classes is a heading style.
func (w *walker) hint(n *html.Node) string {
	if h := w.headingClass(n); h != "" {
		return h
	}
	classes := strings.Fields(attr(n, "class"))
	if len(classes) == 0 {
		return ""
	}
	return classes[0]
}

func (w *walker) headingClass(n *html.Node) string {
	for _, c := range strings.Fields(attr(n, "class")) {
		if _, ok := w.headings[strings.ToLower(c)]; ok {
			return c
		}
	}
	return ""
}

func tableRows(t *html.Node) [][]string {
	var rows [][]string
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch strings.ToLower(c.Data) {
			case "tr":
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.Data == "td" || td.Data == "th") {
						cells = append(cells, textnorm.Clean(textOf(td)))
					}
				}
				if len(cells) > 0 {
					rows = append(rows, cells)
				}
			case "table":
				// nested tables belong to the enclosing cell's text
			default:
				dfs(c)
			}
		}
	}
	dfs(t)
	return rows
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		switch cur.Type {
		case html.TextNode:
			b.WriteString(cur.Data)
			return
		case html.ElementNode:
			switch strings.ToLower(cur.Data) {
			case "script", "style":
				return
			case "br", "td", "th", "p", "div", "li":
				b.WriteByte(' ')
			}
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}
