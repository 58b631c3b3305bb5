// Package extract reads source documents into the ordered element stream the
// pipeline consumes. It knows about file formats; it knows nothing about
// countries, classes or ships.
package extract

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/fleetcat/internal/doc"
)

// Extractor converts raw document bytes into a Document.
// Implementations must preserve document order.
type Extractor interface {
	Extract(input []byte) (Document, error)
}

// HTMLExtractor reads HTML exports of the catalog.
type HTMLExtractor struct {
	HeadingStyles []string
}

func (x HTMLExtractor) Extract(input []byte) (Document, error) {
	return FromHTML(input, x.HeadingStyles)
}

// JSONExtractor reads element streams produced by an external
// structure-recognition engine, either as one JSON array or as JSON lines.
type JSONExtractor struct{}

func (JSONExtractor) Extract(input []byte) (Document, error) {
	els, err := FromJSON(input)
	if err != nil {
		return Document{}, err
	}
	return Document{Elements: els}, nil
}

// FromJSON decodes elements from a JSON array or a JSON-lines stream.
func FromJSON(input []byte) ([]doc.Element, error) {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var els []doc.Element
		if err := json.Unmarshal(trimmed, &els); err != nil {
			return nil, fmt.Errorf("decode elements: %w", err)
		}
		return els, nil
	}
	var els []doc.Element
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		s := bytes.TrimSpace(sc.Bytes())
		if len(s) == 0 {
			continue
		}
		var e doc.Element
		if err := json.Unmarshal(s, &e); err != nil {
			return nil, fmt.Errorf("decode element on line %d: %w", line, err)
		}
		els = append(els, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan elements: %w", err)
	}
	return els, nil
}

// ForPath picks an extractor from the file extension.
func ForPath(path string, headingStyles []string) (Extractor, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".htm", ".html", ".xhtml":
		return HTMLExtractor{HeadingStyles: headingStyles}, nil
	case ".json", ".jsonl", ".ndjson":
		return JSONExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q", ext)
	}
}
