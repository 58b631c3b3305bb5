package doc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// tableJSON is the wire shape of a table block inside a raw dump.
type tableJSON struct {
	Table [][]string `json:"table"`
}

// MarshalJSON encodes text blocks as plain strings and tables as
// {"table": rows}, keeping raw dumps readable.
func (c Content) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ContentText:
		return json.Marshal(c.Text)
	case ContentTable:
		rows := c.Rows
		if rows == nil {
			rows = [][]string{}
		}
		return json.Marshal(tableJSON{Table: rows})
	default:
		return nil, fmt.Errorf("content: unknown kind %d", c.Kind)
	}
}

// UnmarshalJSON accepts either shape written by MarshalJSON.
func (c *Content) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = TextContent(s)
		return nil
	}
	var t tableJSON
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	*c = TableContent(t.Table)
	return nil
}
