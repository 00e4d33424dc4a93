package genui

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type tableWire struct {
	UIType  UIType     `json:"ui_type" yaml:"ui_type"`
	Content []TableRow `json:"content" yaml:"content"`
}

type cardWire struct {
	UIType  UIType   `json:"ui_type" yaml:"ui_type"`
	Title   string   `json:"title" yaml:"title"`
	Content []string `json:"content" yaml:"content"`
}

// MarshalJSON encodes the hint in its wire shape:
//
//	{"ui_type": "table", "content": [{"key": ..., "value": ...}]}
//	{"ui_type": "card", "title": ..., "content": [...]}
func (h *UIHint) MarshalJSON() ([]byte, error) {
	wire, err := h.wire(false)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire)
}

// MarshalYAML encodes the hint in the same shape as MarshalJSON.
// Raw JSON values are parsed as YAML nodes, keeping member order and the
// exact number text.
func (h *UIHint) MarshalYAML() (any, error) {
	return h.wire(true)
}

func (h *UIHint) wire(decodeRaw bool) (any, error) {
	switch h.Type {
	case UITypeTable:
		rows := h.Rows
		if rows == nil {
			rows = []TableRow{}
		}
		if decodeRaw {
			decoded := make([]TableRow, len(rows))
			for i, row := range rows {
				value, err := decodeRawValue(row.Value)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to decode value of %q", row.Key)
				}
				decoded[i] = TableRow{Key: row.Key, Value: value}
			}
			rows = decoded
		}
		return tableWire{UIType: h.Type, Content: rows}, nil
	case UITypeCard:
		lines := h.Lines
		if lines == nil {
			lines = []string{}
		}
		return cardWire{UIType: h.Type, Title: h.Title, Content: lines}, nil
	default:
		return nil, errors.Errorf("unknown ui type %q", h.Type)
	}
}

func decodeRawValue(v any) (any, error) {
	raw, ok := v.(json.RawMessage)
	if !ok {
		return v, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err == nil && len(doc.Content) == 1 {
		node := doc.Content[0]
		blockStyle(node)
		return node, nil
	}
	// JSON the YAML parser rejects, such as tab indentation, falls back to plain values.
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// blockStyle renders JSON objects and arrays as YAML blocks.
func blockStyle(node *yaml.Node) {
	node.Style &^= yaml.FlowStyle
	for _, child := range node.Content {
		blockStyle(child)
	}
}
