package genui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestUIHint_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		hint     *UIHint
		expected string
	}{
		{
			name: "table keeps row order",
			hint: NewTable([]TableRow{
				{Key: "time_seconds", Value: 9.62},
				{Key: "explanation", Value: "Leopard runs fast!"},
			}),
			expected: `{"ui_type":"table","content":[{"key":"time_seconds","value":9.62},{"key":"explanation","value":"Leopard runs fast!"}]}`,
		},
		{
			name:     "empty table",
			hint:     NewTable(nil),
			expected: `{"ui_type":"table","content":[]}`,
		},
		{
			name:     "raw values pass through",
			hint:     NewTable([]TableRow{{Key: "nested", Value: json.RawMessage(`{"b": 1, "a": [true, null]}`)}}),
			expected: `{"ui_type":"table","content":[{"key":"nested","value":{"b":1,"a":[true,null]}}]}`,
		},
		{
			name:     "card",
			hint:     NewCard("Title", []string{"- Point 1", "- Point 2"}),
			expected: `{"ui_type":"card","title":"Title","content":["- Point 1","- Point 2"]}`,
		},
		{
			name:     "card without body",
			hint:     NewCard(DefaultCardTitle, nil),
			expected: `{"ui_type":"card","title":"Information","content":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.hint)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
			assert.Equal(t, tt.expected, string(data), "field order must match the wire shape")
		})
	}
}

func TestUIHint_MarshalJSON_UnknownType(t *testing.T) {
	_, err := json.Marshal(&UIHint{Type: "chart"})
	assert.Error(t, err)
}

func TestUIHint_MarshalYAML(t *testing.T) {
	hint := NewTable([]TableRow{
		{Key: "time_seconds", Value: json.RawMessage(`9.62`)},
		{Key: "tags", Value: json.RawMessage(`["fast","cat"]`)},
	})

	data, err := yaml.Marshal(hint)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "table", decoded["ui_type"])

	content, ok := decoded["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 2)
	first := content[0].(map[string]any)
	assert.Equal(t, "time_seconds", first["key"])
	assert.Equal(t, 9.62, first["value"])
	second := content[1].(map[string]any)
	assert.Equal(t, []any{"fast", "cat"}, second["value"])
}

func TestUIHint_MarshalYAML_KeepsRawValues(t *testing.T) {
	hint := NewTable([]TableRow{
		{Key: "id", Value: json.RawMessage(`12345678901234567890`)},
		{Key: "nested", Value: json.RawMessage(`{"zeta": 1, "alpha": {"y": 2, "b": [3, 4]}}`)},
		{Key: "plain", Value: "text"},
	})

	data, err := yaml.Marshal(hint)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "value: 12345678901234567890")
	assert.NotContains(t, out, "e+19")
	zeta := strings.Index(out, "zeta: 1")
	alpha := strings.Index(out, "alpha:")
	y := strings.Index(out, "y: 2")
	b := strings.Index(out, "b:")
	require.True(t, zeta >= 0 && alpha >= 0 && y >= 0 && b >= 0, out)
	assert.True(t, zeta < alpha && alpha < y && y < b, out)

	var decoded struct {
		Content []struct {
			Key   string `yaml:"key"`
			Value any    `yaml:"value"`
		} `yaml:"content"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Content, 3)
	assert.Equal(t, uint64(12345678901234567890), decoded.Content[0].Value)
	assert.Equal(t, "text", decoded.Content[2].Value)
}

func TestUIHint_MarshalYAML_JSONOnlySyntax(t *testing.T) {
	hint := NewTable([]TableRow{
		{Key: "bell", Value: json.RawMessage(`"a\u0007b"`)},
		{Key: "tabbed", Value: json.RawMessage("{\n\t\"a\": \"x\"\n}")},
	})

	data, err := yaml.Marshal(hint)
	require.NoError(t, err)

	var decoded struct {
		Content []TableRow `yaml:"content"`
	}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	require.Len(t, decoded.Content, 2)
	assert.Equal(t, "a\x07b", decoded.Content[0].Value)
	assert.Equal(t, map[string]any{"a": "x"}, decoded.Content[1].Value)
}

func TestUIHint_Kind(t *testing.T) {
	assert.True(t, NewTable(nil).IsTable())
	assert.False(t, NewTable(nil).IsCard())
	assert.True(t, NewCard("x", nil).IsCard())
	assert.False(t, NewCard("x", nil).IsTable())
}
