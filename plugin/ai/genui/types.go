// Package genui provides the UI hint structures returned to presentation layers.
package genui

// UIType defines how a presentation layer should render a hint.
type UIType string

const (
	UITypeTable UIType = "table"
	UITypeCard  UIType = "card"
)

// DefaultCardTitle is used when the first card line is not a heading.
const DefaultCardTitle = "Information"

// TableRow is a single key/value record of a table hint.
type TableRow struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// UIHint instructs a presentation layer how to render processed AI output.
//
// Exactly one of Rows or Lines is meaningful, selected by Type.
type UIHint struct {
	Type  UIType
	Title string
	Rows  []TableRow
	Lines []string
}

// NewTable creates a table hint. A nil rows slice renders as an empty table.
func NewTable(rows []TableRow) *UIHint {
	if rows == nil {
		rows = []TableRow{}
	}
	return &UIHint{Type: UITypeTable, Rows: rows}
}

// NewCard creates a card hint.
func NewCard(title string, lines []string) *UIHint {
	if lines == nil {
		lines = []string{}
	}
	return &UIHint{Type: UITypeCard, Title: title, Lines: lines}
}

// IsTable reports whether the hint renders as a table.
func (h *UIHint) IsTable() bool {
	return h.Type == UITypeTable
}

// IsCard reports whether the hint renders as a card.
func (h *UIHint) IsCard() bool {
	return h.Type == UITypeCard
}
