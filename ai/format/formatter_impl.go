package format

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/hrygo/uihint/plugin/ai/genui"
)

const headingMarker = "# "

// FormatAsTable converts ordered key/value entries into a table hint.
// Keys and values are passed through unchanged.
func FormatAsTable(entries TableInput) *genui.UIHint {
	rows := make([]genui.TableRow, len(entries))
	for i, entry := range entries {
		rows[i] = genui.TableRow{Key: entry.Key, Value: entry.Value}
	}
	return genui.NewTable(rows)
}

// FormatAsCard converts lightweight markup into a card hint.
//
// The first non-blank line becomes the title when it starts with "# ",
// otherwise the title is genui.DefaultCardTitle. Every following non-blank
// line is kept, trimmed, as card content. Input without any non-blank line
// fails with ErrEmptyCard.
func FormatAsCard(text string) (*genui.UIHint, error) {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return nil, errors.WithStack(ErrEmptyCard)
	}
	return genui.NewCard(cardTitle(lines[0]), lines[1:]), nil
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimFunc(line, isSpace); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// isSpace also treats the ASCII file, group, record and unit separators
// (U+001C to U+001F) as whitespace.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// cardTitle removes the first "# " from a heading line. "## Title" and
// "#Title" are not headings here and fall back to the default title.
func cardTitle(line string) string {
	if !strings.HasPrefix(line, headingMarker) {
		return genui.DefaultCardTitle
	}
	return strings.Replace(line, headingMarker, "", 1)
}
