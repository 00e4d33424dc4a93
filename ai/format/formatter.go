// Package format turns AI responses into UI hints for presentation layers.
//
// Structured output (format "json") becomes a table hint with one key/value
// record per object member. Lightweight markup (format "markdown") becomes a
// card hint whose title is taken from the first non-blank line.
package format

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/hrygo/uihint/plugin/ai/genui"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidEnvelope   = errors.New("invalid envelope")
	ErrEmptyCard         = errors.New("card input has no non-blank lines")
)

// Format is the declared shape of an AI response.
type Format string

const (
	JSON     Format = "json"
	Markdown Format = "markdown"
)

var formats = []Format{JSON, Markdown}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formats returns all supported format names.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat parses a format string.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Formatter converts an AI response envelope into a UI hint.
type Formatter interface {
	Format(ctx context.Context, env *Envelope) (*genui.UIHint, error)
}

type dispatchFormatter struct{}

// NewFormatter returns the Formatter backed by Dispatch.
func NewFormatter() Formatter {
	return dispatchFormatter{}
}

func (dispatchFormatter) Format(ctx context.Context, env *Envelope) (*genui.UIHint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Dispatch(env)
}

// Dispatch routes the envelope to the formatter named by its format tag.
// Formatter errors are returned unchanged.
func Dispatch(env *Envelope) (*genui.UIHint, error) {
	if env == nil {
		return nil, errors.Wrap(ErrInvalidEnvelope, "envelope is nil")
	}
	switch env.Format {
	case JSON:
		input, ok := env.Data.(TableInput)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEnvelope, "format %q requires table input, got %T", env.Format, env.Data)
		}
		return FormatAsTable(input), nil
	case Markdown:
		input, ok := env.Data.(CardInput)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEnvelope, "format %q requires card input, got %T", env.Format, env.Data)
		}
		return FormatAsCard(string(input))
	default:
		return nil, errors.WithStack(ErrUnsupportedFormat)
	}
}
