package format

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// Entry is a single member of a structured AI response.
type Entry struct {
	Key   string
	Value any
}

// Input is the data carried by an Envelope.
// It is either TableInput or CardInput.
type Input interface {
	inputFormat() Format
}

// TableInput is the data of a "json" envelope, in object member order.
type TableInput []Entry

// CardInput is the data of a "markdown" envelope.
type CardInput string

func (TableInput) inputFormat() Format { return JSON }
func (CardInput) inputFormat() Format { return Markdown }

// Envelope is an AI response tagged with its declared format.
//
// Decoding selects the Data variant from the format tag, so a "json"
// envelope always carries TableInput and a "markdown" envelope always
// carries CardInput. Envelopes with an unknown tag decode with nil Data and
// are rejected by Dispatch.
type Envelope struct {
	Format Format
	Data   Input
}

// NewTableEnvelope creates a "json" envelope.
func NewTableEnvelope(entries ...Entry) *Envelope {
	if entries == nil {
		entries = []Entry{}
	}
	return &Envelope{Format: JSON, Data: TableInput(entries)}
}

// NewCardEnvelope creates a "markdown" envelope.
func NewCardEnvelope(text string) *Envelope {
	return &Envelope{Format: Markdown, Data: CardInput(text)}
}

type envelopeWire struct {
	Format *string         `json:"format"`
	Data   json.RawMessage `json:"data"`
}

// UnmarshalJSON decodes {"format": ..., "data": ...}.
// Shape errors are reported as ErrInvalidEnvelope.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var wire envelopeWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return errors.Wrap(ErrInvalidEnvelope, err.Error())
	}
	if wire.Format == nil {
		return errors.Wrap(ErrInvalidEnvelope, "field \"format\" is required")
	}
	raw := bytes.TrimSpace(wire.Data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return errors.Wrap(ErrInvalidEnvelope, "field \"data\" is required")
	}

	f := Format(*wire.Format)
	switch f {
	case JSON:
		entries, err := decodeEntries(raw)
		if err != nil {
			return err
		}
		*e = Envelope{Format: f, Data: entries}
	case Markdown:
		if raw[0] != '"' {
			return errors.Wrapf(ErrInvalidEnvelope, "field \"data\" must be a string when format is %q", f)
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return errors.Wrap(ErrInvalidEnvelope, err.Error())
		}
		*e = Envelope{Format: f, Data: CardInput(text)}
	default:
		if raw[0] != '{' && raw[0] != '"' {
			return errors.Wrap(ErrInvalidEnvelope, "field \"data\" must be an object or a string")
		}
		*e = Envelope{Format: f}
	}
	return nil
}

// decodeEntries reads a JSON object keeping member order. Values stay raw so
// they are written back exactly as received. A repeated key keeps its first
// position and takes the last value.
func decodeEntries(raw []byte) (TableInput, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidEnvelope, err.Error())
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.Wrapf(ErrInvalidEnvelope, "field \"data\" must be an object when format is %q", JSON)
	}

	entries := TableInput{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(ErrInvalidEnvelope, err.Error())
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidEnvelope, "unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrapf(ErrInvalidEnvelope, "failed to decode value of %q: %v", key, err)
		}
		if i, seen := index[key]; seen {
			entries[i].Value = value
			continue
		}
		index[key] = len(entries)
		entries = append(entries, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(ErrInvalidEnvelope, err.Error())
	}
	return entries, nil
}
