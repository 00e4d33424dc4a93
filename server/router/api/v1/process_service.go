package v1

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/uihint/ai/format"
	"github.com/hrygo/uihint/ai/metrics"
	"github.com/hrygo/uihint/plugin/ai/genui"
)

const (
	mimeApplicationYAML  = "application/yaml"
	mimeApplicationXYAML = "application/x-yaml"
	mimeTextYAML         = "text/yaml"
)

// ProcessService reshapes AI responses into UI hints.
type ProcessService struct {
	Formatter format.Formatter
	Metrics   *metrics.PrometheusExporter
}

// Process handles POST /process.
func (s *ProcessService) Process(c echo.Context) error {
	start := time.Now()
	if s.Metrics != nil {
		defer s.Metrics.TrackInFlight()()
	}

	env, err := decodeEnvelope(c.Request().Body)
	if err != nil {
		s.record(env, nil, start, err)
		return err
	}

	hint, err := s.Formatter.Format(c.Request().Context(), env)
	s.record(env, hint, start, err)
	if err != nil {
		return err
	}

	return writeHint(c, http.StatusOK, hint)
}

// decodeEnvelope reads exactly one JSON envelope from body.
func decodeEnvelope(body io.Reader) (*format.Envelope, error) {
	env := &format.Envelope{}
	dec := json.NewDecoder(body)
	if err := dec.Decode(env); err != nil {
		return env, asInvalidEnvelope(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return env, errors.Wrap(format.ErrInvalidEnvelope, "unexpected data after request body")
	}
	return env, nil
}

func asInvalidEnvelope(err error) error {
	var he *echo.HTTPError
	if errors.Is(err, format.ErrInvalidEnvelope) || errors.As(err, &he) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return errors.Wrap(format.ErrInvalidEnvelope, "request body is empty")
	}
	return errors.Wrap(format.ErrInvalidEnvelope, err.Error())
}

func (s *ProcessService) record(env *format.Envelope, hint *genui.UIHint, start time.Time, err error) {
	if s.Metrics == nil {
		return
	}
	formatLabel := "unknown"
	if env != nil && env.Format != "" {
		formatLabel = "unsupported"
		if _, parseErr := format.ParseFormat(string(env.Format)); parseErr == nil {
			formatLabel = env.Format.String()
		}
	}
	s.Metrics.RecordRequest(formatLabel, time.Since(start), err == nil)
	if err != nil {
		s.Metrics.RecordError(errorType(err))
		return
	}
	items := len(hint.Rows)
	if hint.IsCard() {
		items = len(hint.Lines)
	}
	s.Metrics.RecordHint(string(hint.Type), items)
}

func writeHint(c echo.Context, code int, hint *genui.UIHint) error {
	if !acceptsYAML(c.Request().Header.Get(echo.HeaderAccept)) {
		return c.JSON(code, hint)
	}
	data, err := yaml.Marshal(hint)
	if err != nil {
		return errors.Wrap(err, "failed to encode hint as yaml")
	}
	return c.Blob(code, mimeApplicationYAML, data)
}

// acceptsYAML reports whether the first recognized media type in an Accept
// header is a YAML type. JSON and wildcards select the default encoding.
func acceptsYAML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case mimeApplicationYAML, mimeApplicationXYAML, mimeTextYAML:
			return true
		case echo.MIMEApplicationJSON, "*/*", "application/*":
			return false
		}
	}
	return false
}
