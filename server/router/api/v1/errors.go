package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/uihint/ai/format"
	"github.com/hrygo/uihint/internal/logging"
)

// Detail texts returned to clients.
const (
	detailUnsupportedFormat = "Unsupported format"
	detailInternal          = "Internal Server Error"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// HTTPErrorHandler renders every error as {"detail": ...}.
//
// Unknown format tags map to 400, envelopes that do not match their tag map
// to 422, and everything else, including card input without content, maps
// to 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	logger := logging.FromContext(c.Request().Context())
	code, detail := classifyError(err)
	if code >= http.StatusInternalServerError {
		logger.Error("Request failed",
			"method", c.Request().Method,
			"uri", c.Request().RequestURI,
			"error", err,
		)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, errorResponse{Detail: detail})
	}
	if writeErr != nil {
		logger.Warn("Failed to write error response", "error", writeErr)
	}
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, format.ErrUnsupportedFormat):
		return http.StatusBadRequest, detailUnsupportedFormat
	case errors.Is(err, format.ErrInvalidEnvelope):
		return http.StatusUnprocessableEntity, err.Error()
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			if inner, ok := he.Internal.(*echo.HTTPError); ok {
				he = inner
			}
		}
		detail := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok && msg != "" {
			detail = msg
		} else if he.Message != nil {
			detail = fmt.Sprint(he.Message)
		}
		return he.Code, detail
	}

	return http.StatusInternalServerError, detailInternal
}

// errorType returns the metrics label for a failed request.
func errorType(err error) string {
	switch {
	case errors.Is(err, format.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, format.ErrInvalidEnvelope):
		return "invalid_envelope"
	case errors.Is(err, format.ErrEmptyCard):
		return "empty_card"
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Sprintf("http_%d", he.Code)
	}
	return "internal"
}
