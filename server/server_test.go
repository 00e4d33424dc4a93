package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/uihint/internal/logging"
	"github.com/hrygo/uihint/internal/profile"
)

func newTestProfile(t *testing.T) *profile.Profile {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Port: 0, Version: "test", MetricsEnabled: true}
	require.NoError(t, p.Validate())
	return p
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresProfile(t *testing.T) {
	_, err := NewServer(context.Background(), nil)
	assert.Error(t, err)
}

func TestServer_Process(t *testing.T) {
	s, err := NewServer(context.Background(), newTestProfile(t))
	require.NoError(t, err)

	rec := post(s.Handler(), "/process", `{"format": "markdown", "data": "# Title\n- Point 1\n- Point 2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ui_type": "card", "title": "Title", "content": ["- Point 1", "- Point 2"]}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestServer_UnsupportedFormat(t *testing.T) {
	s, err := NewServer(context.Background(), newTestProfile(t))
	require.NoError(t, err)

	rec := post(s.Handler(), "/process", `{"format": "xml", "data": "<a/>"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"detail": "Unsupported format"}`, rec.Body.String())
}

func TestServer_BodyLimit(t *testing.T) {
	p := newTestProfile(t)
	p.BodyLimit = "1K"
	s, err := NewServer(context.Background(), p)
	require.NoError(t, err)

	body := `{"format": "markdown", "data": "` + strings.Repeat("a", 2048) + `"}`
	rec := post(s.Handler(), "/process", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"detail"`)
}

func TestServer_RateLimit(t *testing.T) {
	p := newTestProfile(t)
	p.RateLimit = 1
	s, err := NewServer(context.Background(), p)
	require.NoError(t, err)

	body := `{"format": "json", "data": {}}`
	assert.Equal(t, http.StatusOK, post(s.Handler(), "/process", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, post(s.Handler(), "/process", body).Code)
}

func TestServer_CORS(t *testing.T) {
	p := newTestProfile(t)
	p.CORSOrigins = []string{"http://localhost:3000"}
	s, err := NewServer(context.Background(), p)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/process", http.NoBody)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServer_RunAndShutdown(t *testing.T) {
	p := newTestProfile(t)
	p.UNIXSock = filepath.Join(t.TempDir(), "uihint.sock")
	p.ShutdownTimeout = time.Second
	s, err := NewServer(context.Background(), p)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	client := &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", p.UNIXSock)
			},
		},
	}

	require.Eventually(t, func() bool {
		resp, err := client.Get("http://uihint/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunListenError(t *testing.T) {
	p := newTestProfile(t)
	p.UNIXSock = filepath.Join(t.TempDir(), "missing", "uihint.sock")
	s, err := NewServer(context.Background(), p)
	require.NoError(t, err)

	assert.Error(t, s.Run(context.Background()))
}

func TestWithRequestLogger(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	var got *slog.Logger
	err := withRequestLogger(func(c echo.Context) error {
		got = logging.FromContext(c.Request().Context())
		return nil
	})(c)
	require.NoError(t, err)
	assert.NotSame(t, slog.Default(), got)
}
