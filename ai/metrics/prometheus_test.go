package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusExporter(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	t.Run("RecordRequest", func(t *testing.T) {
		exporter.RecordRequest("json", 100*time.Microsecond, true)
		exporter.RecordRequest("json", 200*time.Microsecond, true)
		exporter.RecordRequest("markdown", 150*time.Microsecond, false)
		exporter.RecordRequest("", 10*time.Microsecond, false)

		assert.Equal(t, 2.0, testutil.ToFloat64(exporter.requests.WithLabelValues("json", "success")))
		assert.Equal(t, 1.0, testutil.ToFloat64(exporter.requests.WithLabelValues("markdown", "error")))
		assert.Equal(t, 1.0, testutil.ToFloat64(exporter.requests.WithLabelValues("unknown", "error")))
	})

	t.Run("RecordError", func(t *testing.T) {
		exporter.RecordError("unsupported_format")
		exporter.RecordError("unsupported_format")
		exporter.RecordError("empty_card")

		assert.Equal(t, 2.0, testutil.ToFloat64(exporter.errors.WithLabelValues("unsupported_format")))
		assert.Equal(t, 1.0, testutil.ToFloat64(exporter.errors.WithLabelValues("empty_card")))
	})

	t.Run("TrackInFlight", func(t *testing.T) {
		done := exporter.TrackInFlight()
		assert.Equal(t, 1.0, testutil.ToFloat64(exporter.inFlight))
		done()
		assert.Equal(t, 0.0, testutil.ToFloat64(exporter.inFlight))
	})

	t.Run("RecordHint", func(t *testing.T) {
		exporter.RecordHint("table", 2)
		exporter.RecordHint("card", 0)
		assert.Equal(t, 2, testutil.CollectAndCount(exporter.hintItems))
	})
}

func TestPrometheusExporterHandler(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	exporter.RecordRequest("json", 100*time.Microsecond, true)
	exporter.RecordHint("table", 3)
	exporter.RecordError("invalid_envelope")

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()

	exporter.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, name := range []string{
		"uihint_api_process_requests_total",
		"uihint_api_process_latency_seconds",
		"uihint_api_hint_items",
		"uihint_api_process_errors_total",
	} {
		assert.True(t, strings.Contains(body, name), "expected %s in output", name)
	}
}

func TestPrometheusExporterRuntimeCollectors(t *testing.T) {
	exporter := NewPrometheusExporter(Config{RuntimeCollectors: true})

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	exporter.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func BenchmarkPrometheusExporter(b *testing.B) {
	exporter := NewPrometheusExporter(DefaultConfig())

	b.Run("RecordRequest", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			exporter.RecordRequest("json", 100*time.Microsecond, true)
		}
	})

	b.Run("RecordHint", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			exporter.RecordHint("card", 4)
		}
	})
}
