package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET /api/folders", http.MethodGet, 200, time.Millisecond)
		m.ObserveUpload("content", 10)
		m.TelemetryFailed("view_count")
		m.TelemetryDropped()
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := New("test")

	m.ObserveRequest("GET /api/folders", http.MethodGet, 200, 5*time.Millisecond)
	m.ObserveRequest("GET /api/folders", http.MethodGet, 200, 5*time.Millisecond)
	m.ObserveUpload("content", 1024)
	m.ObserveUpload("thumbnail", 512)
	m.TelemetryFailed("view_count")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET /api/folders", http.MethodGet, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("content")))
	assert.Equal(t, 1536.0, testutil.ToFloat64(m.uploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.telemetryFailure.WithLabelValues("view_count")))
}

func TestMetrics_Handler(t *testing.T) {
	m := New("test")
	m.ObserveUpload("content", 1)

	rec := httptest.NewRecorder()
	m.Handler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "library_storage_uploads_total")
	assert.Contains(t, rec.Body.String(), `service="test"`)
}
