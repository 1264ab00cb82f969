package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"library/internal/auth"
	"library/internal/domain"
	"library/internal/httputil"
	"library/internal/metrics"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRecovery(t *testing.T) {
	h := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRecoveryWith_Envelope(t *testing.T) {
	h := RecoveryWith(discardLogger(), httputil.RespondEnvelopeError)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, domain.ErrUnauthorized
	}
	c := &auth.Claims{Role: "authenticated"}
	c.Subject = "admin-1"
	return c, nil
}

func (stubVerifier) Close() error { return nil }

func TestRequireAuth(t *testing.T) {
	var seen string
	h := RequireAuth(stubVerifier{}, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httputil.GetUserID(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		method   string
		header   string
		want     int
		wantUser string
	}{
		{"no header", http.MethodPost, "", http.StatusUnauthorized, ""},
		{"not bearer", http.MethodPost, "Basic abc", http.StatusUnauthorized, ""},
		{"bad token", http.MethodPost, "Bearer bad", http.StatusUnauthorized, ""},
		{"good token", http.MethodPost, "Bearer good", http.StatusNoContent, "admin-1"},
		{"preflight", http.MethodOptions, "", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			r := httptest.NewRequest(tt.method, "/api/admin/folders", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestMetrics_LabelsByPattern(t *testing.T) {
	m := metrics.New("test")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/folders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := Metrics(m, mux)(mux)

	for _, path := range []string{"/api/folders/a", "/api/folders/b", "/nope"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "library_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "route" {
					counts[l.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, 2.0, counts["GET /api/folders/{id}"])
	assert.Equal(t, 1.0, counts[unmatchedRoute])
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	assert.Same(t, rec, sr.Unwrap())
}
