package middleware

import (
	"net/http"
	"time"

	"library/internal/metrics"
)

// unmatchedRoute labels requests no pattern matched, so unknown paths cannot grow
// the label set
const unmatchedRoute = "unmatched"

// statusRecorder captures the status code written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Metrics records request count and latency labelled by the mux pattern that serves
// the request
func Metrics(m *metrics.Metrics, mux *http.ServeMux) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := unmatchedRoute
			if _, pattern := mux.Handler(r); pattern != "" {
				route = pattern
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			m.ObserveRequest(route, r.Method, rec.status, time.Since(start))
		})
	}
}
