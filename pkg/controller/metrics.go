package controller

import (
	"net/http"
	"time"

	"phishgraph/pkg/metrics"
)

// WithMetrics records the latency and status of every request.
func WithMetrics(m *metrics.Collectors) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			m.ObserveRequest(r.Method, rec.status, time.Since(start))
		})
	}
}
