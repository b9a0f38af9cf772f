package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"phishgraph/pkg/controller"
	"phishgraph/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	h := controller.WithMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusBadRequest)
		}
	}))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPost} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(method, "/v1/graph", nil))
	}

	// one series per method and status pair
	count, err := testutil.GatherAndCount(reg, "phishgraph_http_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestWithMetrics_NilCollectors(t *testing.T) {
	h := controller.WithMetrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/classify", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
}
