package metrics_test

import (
	"errors"
	"testing"
	"time"

	"phishgraph/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	c.CountLabel("Phishing", true)
	c.CountLabel("Error", false)
	c.CountLabel("Error", false)
	c.ObserveFetch(120*time.Millisecond, nil)
	c.ObserveLookup(time.Second, errors.New("whois down"))
	c.ObserveRequest("POST", 200, 50*time.Millisecond)
	c.LinkStarted()

	count, err := testutil.GatherAndCount(reg, "phishgraph_labels_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	var sawGauge bool
	for _, f := range families {
		if f.GetName() == "phishgraph_links_in_flight" {
			sawGauge = true
			require.InDelta(t, 1.0, f.GetMetric()[0].GetGauge().GetValue(), 0)
		}
	}
	require.True(t, sawGauge)

	_, err = metrics.New(reg)
	require.Error(t, err, "registering twice must fail")
}

func TestNilCollectors(t *testing.T) {
	var c *metrics.Collectors
	require.NotPanics(t, func() {
		c.CountLabel("Legitimate", true)
		c.ObserveFetch(time.Second, nil)
		c.ObserveLookup(time.Second, nil)
		c.ObserveRequest("GET", 404, time.Second)
		c.LinkStarted()
		c.LinkFinished()
	})
}
