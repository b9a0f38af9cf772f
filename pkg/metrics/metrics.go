// Package metrics holds the Prometheus collectors shared by the fetcher, the
// registration resolver, the graph builder and the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "phishgraph"

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// Outcome values used as label on latency histograms.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collectors groups every collector of the service. All methods accept a nil
// receiver and do nothing, so components can run without metrics in tests.
type Collectors struct {
	fetchDuration    *prometheus.HistogramVec
	lookupDuration   *prometheus.HistogramVec
	labels           *prometheus.CounterVec
	requestsDuration *prometheus.HistogramVec
	linksInFlight    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of page fetches.",
			Buckets:   DefaultBuckets,
		}, []string{"outcome"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "registration_lookup_duration_seconds",
			Help:      "Duration of registration data lookups.",
			Buckets:   DefaultBuckets,
		}, []string{"outcome"}),
		labels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "labels_total",
			Help:      "Number of URLs labeled, by label and by whether the URL was a graph root.",
		}, []string{"label", "root"}),
		requestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of API requests.",
			Buckets:   DefaultBuckets,
		}, []string{"method", "code"}),
		linksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links_in_flight",
			Help:      "Number of links currently being classified.",
		}),
	}

	for _, col := range []prometheus.Collector{
		c.fetchDuration, c.lookupDuration, c.labels, c.requestsDuration, c.linksInFlight,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err //nolint: wrapcheck
		}
	}

	return c, nil
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}

	return OutcomeOK
}

// ObserveFetch records one page fetch.
func (c *Collectors) ObserveFetch(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.fetchDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

// ObserveLookup records one registration lookup.
func (c *Collectors) ObserveLookup(d time.Duration, err error) {
	if c == nil {
		return
	}
	c.lookupDuration.WithLabelValues(outcome(err)).Observe(d.Seconds())
}

// CountLabel records one labeled URL.
func (c *Collectors) CountLabel(label string, root bool) {
	if c == nil {
		return
	}
	c.labels.WithLabelValues(label, strconv.FormatBool(root)).Inc()
}

// ObserveRequest records one API request.
func (c *Collectors) ObserveRequest(method string, code int, d time.Duration) {
	if c == nil {
		return
	}
	c.requestsDuration.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
}

// LinkStarted and LinkFinished track the links being classified.
func (c *Collectors) LinkStarted() {
	if c == nil {
		return
	}
	c.linksInFlight.Inc()
}

func (c *Collectors) LinkFinished() {
	if c == nil {
		return
	}
	c.linksInFlight.Dec()
}
