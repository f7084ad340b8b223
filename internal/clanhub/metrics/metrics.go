// Package metrics collects and exposes Prometheus metrics for the hub.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request and auth flow metrics.
type Collector struct {
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
	logins        prometheus.Counter
	refreshes     prometheus.Counter
	refreshDenied prometheus.Counter
	upstreamFail  *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clanhub_http_requests_total",
			Help: "HTTP responses by route pattern and status code.",
		}, []string{"pattern", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clanhub_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"pattern"}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clanhub_logins_total",
			Help: "Successful Steam logins.",
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clanhub_token_refreshes_total",
			Help: "Successful refresh token rotations.",
		}),
		refreshDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clanhub_token_refresh_denied_total",
			Help: "Refresh attempts rejected as invalid or expired.",
		}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clanhub_upstream_failures_total",
			Help: "Failures talking to upstream identity providers.",
		}, []string{"provider"}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.logins,
		c.refreshes,
		c.refreshDenied,
		c.upstreamFail,
	)

	return c
}

func (c *Collector) RecordRequest(pattern string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(pattern, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.WithLabelValues(pattern).Observe(duration.Seconds())
}

func (c *Collector) RecordLogin()         { c.logins.Inc() }
func (c *Collector) RecordRefresh()       { c.refreshes.Inc() }
func (c *Collector) RecordRefreshDenied() { c.refreshDenied.Inc() }

func (c *Collector) RecordUpstreamFailure(provider string) {
	c.upstreamFail.WithLabelValues(provider).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
