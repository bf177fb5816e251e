// Package metrics exposes Prometheus collectors for checkouts and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	checkouts       *prometheus.CounterVec
	checkoutAmount  prometheus.Counter
	storeFailures   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sales",
			Name:      "checkouts_total",
			Help:      "Live entries checked out, by seller.",
		}, []string{"seller"}),
		checkoutAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sales",
			Name:      "checkout_amount_total",
			Help:      "Sum of checked out prices.",
		}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sales",
			Name:      "store_failures_total",
			Help:      "Document store calls that failed, by operation.",
		}, []string{"op"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sales",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.checkouts,
		m.checkoutAmount,
		m.storeFailures,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCheckout records one completed checkout.
func (m *Metrics) ObserveCheckout(seller string, price float64) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(seller).Inc()
	if price > 0 {
		m.checkoutAmount.Add(price)
	}
}

// ObserveStoreFailure records a failed store call.
func (m *Metrics) ObserveStoreFailure(op string) {
	if m == nil {
		return
	}
	m.storeFailures.WithLabelValues(op).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
