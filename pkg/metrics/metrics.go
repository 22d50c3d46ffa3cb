// Package metrics exposes Prometheus instrumentation for the API server:
// per-route HTTP latency plus a handful of domain counters.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	OrdersCreated  prometheus.Counter
	EmailsSent     *prometheus.CounterVec
	QueryRequests  *prometheus.CounterVec
	InvoicesRaised prometheus.Counter
}

// New creates the collectors under the given namespace
func New(namespace string, buckets []float64) *Metrics {
	if namespace == "" {
		namespace = "storefront"
	}
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()
	factory := promauto(registry)

	m := &Metrics{
		registry: registry,
		httpRequests: factory.counterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.histogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   buckets,
		}, []string{"route", "method"}),
		OrdersCreated: factory.counter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders created by any path.",
		}),
		EmailsSent: factory.counterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_total",
			Help:      "Notification attempts by outcome.",
		}, []string{"outcome"}),
		QueryRequests: factory.counterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_requests_total",
			Help:      "Generic query endpoint requests by table and action.",
		}, []string{"table", "action"}),
		InvoicesRaised: factory.counter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xero_invoices_total",
			Help:      "Invoices created in Xero.",
		}),
	}
	return m
}

// Handler returns the /metrics scrape handler
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// promauto-like helpers bound to the private registry

type registryFactory struct {
	registry *prometheus.Registry
}

func promauto(r *prometheus.Registry) registryFactory {
	return registryFactory{registry: r}
}

func (f registryFactory) counter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	f.registry.MustRegister(c)
	return c
}

func (f registryFactory) counterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	f.registry.MustRegister(c)
	return c
}

func (f registryFactory) histogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	f.registry.MustRegister(h)
	return h
}
