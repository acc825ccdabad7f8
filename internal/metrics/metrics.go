// Package metrics exposes Prometheus instrumentation for the store and the
// HTTP layer on a dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/diewo77/cashpro/internal/services"
)

const namespace = "cashpro"

type Metrics struct {
	registry       *prometheus.Registry
	mutations      *prometheus.CounterVec
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_mutations_total",
				Help:      "Store mutations by entity, operation and result",
			},
			[]string{"entity", "op", "result"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
	m.registry.MustRegister(
		m.mutations,
		m.requestCounter,
		m.requestLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveMutation counts a store mutation attempt.
func (m *Metrics) ObserveMutation(entity, op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.mutations.WithLabelValues(entity, op, result).Inc()
}

// RegisterLedger exports receivables, open invoices and low-stock products,
// computed from src at scrape time.
func (m *Metrics) RegisterLedger(src services.SnapshotSource) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "receivables",
			Help:      "Outstanding balance of unpaid invoices",
		}, func() float64 {
			f, _ := services.NewLedger(src.Snapshot()).TotalReceivables().Float64()
			return f
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_invoices",
			Help:      "Invoices not yet paid",
		}, func() float64 {
			return float64(services.NewLedger(src.Snapshot()).OpenInvoiceCount())
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "low_stock_products",
			Help:      "Products under their minimum stock",
		}, func() float64 {
			return float64(services.LowStockCount(src.Snapshot().Products))
		}),
	)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Instrument records count and latency of requests served by next under the
// route pattern endpoint.
func (m *Metrics) Instrument(endpoint string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		m.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		m.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
