package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry so
// repeated construction (tests, embedded use) never double-registers.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	datasetRecords  prometheus.Gauge
	datasetExcluded prometheus.Gauge
	reloadsTotal    prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecom_insights_http_requests_total",
				Help: "HTTP requests by method, route pattern and status code",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecom_insights_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route pattern",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		datasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ecom_insights_dataset_records",
			Help: "Transaction records in the current snapshot",
		}),
		datasetExcluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ecom_insights_dataset_excluded_records",
			Help: "Malformed rows excluded while parsing the current snapshot",
		}),
		reloadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ecom_insights_dataset_reloads_total",
			Help: "Snapshot reloads since process start",
		}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.datasetRecords,
		m.datasetExcluded,
		m.reloadsTotal,
	)

	return m
}

// Handler serves the exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) SetDatasetStats(records, excluded int) {
	m.datasetRecords.Set(float64(records))
	m.datasetExcluded.Set(float64(excluded))
}

func (m *Metrics) IncReload() {
	m.reloadsTotal.Inc()
}
