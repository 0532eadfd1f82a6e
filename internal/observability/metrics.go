package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	viewRenders    *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	exports        *prometheus.CounterVec
	datasetRows    prometheus.Gauge
	datasetLoad    prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_http_requests_total",
				Help: "HTTP requests by route pattern and status code",
			},
			[]string{"route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		viewRenders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_view_renders_total",
				Help: "View renders by view and outcome",
			},
			[]string{"view", "status"},
		),
		renderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_view_render_duration_milliseconds",
				Help:    "Time spent computing a view",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"view"},
		),
		exports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_exports_total",
				Help: "Downloads served by format",
			},
			[]string{"format"},
		),
		datasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_rows",
			Help: "Records in the loaded dataset",
		}),
		datasetLoad: factory.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_dataset_load_seconds",
			Help: "Duration of the last dataset load",
		}),
	}
}

func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) ObserveRender(view string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.viewRenders.WithLabelValues(view, status).Inc()
	m.renderDuration.WithLabelValues(view).Observe(float64(d.Milliseconds()))
}

func (m *Metrics) IncExport(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

func (m *Metrics) SetDataset(rows int, load time.Duration) {
	if m == nil {
		return
	}
	m.datasetRows.Set(float64(rows))
	m.datasetLoad.Set(load.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
