package pubsite

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "pubsite"

// Metrics holds the collectors an App reports to its own registry.
type Metrics struct {
	Registry *prometheus.Registry

	CounterReloads           *prometheus.CounterVec
	CounterLoginFailures     prometheus.Counter
	GaugeDocuments           *prometheus.GaugeVec
	HistReloadDuration       prometheus.Histogram
	HistogramRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the site collectors plus Go runtime and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		CounterReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "content_reloads_total",
			Help:      "Content reloads by result",
		}, []string{"result"}),
		CounterLoginFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "admin_login_failures_total",
			Help:      "Rejected admin login attempts",
		}),
		GaugeDocuments: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "content_documents",
			Help:      "Documents of the last load per collection and status",
		}, []string{"collection", "status"}),
		HistReloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "content_reload_duration_seconds",
			Help:      "Duration of a full content reload in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		HistogramRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method", "status_code"}),
	}
}

// observeCollection records the outcome of loading one collection.
func (m *Metrics) observeCollection(name string, valid, rejected int) {
	m.GaugeDocuments.WithLabelValues(name, "valid").Set(float64(valid))
	m.GaugeDocuments.WithLabelValues(name, "rejected").Set(float64(rejected))
}

func (m *Metrics) handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
