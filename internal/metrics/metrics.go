package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dockerlab/demoapp/internal/model"
)

// DurationBuckets are the histogram boundaries for request duration, in seconds.
var DurationBuckets = []float64{0.1, 0.5, 1, 2, 5, 10}

var requestLabels = []string{"method", "route", "status"}

// Registry owns every metric instrument the service exposes.
type Registry struct {
	reg *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, route, status.
	RequestsTotal *prometheus.CounterVec
	// ResponseTimeSeconds holds the latest response time per label tuple.
	ResponseTimeSeconds *prometheus.GaugeVec
	// RequestDurationSeconds measures request latency.
	RequestDurationSeconds *prometheus.HistogramVec
}

// New creates a registry with request instruments and the default Go and
// process collectors.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Registry{
		reg: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			requestLabels,
		),
		ResponseTimeSeconds: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "http_response_time_seconds",
				Help: "Response time in seconds",
			},
			requestLabels,
		),
		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: DurationBuckets,
			},
			requestLabels,
		),
	}
}

// Observe records one completed request on all three instruments.
func (r *Registry) Observe(obs model.RequestObservation) {
	labels := obs.Labels()
	seconds := obs.DurationSeconds()

	r.ResponseTimeSeconds.WithLabelValues(labels...).Set(seconds)
	r.RequestDurationSeconds.WithLabelValues(labels...).Observe(seconds)
	r.RequestsTotal.WithLabelValues(labels...).Inc()
}

// Register adds collectors to the registry.
func (r *Registry) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := r.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Gatherer exposes the registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
