package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tandemwire/tandem/pkg/mux"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "tandem").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for request duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "tandem",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors for one middleware instance.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	handlerErrors   *prometheus.CounterVec
	inflight        prometheus.Gauge
}

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of inbound requests handled",
			ConstLabels: config.ConstLabels,
		}, []string{"message", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "Handler duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"message"}),

		handlerErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_errors_total",
			Help:        "Total number of handler failures relayed to callers",
			ConstLabels: config.ConstLabels,
		}, []string{"message"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "inflight_requests",
			Help:        "Number of requests currently being handled",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates middleware that meters every inbound request.
//
// Metrics collected:
//   - tandem_requests_total: counter by message name and status
//   - tandem_request_duration_seconds: handler duration histogram
//   - tandem_handler_errors_total: counter of relayed handler failures
//   - tandem_inflight_requests: gauge of concurrently running handlers
//
// Expose them with promhttp on the process's HTTP listener. Each call
// builds fresh collectors; use WithRegistry when a process carries more
// than one instrumented peer.
func Prometheus(opts ...MetricsOption) mux.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	m := initMetrics(config)

	return func(next mux.HandlerFunc) mux.HandlerFunc {
		return func(ctx context.Context, req *mux.Request) ([]byte, error) {
			m.inflight.Inc()
			start := time.Now()

			reply, err := next(ctx, req)

			m.inflight.Dec()
			m.requestDuration.WithLabelValues(req.Name).Observe(time.Since(start).Seconds())

			status := "success"
			if err != nil {
				status = "error"
				m.handlerErrors.WithLabelValues(req.Name).Inc()
			}
			m.requestsTotal.WithLabelValues(req.Name, status).Inc()

			return reply, err
		}
	}
}
