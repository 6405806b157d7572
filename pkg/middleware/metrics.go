package middleware

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/transition"
)

// MetricsConfig configures the Prometheus metrics observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "stacknav").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for operation duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics observer.
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
		Namespace: "stacknav",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a navigation observer that records Prometheus metrics.
//
// Metrics collected:
//   - stacknav_operations_total: operations by op, outcome and status
//   - stacknav_operation_duration_seconds: operation duration by op
//   - stacknav_operation_errors_total: failed operations by op and error code
//   - stacknav_views: views in the stack after the last committed operation
//   - stacknav_transitions_total: transition items by lifecycle mode
type Metrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	errors      *prometheus.CounterVec
	views       prometheus.Gauge
	transitions *prometheus.CounterVec
}

// NewMetrics registers the navigation metrics and returns the observer.
// Registering twice with the same registry panics, as promauto does.
//
//	reg := prometheus.NewRegistry()
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	machine := navigation.New(store, registry, navigation.WithObserver(m))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operations_total",
			Help:        "Total number of navigation operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "outcome", "status"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operation_duration_seconds",
			Help:        "Navigation operation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "operation_errors_total",
			Help:        "Total number of failed navigation operations",
			ConstLabels: config.ConstLabels,
		}, []string{"op", "code"}),

		views: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "views",
			Help:        "Number of views in the stack",
			ConstLabels: config.ConstLabels,
		}),

		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_total",
			Help:        "Total number of transition items by lifecycle mode",
			ConstLabels: config.ConstLabels,
		}, []string{"mode"}),
	}
}

// Observe implements navigation.Observer.
func (m *Metrics) Observe(ev navigation.Event) {
	op := string(ev.Op)
	m.duration.WithLabelValues(op).Observe(ev.Duration.Seconds())

	status := "unchanged"
	switch {
	case ev.Err != nil:
		status = "error"
		m.errors.WithLabelValues(op, errorCode(ev.Err)).Inc()
	case ev.Changed:
		status = "committed"
		m.views.Set(float64(len(ev.State.Views)))
	}
	m.operations.WithLabelValues(op, string(ev.Outcome), status).Inc()
}

// ObserveTransition counts the items of one transition by mode.
func (m *Metrics) ObserveTransition(items []transition.Item) {
	for _, it := range items {
		m.transitions.WithLabelValues(string(it.Mode)).Inc()
	}
}

// errorCode keeps the error label bounded: coded errors report their code,
// anything else is "internal".
func errorCode(err error) string {
	var coded *errors.Error
	if stderrors.As(err, &coded) && coded.Code != "" {
		return coded.Code
	}
	return "internal"
}
