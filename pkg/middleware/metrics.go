package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/retree-dev/retree/pkg/dispatch"
)

// MetricsConfig configures the Prometheus update-cycle interceptor.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "retree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for cycle duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus interceptor.
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
		Namespace: "retree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	cyclesTotal   *prometheus.CounterVec
	cycleDuration *prometheus.HistogramVec
	cycleErrors   *prometheus.CounterVec
	patchesTotal  prometheus.Counter
}

func newMetrics(cfg MetricsConfig) *metrics {
	factory := promauto.With(cfg.Registry)
	return &metrics{
		cyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "update_cycles_total",
			Help:        "Total number of update cycles, by command name.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"command"}),
		cycleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "update_cycle_duration_seconds",
			Help:        "Duration of update cycles in seconds, by command name.",
			Buckets:     cfg.Buckets,
			ConstLabels: cfg.ConstLabels,
		}, []string{"command"}),
		cycleErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "update_cycle_errors_total",
			Help:        "Total number of failed update cycles, by command name.",
			ConstLabels: cfg.ConstLabels,
		}, []string{"command"}),
		patchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "patches_applied_total",
			Help:        "Total number of patches emitted by completed cycles.",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// Prometheus returns an update-cycle interceptor recording cycle counts,
// durations, errors and patch volume.
func Prometheus(opts ...MetricsOption) dispatch.Interceptor {
	cfg := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	m := newMetrics(cfg)

	return func(info *dispatch.CycleInfo, next func() error) error {
		start := time.Now()
		err := next()
		elapsed := time.Since(start).Seconds()

		m.cyclesTotal.WithLabelValues(info.Command).Inc()
		m.cycleDuration.WithLabelValues(info.Command).Observe(elapsed)
		if err != nil {
			m.cycleErrors.WithLabelValues(info.Command).Inc()
			return err
		}
		m.patchesTotal.Add(float64(info.Patches))
		return nil
	}
}
