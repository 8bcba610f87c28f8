package metrics

import (
	"log/slog"
	"net/http"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thankyoudoc/thankyoudoc-api/internal/observability/statsd"
)

// PrometheusSink adapts the StatsD-style Sink onto a Prometheus registry.
// Each metric name becomes a vector whose label names are fixed by the first
// emission; later emissions with a different tag key set are dropped.
type PrometheusSink struct {
	namespace string
	registry  *prometheus.Registry
	logger    *slog.Logger

	mu         sync.Mutex
	counters   map[string]*vec[*prometheus.CounterVec]
	gauges     map[string]*vec[*prometheus.GaugeVec]
	histograms map[string]*vec[*prometheus.HistogramVec]
}

type vec[T prometheus.Collector] struct {
	labels []string
	v      T
}

var _ statsd.Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates a sink with its own registry, including Go runtime
// and process collectors.
func NewPrometheusSink(namespace string, logger *slog.Logger) *PrometheusSink {
	if logger == nil {
		logger = slog.Default()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusSink{
		namespace:  promName(namespace),
		registry:   reg,
		logger:     logger.With("component", "prometheus_sink"),
		counters:   make(map[string]*vec[*prometheus.CounterVec]),
		gauges:     make(map[string]*vec[*prometheus.GaugeVec]),
		histograms: make(map[string]*vec[*prometheus.HistogramVec]),
	}
}

// Registry exposes the underlying registry.
func (s *PrometheusSink) Registry() *prometheus.Registry { return s.registry }

// Handler serves the registry in the Prometheus exposition format.
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Count adds value to the counter "<name>_total".
func (s *PrometheusSink) Count(name string, value int64, tags map[string]string) {
	if value < 0 {
		return
	}
	labels, values := splitTags(tags)
	entry := lookup(s, s.counters, name, labels, func() *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: s.namespace,
			Name:      promName(name) + "_total",
			Help:      "Count of " + name + ".",
		}, labels)
	})
	if entry != nil {
		entry.WithLabelValues(values...).Add(float64(value))
	}
}

// Gauge sets the gauge "<name>".
func (s *PrometheusSink) Gauge(name string, value float64, tags map[string]string) {
	labels, values := splitTags(tags)
	entry := lookup(s, s.gauges, name, labels, func() *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: s.namespace,
			Name:      promName(name),
			Help:      "Current value of " + name + ".",
		}, labels)
	})
	if entry != nil {
		entry.WithLabelValues(values...).Set(value)
	}
}

// Timing observes the histogram "<name>_seconds".
func (s *PrometheusSink) Timing(name string, value time.Duration, tags map[string]string) {
	labels, values := splitTags(tags)
	entry := lookup(s, s.histograms, name, labels, func() *prometheus.HistogramVec {
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: s.namespace,
			Name:      promName(name) + "_seconds",
			Help:      "Duration of " + name + ".",
			Buckets:   prometheus.DefBuckets,
		}, labels)
	})
	if entry != nil {
		entry.WithLabelValues(values...).Observe(value.Seconds())
	}
}

// lookup returns the vector for name, registering it on first use. It returns
// the zero T when registration failed or labels differ from the first emission.
func lookup[T prometheus.Collector](
	s *PrometheusSink,
	into map[string]*vec[T],
	name string,
	labels []string,
	create func() T,
) T {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := into[name]
	if !ok {
		c := create()
		if err := s.registry.Register(c); err != nil {
			s.logger.Warn("metric registration failed", "metric", name, "error", err)
			into[name] = nil
			return zero
		}
		entry = &vec[T]{labels: labels, v: c}
		into[name] = entry
	}
	if entry == nil || !slices.Equal(entry.labels, labels) {
		return zero
	}
	return entry.v
}

// splitTags returns sanitized label names in sorted order with their values.
func splitTags(tags map[string]string) ([]string, []string) {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		if promName(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	labels := make([]string, len(keys))
	values := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = promName(k)
		values[i] = tags[k]
	}
	return labels, values
}

// promName maps "access.decision" style names onto [a-zA-Z0-9_].
func promName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
