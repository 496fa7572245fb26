package prometheus

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
)

// Metrics implements observability.Metrics using the Prometheus client library.
// Metric families are created on first use; the label set of a family is frozen
// at creation, so later calls with extra tags have those tags dropped and
// missing tags reported as empty strings.
type Metrics struct {
	namespace string
	tags      map[string]string

	mu         *sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
	labelSets  map[string][]string
}

// NewMetrics creates a Prometheus-backed metrics recorder. All families are
// registered with the default registry so promhttp.Handler can expose them.
func NewMetrics(namespace string) observability.Metrics {
	return &Metrics{
		namespace:  sanitizeName(namespace),
		tags:       make(map[string]string),
		mu:         &sync.Mutex{},
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		labelSets:  make(map[string][]string),
	}
}

// IncrementCounter increments a counter metric
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := m.mergeTags(tags)
	vec := m.counterVec(name, merged)
	vec.With(m.projectLabels(name, merged)).Inc()
}

// RecordHistogram records a value in a histogram metric
func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := m.mergeTags(tags)
	vec := m.histogramVec(name, merged)
	vec.With(m.projectLabels(name, merged)).Observe(value)
}

// RecordGauge records a gauge metric value
func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	merged := m.mergeTags(tags)
	vec := m.gaugeVec(name, merged)
	vec.With(m.projectLabels(name, merged)).Set(value)
}

// WithTags returns a new Metrics instance with additional tags
func (m *Metrics) WithTags(tags map[string]string) observability.Metrics {
	newTags := make(map[string]string)

	for k, v := range m.tags {
		newTags[k] = v
	}
	for k, v := range tags {
		newTags[k] = v
	}

	// Share the families so scoped instances feed the same registry entries
	return &Metrics{
		namespace:  m.namespace,
		tags:       newTags,
		mu:         m.mu,
		counters:   m.counters,
		histograms: m.histograms,
		gauges:     m.gauges,
		labelSets:  m.labelSets,
	}
}

func (m *Metrics) counterVec(name string, tags map[string]string) *prometheus.CounterVec {
	if vec, ok := m.counters[name]; ok {
		return vec
	}

	labels := m.freezeLabels(name, tags)
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      sanitizeName(name),
			Help:      name,
		},
		labels,
	)
	m.counters[name] = register(vec).(*prometheus.CounterVec)
	return m.counters[name]
}

func (m *Metrics) histogramVec(name string, tags map[string]string) *prometheus.HistogramVec {
	if vec, ok := m.histograms[name]; ok {
		return vec
	}

	labels := m.freezeLabels(name, tags)
	vec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      sanitizeName(name),
			Help:      name,
			Buckets:   prometheus.DefBuckets,
		},
		labels,
	)
	m.histograms[name] = register(vec).(*prometheus.HistogramVec)
	return m.histograms[name]
}

func (m *Metrics) gaugeVec(name string, tags map[string]string) *prometheus.GaugeVec {
	if vec, ok := m.gauges[name]; ok {
		return vec
	}

	labels := m.freezeLabels(name, tags)
	vec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      sanitizeName(name),
			Help:      name,
		},
		labels,
	)
	m.gauges[name] = register(vec).(*prometheus.GaugeVec)
	return m.gauges[name]
}

func (m *Metrics) mergeTags(tags map[string]string) map[string]string {
	merged := make(map[string]string, len(m.tags)+len(tags))
	for k, v := range m.tags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return merged
}

// freezeLabels records the label names of a family on first use
func (m *Metrics) freezeLabels(name string, tags map[string]string) []string {
	labels := make([]string, 0, len(tags))
	for k := range tags {
		labels = append(labels, sanitizeName(k))
	}
	sort.Strings(labels)
	m.labelSets[name] = labels
	return labels
}

// projectLabels maps the current tags onto the frozen label set of a family
func (m *Metrics) projectLabels(name string, tags map[string]string) prometheus.Labels {
	sanitized := make(map[string]string, len(tags))
	for k, v := range tags {
		sanitized[sanitizeName(k)] = v
	}

	labels := make(prometheus.Labels, len(m.labelSets[name]))
	for _, l := range m.labelSets[name] {
		labels[l] = sanitized[l]
	}
	return labels
}

// register adds a collector to the default registry, reusing the existing
// collector when the family was registered before (e.g. by another instance)
func register(c prometheus.Collector) prometheus.Collector {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
