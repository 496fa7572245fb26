package stdout

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pwrtux/moodle-magnet/internal/domain/observability"
)

// Metrics implements observability.Metrics using stdout
type Metrics struct {
	tags       map[string]string
	logger     *log.Logger
	mu         *sync.RWMutex
	counters   map[string]float64
	histograms map[string][]float64
	gauges     map[string]float64
}

// NewMetrics creates a new stdout metrics recorder
func NewMetrics() observability.Metrics {
	return &Metrics{
		tags:       make(map[string]string),
		logger:     log.New(os.Stdout, "", 0),
		mu:         &sync.RWMutex{},
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
		gauges:     make(map[string]float64),
	}
}

// IncrementCounter increments a counter metric
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.buildKey(name, tags)
	m.counters[key]++

	m.logMetric("counter", name, m.counters[key], tags)
}

// RecordHistogram records a value in a histogram metric
func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.buildKey(name, tags)
	m.histograms[key] = append(m.histograms[key], value)

	m.logHistogram(name, value, tags)
}

// RecordGauge records a gauge metric value
func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := m.buildKey(name, tags)
	m.gauges[key] = value

	m.logMetric("gauge", name, value, tags)
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

	// Share the underlying storage so scoped instances aggregate together
	return &Metrics{
		tags:       newTags,
		logger:     m.logger,
		mu:         m.mu,
		counters:   m.counters,
		histograms: m.histograms,
		gauges:     m.gauges,
	}
}

// buildKey creates a unique key for the metric including tags.
// Tag keys are sorted so the same metric always maps to the same key.
func (m *Metrics) buildKey(name string, tags map[string]string) string {
	merged := make(map[string]string)
	for k, v := range m.tags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}

	if len(merged) == 0 {
		return name
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, merged[k]))
	}

	return fmt.Sprintf("%s{%s}", name, strings.Join(parts, ","))
}

func (m *Metrics) logMetric(metricType, name string, value float64, tags map[string]string) {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"type":      metricType,
		"metric":    name,
		"value":     value,
	}

	for k, v := range m.tags {
		entry["tag_"+k] = v
	}
	for k, v := range tags {
		entry["tag_"+k] = v
	}

	if jsonMetrics {
		jsonBytes, err := json.Marshal(entry)
		if err != nil {
			return
		}
		m.logger.Println(string(jsonBytes))
	} else {
		m.logger.Printf("METRIC %s %s=%g %s", metricType, name, value, m.buildKey("", tags))
	}
}

func (m *Metrics) logHistogram(name string, value float64, tags map[string]string) {
	key := m.buildKey(name, tags)
	values := m.histograms[key]
	stats := calculateStats(values)

	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"type":      "histogram",
		"metric":    name,
		"value":     value,
		"count":     stats.count,
		"min":       stats.min,
		"max":       stats.max,
		"avg":       stats.avg,
	}

	for k, v := range m.tags {
		entry["tag_"+k] = v
	}
	for k, v := range tags {
		entry["tag_"+k] = v
	}

	if jsonMetrics {
		jsonBytes, err := json.Marshal(entry)
		if err != nil {
			return
		}
		m.logger.Println(string(jsonBytes))
	} else {
		m.logger.Printf("METRIC histogram %s=%g count=%d min=%g max=%g avg=%g",
			name, value, stats.count, stats.min, stats.max, stats.avg)
	}
}

type histogramStats struct {
	count int
	min   float64
	max   float64
	avg   float64
}

func calculateStats(values []float64) histogramStats {
	if len(values) == 0 {
		return histogramStats{}
	}

	stats := histogramStats{
		count: len(values),
		min:   values[0],
		max:   values[0],
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < stats.min {
			stats.min = v
		}
		if v > stats.max {
			stats.max = v
		}
	}
	stats.avg = sum / float64(len(values))

	return stats
}

// Test accessors

// GetCounter returns the current value of a counter (for testing)
func (m *Metrics) GetCounter(name string, tags map[string]string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[m.buildKey(name, tags)]
}

// GetHistogram returns recorded histogram values (for testing)
func (m *Metrics) GetHistogram(name string, tags map[string]string) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	values := m.histograms[m.buildKey(name, tags)]
	result := make([]float64, len(values))
	copy(result, values)
	return result
}

// GetGauge returns the current value of a gauge (for testing)
func (m *Metrics) GetGauge(name string, tags map[string]string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[m.buildKey(name, tags)]
}

// Reset clears all recorded metrics (for testing)
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters = make(map[string]float64)
	m.histograms = make(map[string][]float64)
	m.gauges = make(map[string]float64)
}

// Configuration

var jsonMetrics = false

// UseJSONMetrics enables JSON output for metrics
func UseJSONMetrics(enabled bool) {
	jsonMetrics = enabled
}
