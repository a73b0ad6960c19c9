package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics records application metrics.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag labels a metric sample.
type Tag struct {
	Key   string
	Value string
}

// T creates a Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

type series struct {
	counter int64
	gauge   float64
	values  []float64
	timings []time.Duration
}

// InMemoryMetrics keeps samples in memory. It backs tests and the worker's
// stats endpoint.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*series
}

// NewInMemoryMetrics creates an empty collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: make(map[string]*series)}
}

func (m *InMemoryMetrics) at(name string, tags []Tag) *series {
	key := formatKey(name, tags)
	s, ok := m.series[key]
	if !ok {
		s = &series{}
		m.series[key] = s
	}
	return s
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at(name, tags).counter += value
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at(name, tags).gauge = value
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.at(name, tags)
	s.values = append(s.values, value)
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.at(name, tags)
	s.timings = append(s.timings, duration)
}

func (m *InMemoryMetrics) lookup(name string, tags []Tag) series {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.series[formatKey(name, tags)]; ok {
		return series{
			counter: s.counter,
			gauge:   s.gauge,
			values:  append([]float64(nil), s.values...),
			timings: append([]time.Duration(nil), s.timings...),
		}
	}
	return series{}
}

// GetCounter returns a counter's total.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.lookup(name, tags).counter
}

// GetGauge returns a gauge's last value.
func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.lookup(name, tags).gauge
}

// GetHistogram returns the recorded histogram values.
func (m *InMemoryMetrics) GetHistogram(name string, tags ...Tag) []float64 {
	return m.lookup(name, tags).values
}

// GetTimings returns the recorded durations.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return m.lookup(name, tags).timings
}

// Counters returns every counter keyed by name and tags.
func (m *InMemoryMetrics) Counters() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64)
	for k, s := range m.series {
		if s.counter != 0 {
			out[k] = s.counter
		}
	}
	return out
}

// Reset drops every sample.
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = make(map[string]*series)
}

// formatKey renders name:k=v pairs with tags sorted by key, so tag order at
// the call site does not matter.
func formatKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := append([]Tag(nil), tags...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	var b strings.Builder
	b.WriteString(name)
	for _, t := range sorted {
		b.WriteString(":")
		b.WriteString(t.Key)
		b.WriteString("=")
		b.WriteString(t.Value)
	}
	return b.String()
}

// Metric names.
const (
	MetricOperationTotal    = "atelier.operation.total"
	MetricOperationDuration = "atelier.operation.duration"
	MetricOperationErrors   = "atelier.operation.errors"

	MetricSubjectsCreated     = "atelier.subjects.created"
	MetricStageTransitions    = "atelier.stage.transitions"
	MetricStageRollbacks      = "atelier.stage.rollbacks"
	MetricSubStageCompletions = "atelier.substage.completions"
	MetricHoldChanges         = "atelier.hold.changes"
	MetricPaymentsRecorded    = "atelier.payments.recorded"
	MetricPaymentsDeleted     = "atelier.payments.deleted"
	MetricRejections          = "atelier.mutations.rejected"

	MetricLockWait     = "atelier.lock.wait"
	MetricLockTimeouts = "atelier.lock.timeouts"

	MetricOutboxPending     = "atelier.outbox.pending"
	MetricOutboxPublished   = "atelier.outbox.published"
	MetricOutboxFailed      = "atelier.outbox.failed"
	MetricOutboxDeadLetters = "atelier.outbox.dead_letters"
	MetricEventsConsumed    = "atelier.events.consumed"
)
