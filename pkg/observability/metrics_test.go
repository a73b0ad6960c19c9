package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	var m Metrics = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.Counter("c", 1)
		m.Gauge("g", 1)
		m.Histogram("h", 1)
		m.Timing("t", time.Second)
	})
}

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.Counter(MetricStageTransitions, 1, T("type", "project"))
	m.Counter(MetricStageTransitions, 2, T("type", "project"))
	m.Counter(MetricStageTransitions, 1, T("type", "lead"))
	m.Gauge(MetricOutboxPending, 4)
	m.Gauge(MetricOutboxPending, 7)
	m.Histogram("h", 1.5)
	m.Timing("t", 10*time.Millisecond)

	assert.Equal(t, int64(3), m.GetCounter(MetricStageTransitions, T("type", "project")))
	assert.Equal(t, int64(1), m.GetCounter(MetricStageTransitions, T("type", "lead")))
	assert.Equal(t, 7.0, m.GetGauge(MetricOutboxPending))
	assert.Equal(t, []float64{1.5}, m.GetHistogram("h"))
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, m.GetTimings("t"))
	assert.Len(t, m.Counters(), 2)

	m.Reset()
	assert.Zero(t, m.GetCounter(MetricStageTransitions, T("type", "project")))
	assert.Empty(t, m.Counters())
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "m", formatKey("m", nil))
	assert.Equal(t, "m:a=1:b=2", formatKey("m", []Tag{T("b", "2"), T("a", "1")}))
	assert.Equal(t, formatKey("m", []Tag{T("a", "1"), T("b", "2")}), formatKey("m", []Tag{T("b", "2"), T("a", "1")}))
}

func TestTimer(t *testing.T) {
	m := NewInMemoryMetrics()

	StartTimer("transition_stage").WithMetrics(m).WithTags(T("type", "project")).Stop()
	StartTimer("transition_stage").WithMetrics(m).WithTags(T("type", "project")).StopWithError(errors.New("boom"))

	tags := []Tag{T("type", "project"), T(OperationKey, "transition_stage")}
	assert.Equal(t, int64(2), m.GetCounter(MetricOperationTotal, tags...))
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, tags...))
	assert.Len(t, m.GetTimings(MetricOperationDuration, tags...), 2)
}

func TestTimeOperationResult(t *testing.T) {
	m := NewInMemoryMetrics()
	v, err := TimeOperationResult(context.Background(), nil, m, "get_snapshot", func() (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, T(OperationKey, "get_snapshot")))

	err = TimeOperation(context.Background(), nil, m, "list", func() error { return errors.New("x") })
	assert.Error(t, err)
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, T(OperationKey, "list")))
}

func TestHealthRegistry(t *testing.T) {
	t.Run("healthy with no failures", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", DatabaseHealthChecker(func(context.Context) error { return nil }))

		h := r.GetOverallHealth(context.Background())
		assert.Equal(t, HealthStatusHealthy, h.Status)
		assert.Equal(t, []string{"database"}, r.Names())
	})

	t.Run("optional component degrades", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", DatabaseHealthChecker(func(context.Context) error { return nil }))
		r.Register("redis", RedisHealthChecker(func(context.Context) error { return errors.New("refused") }))

		r.Check(context.Background())
		assert.Equal(t, HealthStatusDegraded, r.OverallStatus())
	})

	t.Run("critical component fails the endpoint", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", DatabaseHealthChecker(func(context.Context) error { return errors.New("down") }))
		r.Register("rabbitmq", RabbitMQHealthChecker(func(context.Context) error { return errors.New("down") }))

		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
		assert.Contains(t, rec.Body.String(), "database unreachable")
	})
}
