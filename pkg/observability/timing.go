package observability

import (
	"context"
	"log/slog"
	"time"
)

// Timer measures an operation and reports it to a logger and metrics.
type Timer struct {
	operation string
	start     time.Time
	ctx       context.Context
	logger    *slog.Logger
	metrics   Metrics
	tags      []Tag
}

// StartTimer starts timing operation.
func StartTimer(operation string) *Timer {
	return &Timer{operation: operation, start: time.Now(), ctx: context.Background()}
}

// WithLogger logs the outcome at debug level on stop; failures log at warn.
func (t *Timer) WithLogger(ctx context.Context, logger *slog.Logger) *Timer {
	if ctx != nil {
		t.ctx = ctx
	}
	t.logger = logger
	return t
}

// WithMetrics records duration and count on stop.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags labels the recorded metrics.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records a successful operation.
func (t *Timer) Stop() time.Duration {
	return t.StopWithError(nil)
}

// StopWithError records the operation, counting it as an error when err is
// not nil.
func (t *Timer) StopWithError(err error) time.Duration {
	d := time.Since(t.start)

	if t.logger != nil {
		if err != nil {
			t.logger.WarnContext(t.ctx, "operation failed",
				OperationKey, t.operation, DurationKey, d.Milliseconds(), ErrorKey, err.Error())
		} else {
			t.logger.DebugContext(t.ctx, "operation completed",
				OperationKey, t.operation, DurationKey, d.Milliseconds())
		}
	}

	if t.metrics != nil {
		tags := append(append([]Tag(nil), t.tags...), T(OperationKey, t.operation))
		t.metrics.Timing(MetricOperationDuration, d, tags...)
		t.metrics.Counter(MetricOperationTotal, 1, tags...)
		if err != nil {
			t.metrics.Counter(MetricOperationErrors, 1, tags...)
		}
	}
	return d
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// TimeOperation runs fn under a timer.
func TimeOperation(ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func() error) error {
	timer := StartTimer(operation).WithLogger(ctx, logger).WithMetrics(metrics)
	err := fn()
	timer.StopWithError(err)
	return err
}

// TimeOperationResult runs fn under a timer and returns its value.
func TimeOperationResult[T any](ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func() (T, error)) (T, error) {
	timer := StartTimer(operation).WithLogger(ctx, logger).WithMetrics(metrics)
	v, err := fn()
	timer.StopWithError(err)
	return v, err
}
