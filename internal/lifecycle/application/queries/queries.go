// Package queries holds the read-side handlers of the lifecycle context.
// Every view is derived at read time from stored state and the engine clock.
package queries

import (
	"log/slog"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
)

// Reader bundles what the read handlers need.
type Reader struct {
	engine  *domain.Engine
	repo    domain.Repository
	feed    domain.AuditFeed
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewReader creates a Reader.
func NewReader(engine *domain.Engine, repo domain.Repository, feed domain.AuditFeed, logger *slog.Logger, metrics observability.Metrics) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Reader{engine: engine, repo: repo, feed: feed, logger: logger, metrics: metrics}
}
