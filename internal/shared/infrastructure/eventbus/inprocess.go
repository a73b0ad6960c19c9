package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// InProcessBus delivers envelopes synchronously to a Registry. It backs
// local mode, where no broker is configured.
type InProcessBus struct {
	registry *Registry
	logger   *slog.Logger
	mu       sync.Mutex
	strict   bool
}

// NewInProcessBus creates a bus. In strict mode handler failures are returned
// to the publisher, so the outbox retries them.
func NewInProcessBus(registry *Registry, strict bool, logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{registry: registry, strict: strict, logger: logger}
}

func (b *InProcessBus) Publish(ctx context.Context, env *Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.registry.Dispatch(ctx, env); err != nil {
		if b.strict {
			return err
		}
		b.logger.Warn("in-process dispatch failed", "routing_key", env.RoutingKey, "error", err)
	}
	return nil
}

func (b *InProcessBus) Close() error { return nil }

// NoopPublisher drops every envelope.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that only logs.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

func (p *NoopPublisher) Publish(_ context.Context, env *Envelope) error {
	p.logger.Debug("noop publish", "routing_key", env.RoutingKey, "event_id", env.EventID)
	return nil
}

func (p *NoopPublisher) Close() error { return nil }
