package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
)

// Registry routes envelopes to handlers by routing key.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{handlers: make(map[string][]Handler), logger: logger}
}

// Register adds h under each of its routing keys.
func (r *Registry) Register(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range h.RoutingKeys() {
		r.handlers[key] = append(r.handlers[key], h)
	}
}

// RoutingKeys returns every key with at least one handler, sorted.
func (r *Registry) RoutingKeys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dispatch runs every handler for the envelope's key. A failing handler does
// not stop the others; all failures are joined.
func (r *Registry) Dispatch(ctx context.Context, env *Envelope) error {
	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers[env.RoutingKey]...)
	r.mu.RUnlock()

	if len(handlers) == 0 {
		r.logger.Debug("no handlers for routing key", "routing_key", env.RoutingKey)
		return nil
	}

	var errs []error
	for _, h := range handlers {
		if err := h.Handle(ctx, env); err != nil {
			r.logger.Error("handler failed",
				"routing_key", env.RoutingKey,
				"event_id", env.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
