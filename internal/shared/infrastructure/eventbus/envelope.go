// Package eventbus carries outbox events to consumers, through RabbitMQ or
// in process.
package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/atelier/internal/shared/domain"
	"github.com/google/uuid"
)

// Envelope is the wire form of a domain event. The payload holds the
// event-specific fields; identity and routing live on the envelope.
type Envelope struct {
	EventID       uuid.UUID            `json:"event_id"`
	AggregateType string               `json:"aggregate_type"`
	AggregateID   uuid.UUID            `json:"aggregate_id"`
	RoutingKey    string               `json:"routing_key"`
	OccurredAt    time.Time            `json:"occurred_at"`
	Payload       json.RawMessage      `json:"payload"`
	Metadata      domain.EventMetadata `json:"metadata"`
}

// EnvelopeFromEvent wraps a domain event directly, bypassing the outbox.
func EnvelopeFromEvent(event domain.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		EventID:       event.EventID(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata:      event.Metadata(),
	}, nil
}

// Decode unmarshals the payload into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher sends envelopes to a broker.
type Publisher interface {
	Publish(ctx context.Context, env *Envelope) error
	Close() error
}

// Handler reacts to envelopes with the given routing keys.
type Handler interface {
	RoutingKeys() []string
	Handle(ctx context.Context, env *Envelope) error
}

// HandlerFunc adapts a function to a single-key Handler.
type HandlerFunc struct {
	Key string
	Fn  func(ctx context.Context, env *Envelope) error
}

func (h HandlerFunc) RoutingKeys() []string { return []string{h.Key} }

func (h HandlerFunc) Handle(ctx context.Context, env *Envelope) error { return h.Fn(ctx, env) }
