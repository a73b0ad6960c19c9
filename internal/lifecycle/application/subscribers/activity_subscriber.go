package subscribers

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// LeadReady is the decoded payload of a lead reaching its terminal stage.
type LeadReady struct {
	LeadID     uuid.UUID
	Title      string
	AssigneeID uuid.UUID
}

// ActivitySubscriber consumes lifecycle events on the worker side. It counts
// every event, surfaces rollbacks, and hands booked leads to OnLeadReady.
type ActivitySubscriber struct {
	logger      *slog.Logger
	metrics     observability.Metrics
	onLeadReady func(ctx context.Context, lead LeadReady) error
}

// NewActivitySubscriber creates a new activity subscriber.
func NewActivitySubscriber(logger *slog.Logger, metrics observability.Metrics) *ActivitySubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ActivitySubscriber{logger: logger, metrics: metrics}
}

// OnLeadReady registers the conversion hook. A hook error is returned so the
// outbox retries the event.
func (s *ActivitySubscriber) OnLeadReady(fn func(ctx context.Context, lead LeadReady) error) {
	s.onLeadReady = fn
}

// RoutingKeys returns the event types this subscriber handles.
func (s *ActivitySubscriber) RoutingKeys() []string {
	return []string{
		domain.RoutingKeySubjectCreated,
		domain.RoutingKeyStageTransitioned,
		domain.RoutingKeyStageRolledBack,
		domain.RoutingKeySubStageCompleted,
		domain.RoutingKeySubStageProgressed,
		domain.RoutingKeyHoldStatusChanged,
		domain.RoutingKeyPaymentRecorded,
		domain.RoutingKeyPaymentDeleted,
		domain.RoutingKeyFinancialsUpdated,
		domain.RoutingKeyPlanUpdated,
		domain.RoutingKeyCommentAdded,
		domain.RoutingKeyLeadReadyForConvert,
	}
}

// Handle processes an event.
func (s *ActivitySubscriber) Handle(ctx context.Context, env *eventbus.Envelope) error {
	ctx = observability.WithSubjectID(ctx, env.AggregateID.String())
	if env.Metadata.CorrelationID != uuid.Nil {
		ctx = observability.WithCorrelationID(ctx, env.Metadata.CorrelationID.String())
	}
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", env.RoutingKey))

	switch env.RoutingKey {
	case domain.RoutingKeyStageRolledBack:
		return s.handleRollback(ctx, env)
	case domain.RoutingKeyLeadReadyForConvert:
		return s.handleLeadReady(ctx, env)
	default:
		s.logger.DebugContext(ctx, "lifecycle event consumed", "routing_key", env.RoutingKey, "event_id", env.EventID)
		return nil
	}
}

type rollbackPayload struct {
	SubjectType domain.SubjectType `json:"subject_type"`
	FromStage   string             `json:"from_stage"`
	ToStage     string             `json:"to_stage"`
	ActorID     uuid.UUID          `json:"actor_id"`
}

func (s *ActivitySubscriber) handleRollback(ctx context.Context, env *eventbus.Envelope) error {
	var payload rollbackPayload
	if err := env.Decode(&payload); err != nil {
		// Malformed payloads are not retried.
		s.logger.ErrorContext(ctx, "failed to decode rollback event", "event_id", env.EventID, "error", err)
		return nil
	}
	s.logger.WarnContext(ctx, "stage rolled back",
		"subject_type", payload.SubjectType,
		"from_stage", payload.FromStage,
		"to_stage", payload.ToStage,
		"actor_id", payload.ActorID,
	)
	return nil
}

type leadReadyPayload struct {
	Title      string    `json:"title"`
	AssigneeID uuid.UUID `json:"assignee_id"`
}

func (s *ActivitySubscriber) handleLeadReady(ctx context.Context, env *eventbus.Envelope) error {
	var payload leadReadyPayload
	if err := env.Decode(&payload); err != nil {
		s.logger.ErrorContext(ctx, "failed to decode lead event", "event_id", env.EventID, "error", err)
		return nil
	}
	lead := LeadReady{LeadID: env.AggregateID, Title: payload.Title, AssigneeID: payload.AssigneeID}
	s.logger.InfoContext(ctx, "lead ready for conversion", "title", lead.Title, "assignee_id", lead.AssigneeID)
	if s.onLeadReady == nil {
		return nil
	}
	return s.onLeadReady(ctx, lead)
}
