// Package commands holds one handler per lifecycle mutation.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/locking"
	sharedApplication "github.com/felixgeelhaar/atelier/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/atelier/internal/shared/domain"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// Result is what every mutation returns: the authoritative view of the
// subject after the change and the comments the change produced.
type Result struct {
	Snapshot domain.Snapshot  `json:"snapshot"`
	Comments []domain.Comment `json:"comments"`
}

// Mutator runs engine mutations as one atomic unit per subject: subject
// lock, transaction, versioned save, audit feed and outbox.
type Mutator struct {
	engine  *domain.Engine
	repo    domain.Repository
	feed    domain.AuditFeed
	outbox  outbox.Repository
	uow     sharedApplication.UnitOfWork
	locker  locking.Locker
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewMutator creates a Mutator. A nil locker serializes in-process; nil
// logger and metrics are replaced by defaults.
func NewMutator(
	engine *domain.Engine,
	repo domain.Repository,
	feed domain.AuditFeed,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker locking.Locker,
	logger *slog.Logger,
	metrics observability.Metrics,
) *Mutator {
	if locker == nil {
		locker = locking.NewKeyedMutex()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Mutator{
		engine:  engine,
		repo:    repo,
		feed:    feed,
		outbox:  outboxRepo,
		uow:     uow,
		locker:  locker,
		logger:  logger,
		metrics: metrics,
	}
}

// Engine returns the engine the mutator drives.
func (m *Mutator) Engine() *domain.Engine { return m.engine }

func scope(ctx context.Context, subjectID uuid.UUID, actor domain.Actor) context.Context {
	if subjectID != uuid.Nil {
		ctx = observability.WithSubjectID(ctx, subjectID.String())
	}
	return observability.WithActor(ctx, observability.Actor{ID: actor.ID.String(), Role: string(actor.Role)})
}

// apply loads the subject under its lock, runs mutate, and persists the
// outcome. Nothing is written when mutate fails.
func (m *Mutator) apply(
	ctx context.Context,
	op string,
	subjectID uuid.UUID,
	actor domain.Actor,
	correlationID uuid.UUID,
	mutate func(s *domain.Subject) error,
) (Result, error) {
	ctx = scope(ctx, subjectID, actor)
	timer := observability.StartTimer(op).WithMetrics(m.metrics)

	waited := time.Now()
	unlock, err := m.locker.Lock(ctx, subjectID)
	m.metrics.Timing(observability.MetricLockWait, time.Since(waited))
	if err != nil {
		if errors.Is(err, locking.ErrLockTimeout) {
			m.metrics.Counter(observability.MetricLockTimeouts, 1)
		}
		err = fmt.Errorf("lock subject %s: %w", subjectID, err)
		m.finish(ctx, op, timer, err)
		return Result{}, err
	}
	defer unlock()

	var result Result
	err = sharedApplication.WithUnitOfWork(ctx, m.uow, func(txCtx context.Context) error {
		s, err := m.repo.FindByID(txCtx, subjectID)
		if err != nil {
			return err
		}
		if err := mutate(s); err != nil {
			return err
		}
		result, err = m.persist(txCtx, s, actor, correlationID)
		return err
	})
	m.finish(ctx, op, timer, err)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// persist saves a mutated subject with its comment delta and events. It must
// run inside a unit of work.
func (m *Mutator) persist(ctx context.Context, s *domain.Subject, actor domain.Actor, correlationID uuid.UUID) (Result, error) {
	if err := m.repo.Save(ctx, s); err != nil {
		return Result{}, err
	}
	s.MarkPersisted()

	comments := s.NewComments()
	if len(comments) > 0 {
		if err := m.feed.Append(ctx, comments...); err != nil {
			return Result{}, fmt.Errorf("append audit feed: %w", err)
		}
	}

	events := s.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(actor.ID, string(actor.Role), correlationID))
	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return Result{}, err
	}
	if len(msgs) > 0 {
		if err := m.outbox.SaveBatch(ctx, msgs); err != nil {
			return Result{}, fmt.Errorf("save outbox: %w", err)
		}
	}

	snap, err := m.engine.Snapshot(s)
	if err != nil {
		return Result{}, err
	}
	m.record(ctx, s, events)
	s.ClearDomainEvents()
	s.ClearNewComments()

	if comments == nil {
		comments = []domain.Comment{}
	}
	return Result{Snapshot: snap, Comments: comments}, nil
}

func (m *Mutator) finish(ctx context.Context, op string, timer *observability.Timer, err error) {
	timer.StopWithError(err)
	if err == nil {
		return
	}
	kind := domain.KindOf(err)
	if kind != "" {
		m.metrics.Counter(observability.MetricRejections, 1, observability.T("kind", string(kind)))
		m.logger.DebugContext(ctx, "mutation rejected", observability.OperationKey, op, "kind", kind, "reason", err.Error())
		return
	}
	m.logger.ErrorContext(ctx, "mutation failed", observability.OperationKey, op, observability.ErrorKey, err)
}

// record logs and counts what a persisted mutation did.
func (m *Mutator) record(ctx context.Context, s *domain.Subject, events []sharedDomain.DomainEvent) {
	typ := observability.T("type", string(s.Type()))
	for _, ev := range events {
		switch e := ev.(type) {
		case *domain.SubjectCreated:
			m.metrics.Counter(observability.MetricSubjectsCreated, 1, typ)
			m.logger.InfoContext(ctx, "subject created", "type", s.Type(), "stage", s.Stage())
		case *domain.StageTransitioned:
			m.metrics.Counter(observability.MetricStageTransitions, 1, typ)
			m.logger.InfoContext(ctx, "stage transitioned",
				"from", e.FromStage, "to", e.ToStage, "automatic", e.Automatic, "skipped", len(e.SkippedStages))
		case *domain.StageRolledBack:
			m.metrics.Counter(observability.MetricStageRollbacks, 1, typ)
			m.logger.WarnContext(ctx, "stage rolled back", "from", e.FromStage, "to", e.ToStage)
		case *domain.SubStageCompleted:
			m.metrics.Counter(observability.MetricSubStageCompletions, 1, typ)
			m.logger.InfoContext(ctx, "sub-stage completed", "sub_stage", e.SubStageID, "group_completed", e.GroupCompleted)
		case *domain.HoldStatusChanged:
			m.metrics.Counter(observability.MetricHoldChanges, 1, typ, observability.T("to", string(e.To)))
			if e.Reactivation {
				m.logger.WarnContext(ctx, "subject reactivated", "from", e.From, "to", e.To)
			} else {
				m.logger.InfoContext(ctx, "hold status changed", "from", e.From, "to", e.To)
			}
		case *domain.PaymentRecorded:
			m.metrics.Counter(observability.MetricPaymentsRecorded, 1)
			m.logger.InfoContext(ctx, "payment recorded", "payment_id", e.PaymentID, "amount", e.Amount)
		case *domain.PaymentDeleted:
			m.metrics.Counter(observability.MetricPaymentsDeleted, 1)
			m.logger.WarnContext(ctx, "payment deleted", "payment_id", e.PaymentID, "reason", e.Reason)
		default:
			m.logger.InfoContext(ctx, "subject updated", "event", ev.RoutingKey())
		}
	}
}
