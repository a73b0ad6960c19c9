package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/locking"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSubjectRepo struct {
	mock.Mock
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*domain.Subject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSubjectRepo) Save(ctx context.Context, s *domain.Subject) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSubjectRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Subject, error) {
	args := m.Called(ctx, filter)
	if list, ok := args.Get(0).([]*domain.Subject); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuditFeed struct {
	mock.Mock
}

func (m *mockAuditFeed) Append(ctx context.Context, comments ...domain.Comment) error {
	return m.Called(ctx, comments).Error(0)
}

func (m *mockAuditFeed) ListBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]domain.Comment, error) {
	args := m.Called(ctx, subjectID, limit)
	if list, ok := args.Get(0).([]domain.Comment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if msgs, ok := args.Get(0).([]*outbox.Message); ok {
		return msgs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return m.Called(ctx, id, errMsg, nextRetryAt).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutboxRepo) CountPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).(context.Context); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type txKey struct{}

var (
	clockStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	admin    = domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}
	manager  = domain.Actor{ID: uuid.New(), Role: domain.RoleManager}
	designer = domain.Actor{ID: uuid.New(), Role: domain.RoleDesigner}
	finance  = domain.Actor{ID: uuid.New(), Role: domain.RoleFinance}
)

type harness struct {
	repo    *mockSubjectRepo
	feed    *mockAuditFeed
	outbox  *mockOutboxRepo
	uow     *mockUnitOfWork
	locker  *locking.KeyedMutex
	metrics *observability.InMemoryMetrics
	engine  *domain.Engine
	m       *Mutator
	ctx     context.Context
	txCtx   context.Context
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:    new(mockSubjectRepo),
		feed:    new(mockAuditFeed),
		outbox:  new(mockOutboxRepo),
		uow:     new(mockUnitOfWork),
		locker:  locking.NewKeyedMutex(),
		metrics: observability.NewInMemoryMetrics(),
		ctx:     context.Background(),
	}
	h.txCtx = context.WithValue(h.ctx, txKey{}, "tx")
	h.engine = domain.NewEngine(nil, nil, domain.Options{Now: func() time.Time { return clockStart }})
	h.m = NewMutator(h.engine, h.repo, h.feed, h.outbox, h.uow, h.locker, nil, h.metrics)
	return h
}

// project returns a freshly created, already persisted project.
func (h *harness) project(t *testing.T) *domain.Subject {
	t.Helper()
	s, err := h.engine.CreateSubject(domain.CreateInput{
		Type:         domain.SubjectTypeProject,
		Title:        "Indiranagar apartment",
		AssigneeID:   designer.ID,
		ProjectValue: 500000,
	}, manager)
	require.NoError(t, err)
	s.ClearDomainEvents()
	s.ClearNewComments()
	return s
}

// expectCommit allows any number of calls against s; rejected calls roll back.
func (h *harness) expectCommit(s *domain.Subject) {
	h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
	h.uow.On("Commit", h.txCtx).Return(nil)
	h.uow.On("Rollback", h.txCtx).Return(nil).Maybe()
	h.repo.On("FindByID", h.txCtx, s.ID()).Return(s, nil)
	h.repo.On("Save", h.txCtx, s).Return(nil)
	h.feed.On("Append", h.txCtx, mock.AnythingOfType("[]domain.Comment")).Return(nil)
	h.outbox.On("SaveBatch", h.txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)
}

func (h *harness) expectRollback(s *domain.Subject) {
	h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
	h.uow.On("Rollback", h.txCtx).Return(nil)
	h.repo.On("FindByID", h.txCtx, s.ID()).Return(s, nil)
}

func (h *harness) assertAll(t *testing.T) {
	h.uow.AssertExpectations(t)
	h.repo.AssertExpectations(t)
	h.feed.AssertExpectations(t)
	h.outbox.AssertExpectations(t)
}

func TestTransitionStageHandler_Handle(t *testing.T) {
	t.Run("moves forward and returns snapshot with comment delta", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		h.expectCommit(s)

		correlation := uuid.New()
		var saved []*outbox.Message
		h.outbox.ExpectedCalls = nil
		h.outbox.On("SaveBatch", h.txCtx, mock.AnythingOfType("[]*outbox.Message")).
			Run(func(args mock.Arguments) { saved = args.Get(1).([]*outbox.Message) }).
			Return(nil)

		res, err := NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{
			Actor:         manager,
			CorrelationID: correlation,
			SubjectID:     s.ID(),
			Stage:         "site_measurement",
		})

		require.NoError(t, err)
		assert.Equal(t, "site_measurement", res.Snapshot.Stage)
		assert.Equal(t, 1, res.Snapshot.StageIndex)
		assert.Equal(t, 1, res.Snapshot.Version)
		assert.Equal(t, "kickoff", res.Transition.FromStage)
		require.Len(t, res.Comments, 1)
		assert.Equal(t, domain.CommentSystem, res.Comments[0].Kind)

		require.Len(t, saved, 1)
		assert.Equal(t, domain.RoutingKeyStageTransitioned, saved[0].RoutingKey)
		md := saved[0].EventMetadata()
		assert.Equal(t, correlation, md.CorrelationID)
		assert.Equal(t, manager.ID, md.UserID)

		assert.Empty(t, s.DomainEvents())
		assert.Empty(t, s.NewComments())
		assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricStageTransitions, observability.T("type", "project")))
		h.assertAll(t)
	})

	t.Run("rejects a rollback by a non-admin without writing", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		_, err := h.engine.TransitionStage(s, manager, "production")
		require.NoError(t, err)
		s.ClearDomainEvents()
		s.ClearNewComments()
		h.expectRollback(s)

		_, err = NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{
			Actor:     manager,
			SubjectID: s.ID(),
			Stage:     "design",
		})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Equal(t, "production", s.Stage())
		h.repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricRejections, observability.T("kind", string(domain.KindForbidden))))
		h.assertAll(t)
	})

	t.Run("admin rollback is recorded distinctly", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		_, err := h.engine.TransitionStage(s, manager, "production")
		require.NoError(t, err)
		s.ClearDomainEvents()
		s.ClearNewComments()
		h.expectCommit(s)

		res, err := NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{
			Actor:     admin,
			SubjectID: s.ID(),
			Stage:     "site_measurement",
		})

		require.NoError(t, err)
		assert.True(t, res.Transition.Rollback)
		assert.Contains(t, res.Comments[0].Body, "ROLLBACK")
		assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricStageRollbacks, observability.T("type", "project")))
	})

	t.Run("not found rolls back", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
		h.uow.On("Rollback", h.txCtx).Return(nil)
		h.repo.On("FindByID", h.txCtx, id).Return(nil, domain.ErrSubjectNotFound)

		_, err := NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{Actor: admin, SubjectID: id, Stage: "design"})

		assert.ErrorIs(t, err, domain.ErrSubjectNotFound)
		h.assertAll(t)
	})

	t.Run("version conflict surfaces as conflict", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
		h.uow.On("Rollback", h.txCtx).Return(nil)
		h.repo.On("FindByID", h.txCtx, s.ID()).Return(s, nil)
		h.repo.On("Save", h.txCtx, s).Return(domain.ErrConcurrentModification)

		_, err := NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{Actor: admin, SubjectID: s.ID(), Stage: "design"})

		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		h.feed.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		h.assertAll(t)
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
		h.uow.On("Rollback", h.txCtx).Return(nil)
		h.repo.On("FindByID", h.txCtx, s.ID()).Return(s, nil)
		h.repo.On("Save", h.txCtx, s).Return(nil)
		h.feed.On("Append", h.txCtx, mock.AnythingOfType("[]domain.Comment")).Return(nil)
		h.outbox.On("SaveBatch", h.txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(errors.New("disk full"))

		_, err := NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{Actor: admin, SubjectID: s.ID(), Stage: "design"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Equal(t, domain.ErrorKind(""), domain.KindOf(err))
		h.assertAll(t)
	})

	t.Run("lock wait honours the deadline", func(t *testing.T) {
		h := newHarness(t)
		id := uuid.New()
		unlock, err := h.locker.Lock(h.ctx, id)
		require.NoError(t, err)
		defer unlock()

		ctx, cancel := context.WithTimeout(h.ctx, 20*time.Millisecond)
		defer cancel()
		_, err = NewTransitionStageHandler(h.m).Handle(ctx, TransitionStageCommand{Actor: admin, SubjectID: id, Stage: "design"})

		assert.ErrorIs(t, err, locking.ErrLockTimeout)
		assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricLockTimeouts))
		h.uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("begin failure", func(t *testing.T) {
		h := newHarness(t)
		h.uow.On("Begin", mock.Anything).Return(nil, errors.New("database locked"))

		_, err := NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{Actor: admin, SubjectID: uuid.New(), Stage: "design"})

		assert.EqualError(t, err, "database locked")
		h.assertAll(t)
	})
}

func TestCreateSubjectHandler_Handle(t *testing.T) {
	t.Run("creates a project at its first stage", func(t *testing.T) {
		h := newHarness(t)
		h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
		h.uow.On("Commit", h.txCtx).Return(nil)
		h.repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Subject")).Return(nil)
		h.feed.On("Append", mock.Anything, mock.AnythingOfType("[]domain.Comment")).Return(nil)
		h.outbox.On("SaveBatch", mock.Anything, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		res, err := NewCreateSubjectHandler(h.m).Handle(h.ctx, CreateSubjectCommand{
			Actor:        manager,
			Type:         domain.SubjectTypeProject,
			Title:        "Whitefield villa",
			AssigneeID:   designer.ID,
			ProjectValue: 800000,
		})

		require.NoError(t, err)
		assert.Equal(t, "kickoff", res.Snapshot.Stage)
		assert.Equal(t, domain.HoldActive, res.Snapshot.HoldStatus)
		require.NotNil(t, res.Snapshot.Financials)
		assert.Equal(t, int64(800000), res.Snapshot.Financials.BalancePending)
		assert.Len(t, res.Comments, 1)
		assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricSubjectsCreated, observability.T("type", "project")))
		h.assertAll(t)
	})

	t.Run("rejects a designer creating a project", func(t *testing.T) {
		h := newHarness(t)
		h.uow.On("Begin", mock.Anything).Return(h.txCtx, nil)
		h.uow.On("Rollback", h.txCtx).Return(nil)

		_, err := NewCreateSubjectHandler(h.m).Handle(h.ctx, CreateSubjectCommand{
			Actor: designer,
			Type:  domain.SubjectTypeProject,
			Title: "x",
		})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		h.assertAll(t)
	})
}

func TestCompleteSubStageHandler_Handle(t *testing.T) {
	t.Run("completing the last sub-stage advances the stage", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		_, err := h.engine.CompleteSubStage(s, designer, "booking_amount_received")
		require.NoError(t, err)
		s.ClearDomainEvents()
		s.ClearNewComments()
		h.expectCommit(s)

		res, err := NewCompleteSubStageHandler(h.m).Handle(h.ctx, CompleteSubStageCommand{
			Actor:      designer,
			SubjectID:  s.ID(),
			SubStageID: "agreement_signed",
		})

		require.NoError(t, err)
		assert.True(t, res.SubStage.GroupCompleted)
		require.NotNil(t, res.SubStage.Advancement)
		assert.Equal(t, "site_measurement", res.Snapshot.Stage)
		assert.Len(t, res.Comments, 2)
		assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricSubStageCompletions, observability.T("type", "project")))
		h.assertAll(t)
	})

	t.Run("duplicate completion is rejected", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		_, err := h.engine.CompleteSubStage(s, designer, "booking_amount_received")
		require.NoError(t, err)
		h.expectRollback(s)

		_, err = NewCompleteSubStageHandler(h.m).Handle(h.ctx, CompleteSubStageCommand{
			Actor:      designer,
			SubjectID:  s.ID(),
			SubStageID: "booking_amount_received",
		})

		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
		h.assertAll(t)
	})
}

func TestUpdatePercentageHandler_Handle(t *testing.T) {
	h := newHarness(t)
	s := h.project(t)
	h.expectCommit(s)

	res, err := NewUpdatePercentageHandler(h.m).Handle(h.ctx, UpdatePercentageCommand{
		Actor:      designer,
		SubjectID:  s.ID(),
		SubStageID: "renders_progress",
		Percent:    40,
		Comment:    "living room done",
	})

	require.NoError(t, err)
	require.NotNil(t, res.SubStage.Percent)
	assert.Equal(t, 40, *res.SubStage.Percent)
	assert.False(t, res.SubStage.SubStageCompleted)
	assert.Equal(t, 40, res.Snapshot.Percentages["renders_progress"].Percent)
	h.assertAll(t)
}

func TestChangeHoldStatusHandler_Handle(t *testing.T) {
	t.Run("on hold blocks later mutations", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		h.expectCommit(s)

		res, err := NewChangeHoldStatusHandler(h.m).Handle(h.ctx, ChangeHoldStatusCommand{
			Actor:     designer,
			SubjectID: s.ID(),
			Status:    domain.HoldOnHold,
			Reason:    "client travelling",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.HoldOnHold, res.Snapshot.HoldStatus)
		assert.Equal(t, domain.HoldActive, res.Change.From)

		before, err := h.engine.Snapshot(s)
		require.NoError(t, err)

		_, err = NewTransitionStageHandler(h.m).Handle(h.ctx, TransitionStageCommand{Actor: admin, SubjectID: s.ID(), Stage: "design"})
		assert.ErrorIs(t, err, domain.ErrSubjectOnHold)

		after, err := h.engine.Snapshot(s)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("manager cannot reactivate", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		_, err := h.engine.ChangeHoldStatus(s, admin, domain.HoldDeactivated, "cancelled")
		require.NoError(t, err)
		h.expectRollback(s)

		_, err = NewChangeHoldStatusHandler(h.m).Handle(h.ctx, ChangeHoldStatusCommand{
			Actor:     manager,
			SubjectID: s.ID(),
			Status:    domain.HoldActive,
			Reason:    "back on",
		})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		h.assertAll(t)
	})
}

func TestPaymentHandlers(t *testing.T) {
	h := newHarness(t)
	s := h.project(t)
	h.expectCommit(s)

	recorded, err := NewRecordPaymentHandler(h.m).Handle(h.ctx, RecordPaymentCommand{
		Actor:     finance,
		SubjectID: s.ID(),
		Amount:    100000,
		Mode:      domain.PaymentModeBankTransfer,
		PaidOn:    clockStart,
		Reference: "UTR-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), recorded.Snapshot.Financials.TotalCollected)
	assert.Equal(t, int64(400000), recorded.Snapshot.Financials.BalancePending)

	_, err = NewDeletePaymentHandler(h.m).Handle(h.ctx, DeletePaymentCommand{
		Actor:     finance,
		SubjectID: s.ID(),
		PaymentID: recorded.Payment.ID,
		Reason:    "duplicate",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	deleted, err := NewDeletePaymentHandler(h.m).Handle(h.ctx, DeletePaymentCommand{
		Actor:     admin,
		SubjectID: s.ID(),
		PaymentID: recorded.Payment.ID,
		Reason:    "duplicate",
	})
	require.NoError(t, err)
	assert.Equal(t, recorded.Payment.ID, deleted.Payment.ID)
	assert.Zero(t, deleted.Snapshot.Financials.TotalCollected)
	assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricPaymentsRecorded))
	assert.Equal(t, int64(1), h.metrics.GetCounter(observability.MetricPaymentsDeleted))
}

func TestFinancialHandlers(t *testing.T) {
	h := newHarness(t)
	s := h.project(t)
	h.expectCommit(s)

	valued, err := NewUpdateProjectValueHandler(h.m).Handle(h.ctx, UpdateProjectValueCommand{
		Actor:     manager,
		SubjectID: s.ID(),
		Value:     600000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(600000), valued.Snapshot.Schedule.ProjectValue)

	custom, err := NewConfigureScheduleHandler(h.m).Handle(h.ctx, ConfigureScheduleCommand{
		Actor:     manager,
		SubjectID: s.ID(),
		Custom:    true,
		Definitions: []domain.ScheduleDefinition{
			{Label: "Advance", Type: domain.EntryFixed, FixedAmount: 100000},
			{Label: "Rest", Type: domain.EntryRemaining},
		},
	})
	require.NoError(t, err)
	assert.True(t, custom.Snapshot.CustomSchedule)
	require.Len(t, custom.Snapshot.Schedule.Entries, 2)
	assert.Equal(t, int64(500000), custom.Snapshot.Schedule.Entries[1].Amount)

	_, err = NewConfigureScheduleHandler(h.m).Handle(h.ctx, ConfigureScheduleCommand{
		Actor:     manager,
		SubjectID: s.ID(),
		Custom:    true,
		Definitions: []domain.ScheduleDefinition{
			{Label: "a", Type: domain.EntryRemaining},
			{Label: "b", Type: domain.EntryRemaining},
		},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestSetExpectedDateHandler_Handle(t *testing.T) {
	h := newHarness(t)
	s := h.project(t)
	h.expectCommit(s)
	due := clockStart.AddDate(0, 2, 0)

	res, err := NewSetExpectedDateHandler(h.m).Handle(h.ctx, SetExpectedDateCommand{
		Actor:        designer,
		SubjectID:    s.ID(),
		Stage:        "production",
		ExpectedDate: &due,
	})

	require.NoError(t, err)
	var found bool
	for _, entry := range res.Snapshot.Timeline {
		if entry.StageKey == "production" {
			found = true
			require.NotNil(t, entry.ExpectedDate)
			assert.True(t, due.Equal(*entry.ExpectedDate))
		}
	}
	assert.True(t, found)
}

func TestAddCommentHandler_Handle(t *testing.T) {
	t.Run("allowed on a held subject", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		_, err := h.engine.ChangeHoldStatus(s, manager, domain.HoldOnHold, "budget review")
		require.NoError(t, err)
		s.ClearDomainEvents()
		s.ClearNewComments()
		h.expectCommit(s)

		res, err := NewAddCommentHandler(h.m).Handle(h.ctx, AddCommentCommand{
			Actor:     designer,
			SubjectID: s.ID(),
			Body:      "Client asked to pause until April",
		})

		require.NoError(t, err)
		require.Len(t, res.Comments, 1)
		assert.Equal(t, domain.CommentUser, res.Comments[0].Kind)
		assert.Equal(t, designer.ID, res.Comments[0].AuthorID)
	})

	t.Run("empty body", func(t *testing.T) {
		h := newHarness(t)
		s := h.project(t)
		h.expectRollback(s)

		_, err := NewAddCommentHandler(h.m).Handle(h.ctx, AddCommentCommand{Actor: designer, SubjectID: s.ID(), Body: "  "})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		h.assertAll(t)
	})
}
