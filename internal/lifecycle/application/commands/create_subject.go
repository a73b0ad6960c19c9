package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	sharedApplication "github.com/felixgeelhaar/atelier/internal/shared/application"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// CreateSubjectCommand contains the data needed to open a lead or project.
type CreateSubjectCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	Type          domain.SubjectType
	Title         string
	AssigneeID    uuid.UUID
	ProjectValue  int64
}

// CreateSubjectHandler handles the CreateSubjectCommand.
type CreateSubjectHandler struct {
	m *Mutator
}

// NewCreateSubjectHandler creates a new CreateSubjectHandler.
func NewCreateSubjectHandler(m *Mutator) *CreateSubjectHandler {
	return &CreateSubjectHandler{m: m}
}

// Handle executes the CreateSubjectCommand. A new subject has no lock to
// contend on, so only the transaction is used.
func (h *CreateSubjectHandler) Handle(ctx context.Context, cmd CreateSubjectCommand) (Result, error) {
	const op = "create_subject"
	ctx = scope(ctx, uuid.Nil, cmd.Actor)
	timer := observability.StartTimer(op).WithMetrics(h.m.metrics)

	var result Result
	err := sharedApplication.WithUnitOfWork(ctx, h.m.uow, func(txCtx context.Context) error {
		s, err := h.m.engine.CreateSubject(domain.CreateInput{
			Type:         cmd.Type,
			Title:        cmd.Title,
			AssigneeID:   cmd.AssigneeID,
			ProjectValue: cmd.ProjectValue,
		}, cmd.Actor)
		if err != nil {
			return err
		}
		result, err = h.m.persist(observability.WithSubjectID(txCtx, s.ID().String()), s, cmd.Actor, cmd.CorrelationID)
		return err
	})
	h.m.finish(ctx, op, timer, err)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}
