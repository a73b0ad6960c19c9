package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// SetExpectedDateCommand plans a stage's completion date. A nil date clears it.
type SetExpectedDateCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Stage         string
	ExpectedDate  *time.Time
}

// SetExpectedDateHandler handles the SetExpectedDateCommand.
type SetExpectedDateHandler struct {
	m *Mutator
}

// NewSetExpectedDateHandler creates a new SetExpectedDateHandler.
func NewSetExpectedDateHandler(m *Mutator) *SetExpectedDateHandler {
	return &SetExpectedDateHandler{m: m}
}

// Handle executes the SetExpectedDateCommand.
func (h *SetExpectedDateHandler) Handle(ctx context.Context, cmd SetExpectedDateCommand) (*Result, error) {
	res, err := h.m.apply(ctx, "set_expected_date", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		return h.m.engine.SetExpectedDate(s, cmd.Actor, cmd.Stage, cmd.ExpectedDate)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
