package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// ChangeHoldStatusCommand puts a subject on hold, resumes or deactivates it.
type ChangeHoldStatusCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Status        domain.HoldStatus
	Reason        string
}

// ChangeHoldStatusResult carries the accepted hold change.
type ChangeHoldStatusResult struct {
	Result
	Change domain.HoldChange `json:"change"`
}

// ChangeHoldStatusHandler handles the ChangeHoldStatusCommand.
type ChangeHoldStatusHandler struct {
	m *Mutator
}

// NewChangeHoldStatusHandler creates a new ChangeHoldStatusHandler.
func NewChangeHoldStatusHandler(m *Mutator) *ChangeHoldStatusHandler {
	return &ChangeHoldStatusHandler{m: m}
}

// Handle executes the ChangeHoldStatusCommand.
func (h *ChangeHoldStatusHandler) Handle(ctx context.Context, cmd ChangeHoldStatusCommand) (*ChangeHoldStatusResult, error) {
	var change domain.HoldChange
	res, err := h.m.apply(ctx, "change_hold_status", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		var err error
		change, err = h.m.engine.ChangeHoldStatus(s, cmd.Actor, cmd.Status, cmd.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ChangeHoldStatusResult{Result: res, Change: change}, nil
}
