package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// UpdatePercentageCommand sets the progress of a percentage sub-stage.
type UpdatePercentageCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	SubStageID    string
	Percent       int
	Comment       string
}

// UpdatePercentageHandler handles the UpdatePercentageCommand.
type UpdatePercentageHandler struct {
	m *Mutator
}

// NewUpdatePercentageHandler creates a new UpdatePercentageHandler.
func NewUpdatePercentageHandler(m *Mutator) *UpdatePercentageHandler {
	return &UpdatePercentageHandler{m: m}
}

// Handle executes the UpdatePercentageCommand.
func (h *UpdatePercentageHandler) Handle(ctx context.Context, cmd UpdatePercentageCommand) (*SubStageResult, error) {
	var out domain.SubStageResult
	res, err := h.m.apply(ctx, "update_percentage", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		var err error
		out, err = h.m.engine.UpdatePercentage(s, cmd.Actor, cmd.SubStageID, cmd.Percent, cmd.Comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &SubStageResult{Result: res, SubStage: out}, nil
}
