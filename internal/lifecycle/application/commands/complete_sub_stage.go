package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// CompleteSubStageCommand marks a binary sub-stage done.
type CompleteSubStageCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	SubStageID    string
}

// SubStageResult carries the sub-stage outcome, including any automatic
// stage advancement.
type SubStageResult struct {
	Result
	SubStage domain.SubStageResult `json:"sub_stage"`
}

// CompleteSubStageHandler handles the CompleteSubStageCommand.
type CompleteSubStageHandler struct {
	m *Mutator
}

// NewCompleteSubStageHandler creates a new CompleteSubStageHandler.
func NewCompleteSubStageHandler(m *Mutator) *CompleteSubStageHandler {
	return &CompleteSubStageHandler{m: m}
}

// Handle executes the CompleteSubStageCommand.
func (h *CompleteSubStageHandler) Handle(ctx context.Context, cmd CompleteSubStageCommand) (*SubStageResult, error) {
	var out domain.SubStageResult
	res, err := h.m.apply(ctx, "complete_sub_stage", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		var err error
		out, err = h.m.engine.CompleteSubStage(s, cmd.Actor, cmd.SubStageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out.AdvancementBlocked {
		h.m.logger.InfoContext(scope(ctx, cmd.SubjectID, cmd.Actor), "stage advancement needs an authorized user",
			"sub_stage", cmd.SubStageID)
	}
	return &SubStageResult{Result: res, SubStage: out}, nil
}
