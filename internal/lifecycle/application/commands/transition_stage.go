package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// TransitionStageCommand moves a subject to another stage of its catalog.
type TransitionStageCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Stage         string
}

// TransitionStageResult carries the accepted move.
type TransitionStageResult struct {
	Result
	Transition domain.Transition `json:"transition"`
}

// TransitionStageHandler handles the TransitionStageCommand.
type TransitionStageHandler struct {
	m *Mutator
}

// NewTransitionStageHandler creates a new TransitionStageHandler.
func NewTransitionStageHandler(m *Mutator) *TransitionStageHandler {
	return &TransitionStageHandler{m: m}
}

// Handle executes the TransitionStageCommand.
func (h *TransitionStageHandler) Handle(ctx context.Context, cmd TransitionStageCommand) (*TransitionStageResult, error) {
	var t domain.Transition
	res, err := h.m.apply(ctx, "transition_stage", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		var err error
		t, err = h.m.engine.TransitionStage(s, cmd.Actor, cmd.Stage)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &TransitionStageResult{Result: res, Transition: t}, nil
}
