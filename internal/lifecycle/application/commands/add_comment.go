package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// AddCommentCommand posts a user comment to a subject's audit feed.
type AddCommentCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Body          string
}

// AddCommentHandler handles the AddCommentCommand.
type AddCommentHandler struct {
	m *Mutator
}

// NewAddCommentHandler creates a new AddCommentHandler.
func NewAddCommentHandler(m *Mutator) *AddCommentHandler {
	return &AddCommentHandler{m: m}
}

// Handle executes the AddCommentCommand.
func (h *AddCommentHandler) Handle(ctx context.Context, cmd AddCommentCommand) (*Result, error) {
	res, err := h.m.apply(ctx, "add_comment", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		_, err := h.m.engine.AddComment(s, cmd.Actor, cmd.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
