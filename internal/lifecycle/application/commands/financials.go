package commands

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

// UpdateProjectValueCommand changes a project's contract value.
type UpdateProjectValueCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Value         int64
}

// UpdateProjectValueHandler handles the UpdateProjectValueCommand.
type UpdateProjectValueHandler struct {
	m *Mutator
}

// NewUpdateProjectValueHandler creates a new UpdateProjectValueHandler.
func NewUpdateProjectValueHandler(m *Mutator) *UpdateProjectValueHandler {
	return &UpdateProjectValueHandler{m: m}
}

// Handle executes the UpdateProjectValueCommand.
func (h *UpdateProjectValueHandler) Handle(ctx context.Context, cmd UpdateProjectValueCommand) (*Result, error) {
	res, err := h.m.apply(ctx, "update_project_value", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		return h.m.engine.UpdateProjectValue(s, cmd.Actor, cmd.Value)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ConfigureScheduleCommand switches a project between the template schedule
// and a custom one. Nil Definitions with Custom set reuses the stored custom
// schedule.
type ConfigureScheduleCommand struct {
	Actor         domain.Actor
	CorrelationID uuid.UUID
	SubjectID     uuid.UUID
	Custom        bool
	Definitions   []domain.ScheduleDefinition
}

// ConfigureScheduleHandler handles the ConfigureScheduleCommand.
type ConfigureScheduleHandler struct {
	m *Mutator
}

// NewConfigureScheduleHandler creates a new ConfigureScheduleHandler.
func NewConfigureScheduleHandler(m *Mutator) *ConfigureScheduleHandler {
	return &ConfigureScheduleHandler{m: m}
}

// Handle executes the ConfigureScheduleCommand.
func (h *ConfigureScheduleHandler) Handle(ctx context.Context, cmd ConfigureScheduleCommand) (*Result, error) {
	res, err := h.m.apply(ctx, "configure_schedule", cmd.SubjectID, cmd.Actor, cmd.CorrelationID, func(s *domain.Subject) error {
		return h.m.engine.ConfigureSchedule(s, cmd.Actor, cmd.Custom, cmd.Definitions)
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
