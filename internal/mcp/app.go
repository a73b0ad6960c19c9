package mcp

import (
	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/app"
)

// NewCLIApp creates a CLI application instance backed by the provided container.
func NewCLIApp(container *app.Container) (*cli.App, error) {
	actor, err := container.Actor()
	if err != nil {
		return nil, err
	}
	return &cli.App{
		CreateSubjectHandler:      container.CreateSubjectHandler,
		TransitionStageHandler:    container.TransitionStageHandler,
		CompleteSubStageHandler:   container.CompleteSubStageHandler,
		UpdatePercentageHandler:   container.UpdatePercentageHandler,
		ChangeHoldStatusHandler:   container.ChangeHoldStatusHandler,
		RecordPaymentHandler:      container.RecordPaymentHandler,
		DeletePaymentHandler:      container.DeletePaymentHandler,
		UpdateProjectValueHandler: container.UpdateProjectValueHandler,
		ConfigureScheduleHandler:  container.ConfigureScheduleHandler,
		SetExpectedDateHandler:    container.SetExpectedDateHandler,
		AddCommentHandler:         container.AddCommentHandler,
		GetSnapshotHandler:        container.GetSnapshotHandler,
		GetTimelineHandler:        container.GetTimelineHandler,
		GetFinancialsHandler:      container.GetFinancialsHandler,
		ListSubjectsHandler:       container.ListSubjectsHandler,
		ListAuditFeedHandler:      container.ListAuditFeedHandler,
		Catalog:                   container.Catalog,
		Health:                    container.Health,
		DefaultActor:              actor,
	}, nil
}
