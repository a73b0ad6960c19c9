package mcp

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/mcp-go"
	"github.com/google/uuid"
)

type createInput struct {
	actorInput
	Type         string `json:"type" jsonschema:"required"`
	Title        string `json:"title" jsonschema:"required"`
	AssigneeID   string `json:"assignee_id,omitempty"`
	ProjectValue int64  `json:"project_value,omitempty"`
}

type listInput struct {
	Type        string   `json:"type,omitempty"`
	Stages      []string `json:"stages,omitempty"`
	HoldStatus  []string `json:"hold_status,omitempty"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	DelayedOnly bool     `json:"delayed_only,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}

type subjectInput struct {
	SubjectID string `json:"subject_id" jsonschema:"required"`
}

type transitionInput struct {
	actorInput
	SubjectID string `json:"subject_id" jsonschema:"required"`
	Stage     string `json:"stage" jsonschema:"required"`
}

type subStageInput struct {
	actorInput
	SubjectID  string `json:"subject_id" jsonschema:"required"`
	SubStageID string `json:"sub_stage_id" jsonschema:"required"`
}

type progressInput struct {
	actorInput
	SubjectID  string `json:"subject_id" jsonschema:"required"`
	SubStageID string `json:"sub_stage_id" jsonschema:"required"`
	Percent    int    `json:"percent"`
	Comment    string `json:"comment" jsonschema:"required"`
}

type holdInput struct {
	actorInput
	SubjectID string `json:"subject_id" jsonschema:"required"`
	Status    string `json:"status" jsonschema:"required"`
	Reason    string `json:"reason" jsonschema:"required"`
}

type planInput struct {
	actorInput
	SubjectID    string `json:"subject_id" jsonschema:"required"`
	Stage        string `json:"stage" jsonschema:"required"`
	ExpectedDate string `json:"expected_date,omitempty"`
}

type timelineInput struct {
	SubjectID   string `json:"subject_id" jsonschema:"required"`
	WithHistory bool   `json:"with_history,omitempty"`
}

type commentInput struct {
	actorInput
	SubjectID string `json:"subject_id" jsonschema:"required"`
	Body      string `json:"body" jsonschema:"required"`
}

type commentsInput struct {
	SubjectID string `json:"subject_id" jsonschema:"required"`
	Kind      string `json:"kind,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type catalogInput struct {
	Type string `json:"type" jsonschema:"required"`
}

// lifecycleTools holds the tool handlers so they can be exercised without a
// transport.
type lifecycleTools struct {
	app *cli.App
}

func registerLifecycleTools(srv *mcp.Server, deps ToolDependencies) error {
	t := lifecycleTools{app: deps.App}

	srv.Tool("lifecycle.create").
		Description("Create a lead or project at the first stage of its pipeline. type is lead or project; projects take project_value.").
		Handler(t.create)
	srv.Tool("lifecycle.list").
		Description("List leads and projects, most recently updated first. Filter by type, stages, hold_status, assignee_id or delayed_only.").
		Handler(t.list)
	srv.Tool("lifecycle.get").
		Description("Get the full snapshot of a subject: stage, milestone groups, projected timeline and financials.").
		Handler(t.get)
	srv.Tool("lifecycle.transition").
		Description("Move a subject to a stage. Forward moves may skip stages; moving back is an admin-only rollback.").
		Handler(t.transition)
	srv.Tool("lifecycle.substage_complete").
		Description("Mark a binary milestone complete. Completing the last milestone of the current stage advances the subject.").
		Handler(t.completeSubStage)
	srv.Tool("lifecycle.substage_progress").
		Description("Set the progress (0-100) of a percentage milestone with a required comment. 100 completes it.").
		Handler(t.progress)
	srv.Tool("lifecycle.hold").
		Description("Change hold status to active, hold or deactivated. A reason is required.").
		Handler(t.hold)
	srv.Tool("lifecycle.plan").
		Description("Set a stage's expected completion date (YYYY-MM-DD), or clear it by omitting expected_date.").
		Handler(t.plan)
	srv.Tool("lifecycle.timeline").
		Description("Get one row per stage with pending, current, completed or delayed status.").
		Handler(t.timeline)
	srv.Tool("lifecycle.comment").
		Description("Add a user comment to a subject's audit feed.").
		Handler(t.comment)
	srv.Tool("lifecycle.comments").
		Description("Read a subject's audit feed, oldest first. kind filters system or user comments.").
		Handler(t.comments)
	srv.Tool("catalog.stages").
		Description("List the stages and milestones of the lead or project pipeline.").
		Handler(t.stages)

	return nil
}

func (t lifecycleTools) create(ctx context.Context, input createInput) (*commands.Result, error) {
	if t.app.CreateSubjectHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	subjectType, err := domain.ParseSubjectType(input.Type)
	if err != nil {
		return nil, err
	}
	assignee, err := parseOptionalUUID(input.AssigneeID)
	if err != nil {
		return nil, err
	}
	result, err := t.app.CreateSubjectHandler.Handle(ctx, commands.CreateSubjectCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		Type:          subjectType,
		Title:         input.Title,
		AssigneeID:    assignee,
		ProjectValue:  input.ProjectValue,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (t lifecycleTools) list(ctx context.Context, input listInput) ([]queries.SubjectListItemDTO, error) {
	if t.app.ListSubjectsHandler == nil {
		return nil, errNoDatabase
	}
	assignee, err := parseOptionalUUID(input.AssigneeID)
	if err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	return t.app.ListSubjectsHandler.Handle(ctx, queries.ListSubjectsQuery{
		Type:        input.Type,
		Stages:      input.Stages,
		HoldStatus:  input.HoldStatus,
		AssigneeID:  assignee,
		DelayedOnly: input.DelayedOnly,
		Limit:       limit,
		Offset:      input.Offset,
	})
}

func (t lifecycleTools) get(ctx context.Context, input subjectInput) (*domain.Snapshot, error) {
	if t.app.GetSnapshotHandler == nil {
		return nil, errNoDatabase
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.GetSnapshotHandler.Handle(ctx, queries.GetSnapshotQuery{SubjectID: id})
}

func (t lifecycleTools) transition(ctx context.Context, input transitionInput) (*commands.TransitionStageResult, error) {
	if t.app.TransitionStageHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.TransitionStageHandler.Handle(ctx, commands.TransitionStageCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Stage:         input.Stage,
	})
}

func (t lifecycleTools) completeSubStage(ctx context.Context, input subStageInput) (*commands.SubStageResult, error) {
	if t.app.CompleteSubStageHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.CompleteSubStageHandler.Handle(ctx, commands.CompleteSubStageCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		SubStageID:    input.SubStageID,
	})
}

func (t lifecycleTools) progress(ctx context.Context, input progressInput) (*commands.SubStageResult, error) {
	if t.app.UpdatePercentageHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.UpdatePercentageHandler.Handle(ctx, commands.UpdatePercentageCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		SubStageID:    input.SubStageID,
		Percent:       input.Percent,
		Comment:       input.Comment,
	})
}

func (t lifecycleTools) hold(ctx context.Context, input holdInput) (*commands.ChangeHoldStatusResult, error) {
	if t.app.ChangeHoldStatusHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParseHoldStatus(input.Status)
	if err != nil {
		return nil, err
	}
	return t.app.ChangeHoldStatusHandler.Handle(ctx, commands.ChangeHoldStatusCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Status:        status,
		Reason:        input.Reason,
	})
}

func (t lifecycleTools) plan(ctx context.Context, input planInput) (*commands.Result, error) {
	if t.app.SetExpectedDateHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	cmd := commands.SetExpectedDateCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Stage:         input.Stage,
	}
	if strings.TrimSpace(input.ExpectedDate) != "" {
		d, err := parseDate(input.ExpectedDate)
		if err != nil {
			return nil, err
		}
		cmd.ExpectedDate = &d
	}
	return t.app.SetExpectedDateHandler.Handle(ctx, cmd)
}

func (t lifecycleTools) timeline(ctx context.Context, input timelineInput) (*queries.TimelineDTO, error) {
	if t.app.GetTimelineHandler == nil {
		return nil, errNoDatabase
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.GetTimelineHandler.Handle(ctx, queries.GetTimelineQuery{SubjectID: id, WithHistory: input.WithHistory})
}

func (t lifecycleTools) comment(ctx context.Context, input commentInput) (*commands.Result, error) {
	if t.app.AddCommentHandler == nil {
		return nil, errNoDatabase
	}
	actor, err := input.resolve(t.app)
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.AddCommentHandler.Handle(ctx, commands.AddCommentCommand{
		Actor:         actor,
		CorrelationID: uuid.New(),
		SubjectID:     id,
		Body:          input.Body,
	})
}

func (t lifecycleTools) comments(ctx context.Context, input commentsInput) ([]domain.Comment, error) {
	if t.app.ListAuditFeedHandler == nil {
		return nil, errNoDatabase
	}
	id, err := parseUUID(input.SubjectID)
	if err != nil {
		return nil, err
	}
	return t.app.ListAuditFeedHandler.Handle(ctx, queries.ListAuditFeedQuery{
		SubjectID: id,
		Limit:     input.Limit,
		Kind:      domain.CommentKind(input.Kind),
	})
}

func (t lifecycleTools) stages(_ context.Context, input catalogInput) ([]domain.StageDefinition, error) {
	if t.app.Catalog == nil {
		return nil, errNoDatabase
	}
	subjectType, err := domain.ParseSubjectType(input.Type)
	if err != nil {
		return nil, err
	}
	return t.app.Catalog.StagesFor(subjectType)
}
