package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/atelier/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	RoutingKeySubjectCreated      = "lifecycle.subject.created"
	RoutingKeyStageTransitioned   = "lifecycle.stage.transitioned"
	RoutingKeyStageRolledBack     = "lifecycle.stage.rolled_back"
	RoutingKeySubStageCompleted   = "lifecycle.substage.completed"
	RoutingKeySubStageProgressed  = "lifecycle.substage.progressed"
	RoutingKeyHoldStatusChanged   = "lifecycle.hold.changed"
	RoutingKeyPaymentRecorded     = "lifecycle.payment.recorded"
	RoutingKeyPaymentDeleted      = "lifecycle.payment.deleted"
	RoutingKeyFinancialsUpdated   = "lifecycle.financials.updated"
	RoutingKeyPlanUpdated         = "lifecycle.plan.updated"
	RoutingKeyCommentAdded        = "lifecycle.comment.added"
	RoutingKeyLeadReadyForConvert = "lifecycle.lead.ready_for_conversion"
)

// SubjectCreated is emitted when a lead or project enters the engine.
type SubjectCreated struct {
	sharedDomain.BaseEvent
	SubjectType SubjectType `json:"subject_type"`
	Title       string      `json:"title"`
	Stage       string      `json:"stage"`
	AssigneeID  uuid.UUID   `json:"assignee_id"`
	CreatedBy   uuid.UUID   `json:"created_by"`
}

// NewSubjectCreated creates a SubjectCreated event.
func NewSubjectCreated(s *Subject, actor Actor, at time.Time) *SubjectCreated {
	return &SubjectCreated{
		BaseEvent:   sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeySubjectCreated, at),
		SubjectType: s.subjectType,
		Title:       s.title,
		Stage:       s.stage,
		AssigneeID:  s.assigneeID,
		CreatedBy:   actor.ID,
	}
}

// StageTransitioned is emitted for forward moves, manual or sub-stage driven.
type StageTransitioned struct {
	sharedDomain.BaseEvent
	SubjectType   SubjectType `json:"subject_type"`
	FromStage     string      `json:"from_stage"`
	ToStage       string      `json:"to_stage"`
	SkippedStages []string    `json:"skipped_stages,omitempty"`
	Automatic     bool        `json:"automatic"`
	ActorID       uuid.UUID   `json:"actor_id"`
	ActorRole     Role        `json:"actor_role"`
}

// NewStageTransitioned creates a StageTransitioned event.
func NewStageTransitioned(s *Subject, actor Actor, t Transition) *StageTransitioned {
	return &StageTransitioned{
		BaseEvent:     sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyStageTransitioned, t.At),
		SubjectType:   s.subjectType,
		FromStage:     t.FromStage,
		ToStage:       t.ToStage,
		SkippedStages: t.SkippedStages,
		Automatic:     t.Automatic,
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
	}
}

// StageRolledBack is emitted when an admin moves a subject backwards.
type StageRolledBack struct {
	sharedDomain.BaseEvent
	SubjectType SubjectType `json:"subject_type"`
	FromStage   string      `json:"from_stage"`
	ToStage     string      `json:"to_stage"`
	ActorID     uuid.UUID   `json:"actor_id"`
}

// NewStageRolledBack creates a StageRolledBack event.
func NewStageRolledBack(s *Subject, actor Actor, t Transition) *StageRolledBack {
	return &StageRolledBack{
		BaseEvent:   sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyStageRolledBack, t.At),
		SubjectType: s.subjectType,
		FromStage:   t.FromStage,
		ToStage:     t.ToStage,
		ActorID:     actor.ID,
	}
}

// SubStageCompleted is emitted when a sub-stage reaches completion.
type SubStageCompleted struct {
	sharedDomain.BaseEvent
	SubStageID     string    `json:"sub_stage_id"`
	StageKey       string    `json:"stage"`
	GroupCompleted bool      `json:"group_completed"`
	AutoCompleted  bool      `json:"auto_completed"`
	ActorID        uuid.UUID `json:"actor_id"`
}

// NewSubStageCompleted creates a SubStageCompleted event.
func NewSubStageCompleted(s *Subject, actor Actor, ref SubStageRef, groupCompleted, auto bool, at time.Time) *SubStageCompleted {
	return &SubStageCompleted{
		BaseEvent:      sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeySubStageCompleted, at),
		SubStageID:     ref.Definition.ID,
		StageKey:       ref.StageKey,
		GroupCompleted: groupCompleted,
		AutoCompleted:  auto,
		ActorID:        actor.ID,
	}
}

// SubStageProgressed is emitted for every percentage update.
type SubStageProgressed struct {
	sharedDomain.BaseEvent
	SubStageID string    `json:"sub_stage_id"`
	Percent    int       `json:"percent"`
	Comment    string    `json:"comment"`
	ActorID    uuid.UUID `json:"actor_id"`
}

// NewSubStageProgressed creates a SubStageProgressed event.
func NewSubStageProgressed(s *Subject, actor Actor, id string, progress PercentageProgress) *SubStageProgressed {
	return &SubStageProgressed{
		BaseEvent:  sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeySubStageProgressed, progress.UpdatedAt),
		SubStageID: id,
		Percent:    progress.Percent,
		Comment:    progress.LastComment,
		ActorID:    actor.ID,
	}
}

// HoldStatusChanged is emitted for every hold-status transition.
type HoldStatusChanged struct {
	sharedDomain.BaseEvent
	From         HoldStatus `json:"from"`
	To           HoldStatus `json:"to"`
	Reason       string     `json:"reason"`
	Reactivation bool       `json:"reactivation"`
	ActorID      uuid.UUID  `json:"actor_id"`
}

// NewHoldStatusChanged creates a HoldStatusChanged event.
func NewHoldStatusChanged(s *Subject, actor Actor, change HoldChange, at time.Time) *HoldStatusChanged {
	return &HoldStatusChanged{
		BaseEvent:    sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyHoldStatusChanged, at),
		From:         change.From,
		To:           change.To,
		Reason:       change.Reason,
		Reactivation: change.Reactivation,
		ActorID:      actor.ID,
	}
}

// PaymentRecorded is emitted when a payment enters the ledger.
type PaymentRecorded struct {
	sharedDomain.BaseEvent
	PaymentID uuid.UUID   `json:"payment_id"`
	Amount    int64       `json:"amount"`
	Mode      PaymentMode `json:"mode"`
	PaidOn    time.Time   `json:"paid_on"`
}

// NewPaymentRecorded creates a PaymentRecorded event.
func NewPaymentRecorded(s *Subject, p Payment) *PaymentRecorded {
	return &PaymentRecorded{
		BaseEvent: sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyPaymentRecorded, p.RecordedAt),
		PaymentID: p.ID,
		Amount:    p.Amount,
		Mode:      p.Mode,
		PaidOn:    p.PaidOn,
	}
}

// PaymentDeleted is emitted when an admin removes a ledger record.
type PaymentDeleted struct {
	sharedDomain.BaseEvent
	PaymentID uuid.UUID `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewPaymentDeleted creates a PaymentDeleted event.
func NewPaymentDeleted(s *Subject, actor Actor, p Payment, reason string, at time.Time) *PaymentDeleted {
	return &PaymentDeleted{
		BaseEvent: sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyPaymentDeleted, at),
		PaymentID: p.ID,
		Amount:    p.Amount,
		Reason:    reason,
		ActorID:   actor.ID,
	}
}

// FinancialsUpdated is emitted when the project value or schedule changes.
type FinancialsUpdated struct {
	sharedDomain.BaseEvent
	ProjectValue   int64     `json:"project_value"`
	CustomSchedule bool      `json:"custom_schedule"`
	ActorID        uuid.UUID `json:"actor_id"`
}

// NewFinancialsUpdated creates a FinancialsUpdated event.
func NewFinancialsUpdated(s *Subject, actor Actor, at time.Time) *FinancialsUpdated {
	return &FinancialsUpdated{
		BaseEvent:      sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyFinancialsUpdated, at),
		ProjectValue:   s.projectValue,
		CustomSchedule: s.customSchedule,
		ActorID:        actor.ID,
	}
}

// PlanUpdated is emitted when a stage's expected date changes.
type PlanUpdated struct {
	sharedDomain.BaseEvent
	StageKey     string     `json:"stage"`
	ExpectedDate *time.Time `json:"expected_date,omitempty"`
	ActorID      uuid.UUID  `json:"actor_id"`
}

// NewPlanUpdated creates a PlanUpdated event.
func NewPlanUpdated(s *Subject, actor Actor, stageKey string, expected *time.Time, at time.Time) *PlanUpdated {
	return &PlanUpdated{
		BaseEvent:    sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyPlanUpdated, at),
		StageKey:     stageKey,
		ExpectedDate: expected,
		ActorID:      actor.ID,
	}
}

// CommentAdded is emitted for user comments.
type CommentAdded struct {
	sharedDomain.BaseEvent
	CommentID uuid.UUID `json:"comment_id"`
	AuthorID  uuid.UUID `json:"author_id"`
}

// NewCommentAdded creates a CommentAdded event.
func NewCommentAdded(s *Subject, c Comment) *CommentAdded {
	return &CommentAdded{
		BaseEvent: sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyCommentAdded, c.CreatedAt),
		CommentID: c.ID,
		AuthorID:  c.AuthorID,
	}
}

// LeadReadyForConversion is emitted when a lead reaches its terminal stage.
type LeadReadyForConversion struct {
	sharedDomain.BaseEvent
	Title      string    `json:"title"`
	AssigneeID uuid.UUID `json:"assignee_id"`
}

// NewLeadReadyForConversion creates a LeadReadyForConversion event.
func NewLeadReadyForConversion(s *Subject, at time.Time) *LeadReadyForConversion {
	return &LeadReadyForConversion{
		BaseEvent:  sharedDomain.NewBaseEventAt(s.ID(), AggregateType, RoutingKeyLeadReadyForConvert, at),
		Title:      s.title,
		AssigneeID: s.assigneeID,
	}
}
