package domain

import (
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/atelier/internal/shared/domain"
	"github.com/google/uuid"
)

// SkipPolicy controls whether manual forward skips must have the skipped
// stages' sub-stage groups satisfied.
type SkipPolicy string

const (
	// SkipAllow lets authorized roles jump ahead freely.
	SkipAllow SkipPolicy = "allow"
	// SkipRequireGroups rejects a skip over a stage with incomplete groups.
	SkipRequireGroups SkipPolicy = "require-groups"
)

// ParseSkipPolicy parses a string into a SkipPolicy, defaulting to SkipAllow.
func ParseSkipPolicy(s string) (SkipPolicy, error) {
	switch SkipPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", SkipAllow:
		return SkipAllow, nil
	case SkipRequireGroups:
		return SkipRequireGroups, nil
	default:
		return "", invalidInput("unknown skip policy %q", s)
	}
}

// Options tunes engine behaviour.
type Options struct {
	SkipPolicy SkipPolicy
	Now        func() time.Time
}

// Engine applies lifecycle rules to in-memory subjects. It never touches
// storage; callers load and save subjects around each call.
type Engine struct {
	catalog    *StageCatalog
	policy     PermissionPolicy
	skipPolicy SkipPolicy
	now        func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(catalog *StageCatalog, policy PermissionPolicy, opts Options) *Engine {
	if catalog == nil {
		catalog = DefaultStageCatalog()
	}
	if policy == nil {
		policy = NewRolePolicy()
	}
	if opts.SkipPolicy == "" {
		opts.SkipPolicy = SkipAllow
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		catalog:    catalog,
		policy:     policy,
		skipPolicy: opts.SkipPolicy,
		now:        opts.Now,
	}
}

// Catalog returns the stage catalog the engine runs against.
func (e *Engine) Catalog() *StageCatalog { return e.catalog }

// Now returns the engine clock.
func (e *Engine) Now() time.Time { return e.now() }

// CreateInput describes a new lead or project.
type CreateInput struct {
	Type         SubjectType
	Title        string
	AssigneeID   uuid.UUID
	ProjectValue int64
}

// CreateSubject starts a subject at the first stage of its catalog. Projects
// get planned dates seeded from the catalog's expected durations.
func (e *Engine) CreateSubject(in CreateInput, actor Actor) (*Subject, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, invalidInput("title is required")
	}
	if in.ProjectValue < 0 {
		return nil, invalidInput("project value cannot be negative")
	}
	catalog, err := e.catalog.For(in.Type)
	if err != nil {
		return nil, err
	}
	if !canCreate(actor, in.Type) {
		return nil, forbidden("%s may not create a %s", actor.Role, in.Type)
	}

	now := e.now()
	initial := catalog.Initial()
	s := &Subject{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRootAt(uuid.New(), now),
		subjectType:       in.Type,
		title:             in.Title,
		assigneeID:        in.AssigneeID,
		stage:             initial.Key,
		holdStatus:        HoldActive,
		completed:         make(map[string]time.Time),
		percentages:       make(map[string]PercentageProgress),
		projectValue:      in.ProjectValue,
		expectedDates:     make(map[string]time.Time),
	}

	due := now
	for _, stage := range catalog.Stages() {
		if stage.ExpectedDays <= 0 {
			continue
		}
		due = due.AddDate(0, 0, stage.ExpectedDays)
		s.expectedDates[stage.Key] = due
	}

	s.appendTimeline(TimelineEntry{
		StageKey:   initial.Key,
		Title:      initial.Name,
		Status:     TimelineCurrent,
		Kind:       TimelineKindCreated,
		ActorID:    actor.ID,
		RecordedAt: now,
	})
	s.addSystemComment(actor, now, "Created "+string(in.Type)+" at stage "+initial.Name)
	s.AddDomainEvent(NewSubjectCreated(s, actor, now))
	return s, nil
}

func canCreate(actor Actor, t SubjectType) bool {
	switch actor.Role {
	case RoleAdmin, RoleManager:
		return true
	case RolePreSales:
		return t == SubjectTypeLead
	default:
		return false
	}
}

// Snapshot is the authoritative post-mutation view of a subject.
type Snapshot struct {
	ID             uuid.UUID                     `json:"id"`
	Type           SubjectType                   `json:"type"`
	Title          string                        `json:"title"`
	AssigneeID     uuid.UUID                     `json:"assignee_id"`
	Stage          string                        `json:"stage"`
	StageIndex     int                           `json:"stage_index"`
	HoldStatus     HoldStatus                    `json:"hold_status"`
	Completed      []string                      `json:"completed_sub_stages"`
	Percentages    map[string]PercentageProgress `json:"percentage_sub_stages"`
	Groups         []GroupProgress               `json:"groups"`
	Timeline       []TimelineEntry               `json:"timeline"`
	Schedule       *ResolvedSchedule             `json:"schedule,omitempty"`
	Financials     *FinancialSummary             `json:"financials,omitempty"`
	CustomSchedule bool                          `json:"custom_schedule"`
	Version        int                           `json:"version"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}

// Snapshot derives the full read view of a subject at the engine's "now".
func (e *Engine) Snapshot(s *Subject) (Snapshot, error) {
	catalog, err := e.catalog.For(s.subjectType)
	if err != nil {
		return Snapshot{}, err
	}
	current, err := catalog.IndexOf(s.stage)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		ID:             s.ID(),
		Type:           s.subjectType,
		Title:          s.title,
		AssigneeID:     s.assigneeID,
		Stage:          s.stage,
		StageIndex:     current,
		HoldStatus:     s.holdStatus,
		Completed:      s.CompletedSubStages(),
		Percentages:    make(map[string]PercentageProgress, len(s.percentages)),
		Groups:         groupProgress(catalog, s),
		Timeline:       ProjectTimeline(catalog, s, e.now()),
		CustomSchedule: s.customSchedule,
		Version:        s.Version(),
		UpdatedAt:      s.UpdatedAt(),
	}
	for k, v := range s.percentages {
		snap.Percentages[k] = v
	}

	if s.subjectType == SubjectTypeProject {
		schedule, err := e.ResolveSchedule(s)
		if err != nil {
			return Snapshot{}, err
		}
		summary := Summarize(schedule, s.payments)
		snap.Schedule = &schedule
		snap.Financials = &summary
	}
	return snap, nil
}

// Timeline projects the subject's stage view at the engine's "now".
func (e *Engine) Timeline(s *Subject) ([]TimelineEntry, error) {
	catalog, err := e.catalog.For(s.subjectType)
	if err != nil {
		return nil, err
	}
	if _, err := catalog.IndexOf(s.stage); err != nil {
		return nil, err
	}
	return ProjectTimeline(catalog, s, e.now()), nil
}
