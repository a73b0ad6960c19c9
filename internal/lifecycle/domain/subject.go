package domain

import (
	"sort"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/atelier/internal/shared/domain"
	"github.com/google/uuid"
)

// AggregateType is the aggregate name used for events and outbox rows.
const AggregateType = "LifecycleSubject"

// CommentKind distinguishes engine-written entries from user entries.
type CommentKind string

const (
	CommentSystem CommentKind = "system"
	CommentUser   CommentKind = "user"
)

// Comment is one entry of the subject's append-only comment feed.
type Comment struct {
	ID         uuid.UUID   `json:"id"`
	SubjectID  uuid.UUID   `json:"subject_id"`
	Kind       CommentKind `json:"kind"`
	AuthorID   uuid.UUID   `json:"author_id"`
	AuthorRole Role        `json:"author_role,omitempty"`
	Body       string      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TimelineStatus is the display status of a stage.
type TimelineStatus string

const (
	TimelinePending   TimelineStatus = "pending"
	TimelineCurrent   TimelineStatus = "current"
	TimelineCompleted TimelineStatus = "completed"
	TimelineDelayed   TimelineStatus = "delayed"
)

// TimelineKind records why a history entry was written.
type TimelineKind string

const (
	TimelineKindCreated  TimelineKind = "created"
	TimelineKindForward  TimelineKind = "forward"
	TimelineKindSkipped  TimelineKind = "skipped"
	TimelineKindRollback TimelineKind = "rollback"
	TimelineKindAuto     TimelineKind = "auto"
)

// TimelineEntry is either a stored history record or a projected stage row.
type TimelineEntry struct {
	StageKey      string         `json:"stage"`
	Title         string         `json:"title"`
	Status        TimelineStatus `json:"status"`
	Kind          TimelineKind   `json:"kind,omitempty"`
	ExpectedDate  *time.Time     `json:"expected_date,omitempty"`
	CompletedDate *time.Time     `json:"completed_date,omitempty"`
	ActorID       uuid.UUID      `json:"actor_id,omitempty"`
	RecordedAt    time.Time      `json:"recorded_at,omitempty"`
}

// PercentageProgress is the latest absolute value of a percentage sub-stage.
type PercentageProgress struct {
	Percent     int       `json:"percent"`
	LastComment string    `json:"last_comment"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedBy   uuid.UUID `json:"updated_by"`
}

// Subject is a lead or project moving through its stage catalog.
type Subject struct {
	sharedDomain.BaseAggregateRoot
	subjectType    SubjectType
	title          string
	assigneeID     uuid.UUID
	stage          string
	holdStatus     HoldStatus
	completed      map[string]time.Time
	percentages    map[string]PercentageProgress
	timeline       []TimelineEntry
	comments       []Comment
	newComments    []Comment
	payments       []Payment
	projectValue   int64
	customSchedule bool
	customDefs     []ScheduleDefinition
	expectedDates  map[string]time.Time
}

// SubjectState is the flat persisted form of a Subject.
type SubjectState struct {
	ID                  uuid.UUID
	Type                SubjectType
	Title               string
	AssigneeID          uuid.UUID
	Stage               string
	HoldStatus          HoldStatus
	CompletedSubStages  map[string]time.Time
	PercentageSubStages map[string]PercentageProgress
	Timeline            []TimelineEntry
	Comments            []Comment
	Payments            []Payment
	ProjectValue        int64
	CustomSchedule      bool
	CustomDefinitions   []ScheduleDefinition
	ExpectedDates       map[string]time.Time
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RehydrateSubject recreates a Subject from persisted state.
func RehydrateSubject(state SubjectState) *Subject {
	s := &Subject{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(state.ID, state.CreatedAt, state.UpdatedAt),
			state.Version,
		),
		subjectType:    state.Type,
		title:          state.Title,
		assigneeID:     state.AssigneeID,
		stage:          state.Stage,
		holdStatus:     state.HoldStatus,
		completed:      make(map[string]time.Time, len(state.CompletedSubStages)),
		percentages:    make(map[string]PercentageProgress, len(state.PercentageSubStages)),
		timeline:       append([]TimelineEntry(nil), state.Timeline...),
		comments:       append([]Comment(nil), state.Comments...),
		payments:       append([]Payment(nil), state.Payments...),
		projectValue:   state.ProjectValue,
		customSchedule: state.CustomSchedule,
		customDefs:     cloneDefinitions(state.CustomDefinitions),
		expectedDates:  make(map[string]time.Time, len(state.ExpectedDates)),
	}
	if s.holdStatus == "" {
		s.holdStatus = HoldActive
	}
	for k, v := range state.CompletedSubStages {
		s.completed[k] = v
	}
	for k, v := range state.PercentageSubStages {
		s.percentages[k] = v
	}
	for k, v := range state.ExpectedDates {
		s.expectedDates[k] = v
	}
	return s
}

// State returns a deep copy of the subject's persisted fields.
func (s *Subject) State() SubjectState {
	state := SubjectState{
		ID:                  s.ID(),
		Type:                s.subjectType,
		Title:               s.title,
		AssigneeID:          s.assigneeID,
		Stage:               s.stage,
		HoldStatus:          s.holdStatus,
		CompletedSubStages:  make(map[string]time.Time, len(s.completed)),
		PercentageSubStages: make(map[string]PercentageProgress, len(s.percentages)),
		Timeline:            append([]TimelineEntry(nil), s.timeline...),
		Comments:            append([]Comment(nil), s.comments...),
		Payments:            append([]Payment(nil), s.payments...),
		ProjectValue:        s.projectValue,
		CustomSchedule:      s.customSchedule,
		CustomDefinitions:   cloneDefinitions(s.customDefs),
		ExpectedDates:       make(map[string]time.Time, len(s.expectedDates)),
		Version:             s.Version(),
		CreatedAt:           s.CreatedAt(),
		UpdatedAt:           s.UpdatedAt(),
	}
	for k, v := range s.completed {
		state.CompletedSubStages[k] = v
	}
	for k, v := range s.percentages {
		state.PercentageSubStages[k] = v
	}
	for k, v := range s.expectedDates {
		state.ExpectedDates[k] = v
	}
	return state
}

func (s *Subject) Type() SubjectType         { return s.subjectType }
func (s *Subject) Title() string             { return s.title }
func (s *Subject) AssigneeID() uuid.UUID     { return s.assigneeID }
func (s *Subject) Stage() string             { return s.stage }
func (s *Subject) HoldStatus() HoldStatus    { return s.holdStatus }
func (s *Subject) ProjectValue() int64       { return s.projectValue }
func (s *Subject) UsesCustomSchedule() bool  { return s.customSchedule }
func (s *Subject) Timeline() []TimelineEntry { return append([]TimelineEntry(nil), s.timeline...) }
func (s *Subject) Comments() []Comment       { return append([]Comment(nil), s.comments...) }
func (s *Subject) Payments() []Payment       { return append([]Payment(nil), s.payments...) }
func (s *Subject) IsActive() bool            { return s.holdStatus == HoldActive }
func (s *Subject) CustomSchedule() []ScheduleDefinition {
	return cloneDefinitions(s.customDefs)
}

// IsAssignedTo returns true if the subject is assigned to the given user.
func (s *Subject) IsAssignedTo(userID uuid.UUID) bool {
	return userID != uuid.Nil && s.assigneeID == userID
}

// IsSubStageComplete returns true if the sub-stage has been completed.
func (s *Subject) IsSubStageComplete(id string) bool {
	_, ok := s.completed[id]
	return ok
}

// CompletedSubStages returns the completed sub-stage ids in sorted order.
func (s *Subject) CompletedSubStages() []string {
	ids := make([]string, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Percentage returns the recorded progress of a percentage sub-stage.
func (s *Subject) Percentage(id string) (PercentageProgress, bool) {
	p, ok := s.percentages[id]
	return p, ok
}

// ExpectedDate returns the planned completion date of a stage.
func (s *Subject) ExpectedDate(stageKey string) (time.Time, bool) {
	d, ok := s.expectedDates[stageKey]
	return d, ok
}

// NewComments returns the comments appended since the subject was loaded.
func (s *Subject) NewComments() []Comment {
	return append([]Comment(nil), s.newComments...)
}

// ClearNewComments marks the pending comment delta as delivered.
func (s *Subject) ClearNewComments() {
	s.newComments = nil
}

// MarkPersisted bumps the version after a successful save.
func (s *Subject) MarkPersisted() {
	s.IncrementVersion()
}

func (s *Subject) touch(now time.Time) {
	s.TouchAt(now)
}

func (s *Subject) addComment(kind CommentKind, actor Actor, now time.Time, body string) Comment {
	c := Comment{
		ID:         uuid.New(),
		SubjectID:  s.ID(),
		Kind:       kind,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		Body:       body,
		CreatedAt:  now,
	}
	s.comments = append(s.comments, c)
	s.newComments = append(s.newComments, c)
	return c
}

func (s *Subject) addSystemComment(actor Actor, now time.Time, body string) Comment {
	return s.addComment(CommentSystem, actor, now, body)
}

func (s *Subject) appendTimeline(entry TimelineEntry) {
	s.timeline = append(s.timeline, entry)
}

func (s *Subject) findPayment(id uuid.UUID) int {
	for i, p := range s.payments {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// AddComment appends a user comment. Comments stay available on held subjects.
func (e *Engine) AddComment(s *Subject, actor Actor, body string) (Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Comment{}, invalidInput("comment cannot be empty")
	}
	now := e.now()
	c := s.addComment(CommentUser, actor, now, body)
	s.touch(now)
	s.AddDomainEvent(NewCommentAdded(s, c))
	return c, nil
}
