package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// SubjectListItemDTO is a lightweight row for subject lists.
type SubjectListItemDTO struct {
	ID           uuid.UUID          `json:"id"`
	Type         domain.SubjectType `json:"type"`
	Title        string             `json:"title"`
	AssigneeID   uuid.UUID          `json:"assignee_id"`
	Stage        string             `json:"stage"`
	StageName    string             `json:"stage_name"`
	StageIndex   int                `json:"stage_index"`
	StageCount   int                `json:"stage_count"`
	HoldStatus   domain.HoldStatus  `json:"hold_status"`
	Delayed      bool               `json:"delayed"`
	ProjectValue int64              `json:"project_value,omitempty"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ListSubjectsQuery filters the subject list. Empty fields match everything.
type ListSubjectsQuery struct {
	Type        string
	Stages      []string
	HoldStatus  []string
	AssigneeID  uuid.UUID
	DelayedOnly bool
	Limit       int
	Offset      int
}

// ListSubjectsHandler handles the ListSubjectsQuery.
type ListSubjectsHandler struct {
	r *Reader
}

// NewListSubjectsHandler creates a new ListSubjectsHandler.
func NewListSubjectsHandler(r *Reader) *ListSubjectsHandler {
	return &ListSubjectsHandler{r: r}
}

// Handle executes the ListSubjectsQuery.
func (h *ListSubjectsHandler) Handle(ctx context.Context, q ListSubjectsQuery) ([]SubjectListItemDTO, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	return observability.TimeOperationResult(ctx, h.r.logger, h.r.metrics, "list_subjects", func() ([]SubjectListItemDTO, error) {
		subjects, err := h.r.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		items := make([]SubjectListItemDTO, 0, len(subjects))
		for _, s := range subjects {
			item, err := h.item(s)
			if err != nil {
				return nil, err
			}
			if q.DelayedOnly && !item.Delayed {
				continue
			}
			items = append(items, item)
		}
		return items, nil
	})
}

func (q ListSubjectsQuery) filter() (domain.ListFilter, error) {
	f := domain.ListFilter{AssigneeID: q.AssigneeID, Stages: q.Stages, Limit: q.Limit, Offset: q.Offset}
	if q.Type != "" {
		t, err := domain.ParseSubjectType(q.Type)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	for _, raw := range q.HoldStatus {
		hs, err := domain.ParseHoldStatus(raw)
		if err != nil {
			return f, err
		}
		f.HoldStatuses = append(f.HoldStatuses, hs)
	}
	return f, nil
}

func (h *ListSubjectsHandler) item(s *domain.Subject) (SubjectListItemDTO, error) {
	catalog, err := h.r.engine.Catalog().For(s.Type())
	if err != nil {
		return SubjectListItemDTO{}, err
	}
	idx, err := catalog.IndexOf(s.Stage())
	if err != nil {
		return SubjectListItemDTO{}, err
	}
	timeline, err := h.r.engine.Timeline(s)
	if err != nil {
		return SubjectListItemDTO{}, err
	}
	return SubjectListItemDTO{
		ID:           s.ID(),
		Type:         s.Type(),
		Title:        s.Title(),
		AssigneeID:   s.AssigneeID(),
		Stage:        s.Stage(),
		StageName:    catalog.Stage(idx).Name,
		StageIndex:   idx,
		StageCount:   catalog.Len(),
		HoldStatus:   s.HoldStatus(),
		Delayed:      len(delayedStages(timeline)) > 0,
		ProjectValue: s.ProjectValue(),
		UpdatedAt:    s.UpdatedAt(),
	}, nil
}
