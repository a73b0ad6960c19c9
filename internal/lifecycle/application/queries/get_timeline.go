package queries

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// GetTimelineQuery asks for a subject's projected timeline.
type GetTimelineQuery struct {
	SubjectID uuid.UUID
	// WithHistory includes the raw transition history.
	WithHistory bool
}

// TimelineDTO is one row per catalog stage plus optional history.
type TimelineDTO struct {
	SubjectID uuid.UUID              `json:"subject_id"`
	Stage     string                 `json:"stage"`
	Entries   []domain.TimelineEntry `json:"entries"`
	Delayed   []string               `json:"delayed,omitempty"`
	History   []domain.TimelineEntry `json:"history,omitempty"`
}

// GetTimelineHandler handles the GetTimelineQuery.
type GetTimelineHandler struct {
	r *Reader
}

// NewGetTimelineHandler creates a new GetTimelineHandler.
func NewGetTimelineHandler(r *Reader) *GetTimelineHandler {
	return &GetTimelineHandler{r: r}
}

// Handle executes the GetTimelineQuery.
func (h *GetTimelineHandler) Handle(ctx context.Context, q GetTimelineQuery) (*TimelineDTO, error) {
	ctx = observability.WithSubjectID(ctx, q.SubjectID.String())
	return observability.TimeOperationResult(ctx, h.r.logger, h.r.metrics, "get_timeline", func() (*TimelineDTO, error) {
		s, err := h.r.repo.FindByID(ctx, q.SubjectID)
		if err != nil {
			return nil, err
		}
		entries, err := h.r.engine.Timeline(s)
		if err != nil {
			return nil, err
		}
		dto := &TimelineDTO{
			SubjectID: s.ID(),
			Stage:     s.Stage(),
			Entries:   entries,
			Delayed:   delayedStages(entries),
		}
		if q.WithHistory {
			dto.History = s.Timeline()
		}
		return dto, nil
	})
}

func delayedStages(entries []domain.TimelineEntry) []string {
	var out []string
	for _, e := range entries {
		if e.Status == domain.TimelineDelayed {
			out = append(out, e.StageKey)
		}
	}
	return out
}
