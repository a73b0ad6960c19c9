package queries

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// GetFinancialsQuery asks for a project's schedule and ledger summary.
type GetFinancialsQuery struct {
	SubjectID uuid.UUID
}

// FinancialsDTO is the money view of a project.
type FinancialsDTO struct {
	SubjectID      uuid.UUID               `json:"subject_id"`
	CustomSchedule bool                    `json:"custom_schedule"`
	Schedule       domain.ResolvedSchedule `json:"schedule"`
	Summary        domain.FinancialSummary `json:"summary"`
	Payments       []domain.Payment        `json:"payments"`
}

// GetFinancialsHandler handles the GetFinancialsQuery.
type GetFinancialsHandler struct {
	r *Reader
}

// NewGetFinancialsHandler creates a new GetFinancialsHandler.
func NewGetFinancialsHandler(r *Reader) *GetFinancialsHandler {
	return &GetFinancialsHandler{r: r}
}

// Handle executes the GetFinancialsQuery.
func (h *GetFinancialsHandler) Handle(ctx context.Context, q GetFinancialsQuery) (*FinancialsDTO, error) {
	ctx = observability.WithSubjectID(ctx, q.SubjectID.String())
	return observability.TimeOperationResult(ctx, h.r.logger, h.r.metrics, "get_financials", func() (*FinancialsDTO, error) {
		s, err := h.r.repo.FindByID(ctx, q.SubjectID)
		if err != nil {
			return nil, err
		}
		if s.Type() != domain.SubjectTypeProject {
			return nil, &domain.Error{Kind: domain.KindInvalidInput, Reason: "financials are only tracked for projects"}
		}
		schedule, err := h.r.engine.ResolveSchedule(s)
		if err != nil {
			return nil, err
		}
		payments := s.Payments()
		return &FinancialsDTO{
			SubjectID:      s.ID(),
			CustomSchedule: s.UsesCustomSchedule(),
			Schedule:       schedule,
			Summary:        domain.Summarize(schedule, payments),
			Payments:       payments,
		}, nil
	})
}
