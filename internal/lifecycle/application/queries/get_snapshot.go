package queries

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// GetSnapshotQuery asks for the full view of one subject.
type GetSnapshotQuery struct {
	SubjectID uuid.UUID
}

// GetSnapshotHandler handles the GetSnapshotQuery.
type GetSnapshotHandler struct {
	r *Reader
}

// NewGetSnapshotHandler creates a new GetSnapshotHandler.
func NewGetSnapshotHandler(r *Reader) *GetSnapshotHandler {
	return &GetSnapshotHandler{r: r}
}

// Handle executes the GetSnapshotQuery.
func (h *GetSnapshotHandler) Handle(ctx context.Context, q GetSnapshotQuery) (*domain.Snapshot, error) {
	ctx = observability.WithSubjectID(ctx, q.SubjectID.String())
	return observability.TimeOperationResult(ctx, h.r.logger, h.r.metrics, "get_snapshot", func() (*domain.Snapshot, error) {
		s, err := h.r.repo.FindByID(ctx, q.SubjectID)
		if err != nil {
			return nil, err
		}
		snap, err := h.r.engine.Snapshot(s)
		if err != nil {
			return nil, err
		}
		return &snap, nil
	})
}
