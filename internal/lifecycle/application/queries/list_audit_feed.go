package queries

import (
	"context"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
)

// ListAuditFeedQuery asks for a subject's comments. Limit keeps the most
// recent entries; zero returns all.
type ListAuditFeedQuery struct {
	SubjectID uuid.UUID
	Limit     int
	// Kind narrows to system or user comments.
	Kind domain.CommentKind
}

// ListAuditFeedHandler handles the ListAuditFeedQuery.
type ListAuditFeedHandler struct {
	r *Reader
}

// NewListAuditFeedHandler creates a new ListAuditFeedHandler.
func NewListAuditFeedHandler(r *Reader) *ListAuditFeedHandler {
	return &ListAuditFeedHandler{r: r}
}

// Handle executes the ListAuditFeedQuery. Comments come back oldest first.
func (h *ListAuditFeedHandler) Handle(ctx context.Context, q ListAuditFeedQuery) ([]domain.Comment, error) {
	ctx = observability.WithSubjectID(ctx, q.SubjectID.String())
	return observability.TimeOperationResult(ctx, h.r.logger, h.r.metrics, "list_audit_feed", func() ([]domain.Comment, error) {
		if _, err := h.r.repo.FindByID(ctx, q.SubjectID); err != nil {
			return nil, err
		}
		comments, err := h.r.feed.ListBySubject(ctx, q.SubjectID, q.Limit)
		if err != nil {
			return nil, err
		}
		if q.Kind == "" {
			return comments, nil
		}
		out := comments[:0]
		for _, c := range comments {
			if c.Kind == q.Kind {
				out = append(out, c)
			}
		}
		return out, nil
	})
}
