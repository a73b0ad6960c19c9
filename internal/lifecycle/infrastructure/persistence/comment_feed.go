package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
)

// CommentFeed implements domain.AuditFeed. Rows are ordered by an insert
// sequence, so entries written within the same instant keep their order.
type CommentFeed struct {
	conn database.Connection
}

// NewCommentFeed creates a feed over conn.
func NewCommentFeed(conn database.Connection) *CommentFeed {
	return &CommentFeed{conn: conn}
}

func (f *CommentFeed) Append(ctx context.Context, comments ...domain.Comment) error {
	exec := database.ExecutorFromContext(ctx, f.conn)
	query := database.Rebind(f.conn.Driver(), `INSERT INTO lifecycle_comments
		(id, subject_id, kind, author_id, author_role, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	for _, c := range comments {
		_, err := exec.Exec(ctx, query,
			c.ID.String(), c.SubjectID.String(), string(c.Kind), c.AuthorID.String(),
			string(c.AuthorRole), c.Body, database.FormatTime(c.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("append comment %s: %w", c.ID, err)
		}
	}
	return nil
}

// ListBySubject returns the latest limit comments, oldest first. A
// non-positive limit returns the whole feed.
func (f *CommentFeed) ListBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]domain.Comment, error) {
	const cols = `seq, id, subject_id, kind, author_id, author_role, body, created_at`
	query := `SELECT ` + cols + ` FROM lifecycle_comments WHERE subject_id = ? ORDER BY seq`
	args := []any{subjectID.String()}
	if limit > 0 {
		query = `SELECT ` + cols + ` FROM (
			SELECT ` + cols + ` FROM lifecycle_comments WHERE subject_id = ? ORDER BY seq DESC LIMIT ?
		) latest ORDER BY seq`
		args = append(args, limit)
	}

	rows, err := database.ExecutorFromContext(ctx, f.conn).Query(ctx, database.Rebind(f.conn.Driver(), query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Comment
	for rows.Next() {
		var (
			seq                                 int64
			c                                   domain.Comment
			id, subject, kind, author, role, at string
		)
		if err := rows.Scan(&seq, &id, &subject, &kind, &author, &role, &c.Body, &at); err != nil {
			return nil, err
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("comment id %q: %w", id, err)
		}
		if c.SubjectID, err = uuid.Parse(subject); err != nil {
			return nil, fmt.Errorf("comment %s: subject id: %w", id, err)
		}
		if c.AuthorID, err = uuid.Parse(author); err != nil {
			return nil, fmt.Errorf("comment %s: author id: %w", id, err)
		}
		if c.CreatedAt, err = database.ParseTime(at); err != nil {
			return nil, fmt.Errorf("comment %s: created_at: %w", id, err)
		}
		c.Kind = domain.CommentKind(kind)
		c.AuthorRole = domain.Role(role)
		out = append(out, c)
	}
	return out, rows.Err()
}
