package domain

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows a subject listing. Zero values match everything.
type ListFilter struct {
	Type         SubjectType
	Stages       []string
	HoldStatuses []HoldStatus
	AssigneeID   uuid.UUID
	Limit        int
	Offset       int
}

// Repository defines persistence for lifecycle subjects.
type Repository interface {
	// FindByID loads a subject with its payment ledger. Comments are read
	// through the AuditFeed.
	FindByID(ctx context.Context, id uuid.UUID) (*Subject, error)

	// Save persists a subject. Existing rows are only updated when the stored
	// version matches the subject's loaded version.
	Save(ctx context.Context, subject *Subject) error

	// List returns subjects matching the filter, most recently updated first.
	List(ctx context.Context, filter ListFilter) ([]*Subject, error)
}

// AuditFeed is the append-only comment log of every subject.
type AuditFeed interface {
	// Append stores comments in order.
	Append(ctx context.Context, comments ...Comment) error

	// ListBySubject returns a subject's comments oldest first.
	ListBySubject(ctx context.Context, subjectID uuid.UUID, limit int) ([]Comment, error)
}
