package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
)

func newMock(t *testing.T, driver database.Driver) (database.Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return database.NewSQLConnection(db, driver), mock
}

func TestSubjectRepository_SaveStaleVersion(t *testing.T) {
	conn, mock := newMock(t, database.DriverSQLite)
	repo := NewSubjectRepository(conn)

	engine := domain.NewEngine(nil, nil, domain.Options{})
	s, err := engine.CreateSubject(domain.CreateInput{Type: domain.SubjectTypeLead, Title: "Flat"}, admin)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO lifecycle_subjects").
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	err = repo.Save(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepository_SaveDriverError(t *testing.T) {
	conn, mock := newMock(t, database.DriverSQLite)
	repo := NewSubjectRepository(conn)

	engine := domain.NewEngine(nil, nil, domain.Options{})
	s, err := engine.CreateSubject(domain.CreateInput{Type: domain.SubjectTypeLead, Title: "Flat"}, admin)
	require.NoError(t, err)

	mock.ExpectQuery("INSERT INTO lifecycle_subjects").WillReturnError(errors.New("disk I/O error"))

	err = repo.Save(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(err))
}

func TestSubjectRepository_PostgresListBindsArrays(t *testing.T) {
	conn, mock := newMock(t, database.DriverPostgres)
	repo := NewSubjectRepository(conn)

	mock.ExpectQuery(`FROM lifecycle_subjects WHERE subject_type = \$1 AND stage = ANY\(\$2\) ORDER BY updated_at DESC, id LIMIT \$3`).
		WithArgs("project", sqlmock.AnyArg(), 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "subject_type", "title", "assignee_id", "stage", "hold_status",
			"project_value", "state_json", "version", "created_at", "updated_at",
		}))

	got, err := repo.List(context.Background(), domain.ListFilter{
		Type:   domain.SubjectTypeProject,
		Stages: []string{"design", "production"},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentFeed_AppendFailure(t *testing.T) {
	conn, mock := newMock(t, database.DriverSQLite)
	feed := NewCommentFeed(conn)

	c := domain.Comment{
		ID: uuid.New(), SubjectID: uuid.New(), Kind: domain.CommentUser,
		AuthorID: uuid.New(), Body: "hello", CreatedAt: time.Now(),
	}
	mock.ExpectExec("INSERT INTO lifecycle_comments").WillReturnError(errors.New("database is locked"))

	err := feed.Append(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), c.ID.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentFeed_RejectsCorruptRows(t *testing.T) {
	conn, mock := newMock(t, database.DriverSQLite)
	feed := NewCommentFeed(conn)

	mock.ExpectQuery("FROM lifecycle_comments").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "id", "subject_id", "kind", "author_id", "author_role", "body", "created_at"}).
			AddRow(1, "not-a-uuid", uuid.NewString(), "user", uuid.NewString(), "", "x", "2026-01-05T09:00:00.000000000Z"))

	_, err := feed.ListBySubject(context.Background(), uuid.New(), 0)
	assert.Error(t, err)
}
