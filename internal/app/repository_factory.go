package app

import (
	"fmt"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/atelier/internal/shared/application"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories bound to one connection. The SQL is
// portable, so the same implementations serve SQLite and PostgreSQL.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) (*RepositoryFactory, error) {
	if conn == nil {
		return nil, fmt.Errorf("repository factory needs a connection")
	}
	if !conn.Driver().IsValid() {
		return nil, fmt.Errorf("unsupported driver: %s", conn.Driver())
	}
	return &RepositoryFactory{conn: conn, driver: conn.Driver()}, nil
}

// SubjectRepository creates the lifecycle subject repository.
func (f *RepositoryFactory) SubjectRepository() domain.Repository {
	return persistence.NewSubjectRepository(f.conn)
}

// AuditFeed creates the comment feed.
func (f *RepositoryFactory) AuditFeed() domain.AuditFeed {
	return persistence.NewCommentFeed(f.conn)
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a transaction scope over the connection.
func (f *RepositoryFactory) UnitOfWork() sharedApplication.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

// Driver returns the database driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
