package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnection struct {
	database.Connection
	driver database.Driver
}

func (f fakeConnection) Driver() database.Driver { return f.driver }

func TestNewRepositoryFactory(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		_, err := NewRepositoryFactory(nil)
		assert.Error(t, err)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		_, err := NewRepositoryFactory(fakeConnection{driver: "oracle"})
		assert.EqualError(t, err, "unsupported driver: oracle")
	})

	t.Run("sqlite", func(t *testing.T) {
		conn, err := database.Open(context.Background(), database.Config{
			Driver:     database.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "factory.db"),
		})
		require.NoError(t, err)
		defer conn.Close()

		f, err := NewRepositoryFactory(conn)
		require.NoError(t, err)
		assert.Equal(t, database.DriverSQLite, f.Driver())
		assert.Same(t, conn, f.Connection())
		assert.NotNil(t, f.SubjectRepository())
		assert.NotNil(t, f.AuditFeed())
		assert.NotNil(t, f.OutboxRepository())
		assert.NotNil(t, f.UnitOfWork())
	})
}
