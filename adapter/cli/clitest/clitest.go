// Package clitest builds SQLite-backed CLI apps for command tests.
package clitest

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	internalApp "github.com/felixgeelhaar/atelier/internal/app"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	internalMCP "github.com/felixgeelhaar/atelier/internal/mcp"
	"github.com/felixgeelhaar/atelier/pkg/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// AdminID is the default actor of test apps.
var AdminID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// NewLocalApp creates a CLI app over a temporary SQLite database, installs it
// with cli.SetApp and undoes everything on cleanup.
func NewLocalApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:                "test",
		LocalMode:             true,
		DatabaseDriver:        "sqlite",
		SQLitePath:            filepath.Join(t.TempDir(), "cli.db"),
		LogLevel:              "error",
		ActorID:               AdminID.String(),
		ActorRole:             "admin",
		OutboxPollInterval:    time.Second,
		OutboxBatchSize:       100,
		OutboxMaxRetries:      3,
		OutboxRetentionDays:   7,
		OutboxCleanupInterval: time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	container, err := internalApp.NewContainer(context.Background(), cfg, logger)
	require.NoError(t, err)

	app, err := internalMCP.NewCLIApp(container)
	require.NoError(t, err)

	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		viper.Set("json", false)
		viper.Set("actor-id", "")
		viper.Set("actor-role", "")
		container.Close()
	})
	return app
}

// Run executes a command's RunE with output captured.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, args)
	return out.String(), err
}

// CreateProject adds a project through the command handler.
func CreateProject(t *testing.T, app *cli.App, title string, value int64) uuid.UUID {
	t.Helper()
	res, err := app.CreateSubjectHandler.Handle(context.Background(), commands.CreateSubjectCommand{
		Actor:        app.DefaultActor,
		Type:         domain.SubjectTypeProject,
		Title:        title,
		ProjectValue: value,
	})
	require.NoError(t, err)
	return res.Snapshot.ID
}

// CreateLead adds a lead through the command handler.
func CreateLead(t *testing.T, app *cli.App, title string) uuid.UUID {
	t.Helper()
	res, err := app.CreateSubjectHandler.Handle(context.Background(), commands.CreateSubjectCommand{
		Actor: app.DefaultActor,
		Type:  domain.SubjectTypeLead,
		Title: title,
	})
	require.NoError(t, err)
	return res.Snapshot.ID
}
