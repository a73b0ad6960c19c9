package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// ErrNotInitialized is returned by commands that need a database-backed app.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	// Command handlers
	CreateSubjectHandler      *commands.CreateSubjectHandler
	TransitionStageHandler    *commands.TransitionStageHandler
	CompleteSubStageHandler   *commands.CompleteSubStageHandler
	UpdatePercentageHandler   *commands.UpdatePercentageHandler
	ChangeHoldStatusHandler   *commands.ChangeHoldStatusHandler
	RecordPaymentHandler      *commands.RecordPaymentHandler
	DeletePaymentHandler      *commands.DeletePaymentHandler
	UpdateProjectValueHandler *commands.UpdateProjectValueHandler
	ConfigureScheduleHandler  *commands.ConfigureScheduleHandler
	SetExpectedDateHandler    *commands.SetExpectedDateHandler
	AddCommentHandler         *commands.AddCommentHandler

	// Query handlers
	GetSnapshotHandler   *queries.GetSnapshotHandler
	GetTimelineHandler   *queries.GetTimelineHandler
	GetFinancialsHandler *queries.GetFinancialsHandler
	ListSubjectsHandler  *queries.ListSubjectsHandler
	ListAuditFeedHandler *queries.ListAuditFeedHandler

	Catalog *domain.StageCatalog
	Health  *observability.HealthRegistry

	// DefaultActor is used when neither --actor-id nor --actor-role is given.
	DefaultActor domain.Actor
}

// Actor resolves the acting user. Flags (or ATELIER_ACTOR_* through viper)
// override the configured default field by field.
func (a *App) Actor() (domain.Actor, error) {
	actor := a.DefaultActor
	if raw := strings.TrimSpace(viper.GetString("actor-id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return domain.Actor{}, fmt.Errorf("invalid --actor-id: %w", err)
		}
		actor.ID = id
	}
	if raw := strings.TrimSpace(viper.GetString("actor-role")); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return domain.Actor{}, err
		}
		actor.Role = role
	}
	if actor.ID == uuid.Nil {
		return domain.Actor{}, errors.New("no actor configured: pass --actor-id or set ATELIER_ACTOR_ID")
	}
	if !actor.Role.IsValid() {
		return domain.Actor{}, errors.New("no actor role configured: pass --actor-role or set ATELIER_ACTOR_ROLE")
	}
	return actor, nil
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
