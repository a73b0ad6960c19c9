package mcp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// errNoDatabase mirrors the CLI's message for handlers missing from the app.
var errNoDatabase = errors.New("lifecycle tools require a database connection")

// actorInput names the user a call is made for. Only a server configured
// with an admin actor may act for someone else; any other server rejects
// an override that differs from its own identity.
type actorInput struct {
	ActorID   string `json:"actor_id,omitempty"`
	ActorRole string `json:"actor_role,omitempty"`
}

func (in actorInput) resolve(app *cli.App) (domain.Actor, error) {
	configured := app.DefaultActor
	if configured.ID == uuid.Nil || !configured.Role.IsValid() {
		return domain.Actor{}, errors.New("no actor configured for this server")
	}

	actor := configured
	if in.ActorID != "" {
		id, err := parseUUID(in.ActorID)
		if err != nil {
			return domain.Actor{}, fmt.Errorf("actor_id: %w", err)
		}
		actor.ID = id
	}
	if in.ActorRole != "" {
		role, err := domain.ParseRole(in.ActorRole)
		if err != nil {
			return domain.Actor{}, err
		}
		actor.Role = role
	}
	if actor != configured && configured.Role != domain.RoleAdmin {
		return domain.Actor{}, &domain.Error{
			Kind:   domain.KindForbidden,
			Reason: fmt.Sprintf("%s may not act as another user", configured.Role),
		}
	}
	return actor, nil
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return parsed, nil
}

func parseUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.UUID{}, errors.New("id is required")
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid id: %w", err)
	}
	return id, nil
}

func parseOptionalUUID(value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	return parseUUID(value)
}
