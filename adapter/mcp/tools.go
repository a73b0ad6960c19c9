package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/mcp-go"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	App *cli.App
}

// RegisterCLITools registers MCP tools that mirror CLI functionality.
func RegisterCLITools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.App == nil {
		return errors.New("app is required")
	}

	srv.Tool("cli.health").
		Description("Check database, lock and broker connectivity").
		Handler(func(ctx context.Context, input struct{}) (map[string]any, error) {
			if deps.App.Health == nil {
				return map[string]any{"status": "ok"}, nil
			}
			report := deps.App.Health.GetOverallHealth(ctx)
			return map[string]any{"status": report.Status, "checks": report.Checks}, nil
		})

	if err := registerLifecycleTools(srv, deps); err != nil {
		return err
	}
	if err := registerFinanceTools(srv, deps); err != nil {
		return err
	}
	return nil
}
