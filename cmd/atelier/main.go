package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/atelier/adapter/cli"
	"github.com/felixgeelhaar/atelier/adapter/cli/catalog"
	"github.com/felixgeelhaar/atelier/adapter/cli/comment"
	"github.com/felixgeelhaar/atelier/adapter/cli/finance"
	"github.com/felixgeelhaar/atelier/adapter/cli/lead"
	"github.com/felixgeelhaar/atelier/adapter/cli/mcp"
	"github.com/felixgeelhaar/atelier/adapter/cli/project"
	"github.com/felixgeelhaar/atelier/adapter/cli/subject"
	"github.com/felixgeelhaar/atelier/adapter/cli/substage"
	"github.com/felixgeelhaar/atelier/internal/app"
	mcpinternal "github.com/felixgeelhaar/atelier/internal/mcp"
	"github.com/felixgeelhaar/atelier/pkg/config"
	"github.com/felixgeelhaar/atelier/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	// Without a container only catalog, version and mcp work.
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		logger.Warn("failed to initialize container, running in limited mode", "error", err)
	} else {
		defer container.Close()

		// Drain events written by this invocation
		if cfg.OutboxProcessorEnabled {
			container.OutboxProcessor.Start(ctx)
		} else {
			logger.Debug("outbox processor disabled in CLI")
		}

		cliApp, err = mcpinternal.NewCLIApp(container)
		if err != nil {
			logger.Error("invalid actor configuration", "error", err)
			os.Exit(1)
		}
	}

	cli.SetApp(cliApp)

	cli.AddCommand(lead.Cmd)
	cli.AddCommand(project.Cmd)
	cli.AddCommand(subject.Cmd)
	cli.AddCommand(substage.Cmd)
	cli.AddCommand(comment.Cmd)
	cli.AddCommand(finance.Cmd)
	cli.AddCommand(catalog.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute()
}
