package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/atelier/internal/app"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/atelier/pkg/config"
	"github.com/felixgeelhaar/atelier/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting atelier worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	processor := container.OutboxProcessor
	logger.Info("starting outbox processor",
		"poll_interval", cfg.OutboxPollInterval,
		"batch_size", cfg.OutboxBatchSize,
		"max_retries", cfg.OutboxMaxRetries,
	)
	processor.Start(ctx)

	// With RabbitMQ the processor publishes to the exchange and this worker
	// consumes its own queue; otherwise the processor dispatches in process.
	if cfg.UsesRabbitMQ() {
		consumer, err := eventbus.NewRabbitMQConsumer(cfg.RabbitMQURL, eventbus.DefaultQueue, container.EventRegistry, logger)
		switch {
		case err == nil:
			defer consumer.Close()
			go func() {
				if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("consumer stopped", "error", err)
					cancel()
				}
			}()
		case cfg.IsDevelopment():
			logger.Warn("RabbitMQ consumer not available", "error", err)
		default:
			logger.Error("failed to start RabbitMQ consumer", "error", err)
			os.Exit(1)
		}
	}

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/healthz", container.Health.Handler())
		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			w.Header().Set("Content-Type", "application/json")
			if err := container.DBConn.Ping(checkCtx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"status": "not_ready",
					"error":  err.Error(),
				})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "ready"})
		})
		mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
			stats := processor.Stats()
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"running":           stats.IsRunning,
				"published":         stats.PublishedCount,
				"failed":            stats.FailedCount,
				"dead":              stats.DeadCount,
				"cleaned":           stats.CleanedCount,
				"lag_seconds":       stats.LagSeconds,
				"last_processed_at": stats.LastProcessedAt,
				"last_error_at":     stats.LastErrorAt,
				"last_error":        stats.LastError,
			})
		})

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	if cfg.OutboxStatsInterval > 0 {
		statsTicker := time.NewTicker(cfg.OutboxStatsInterval)
		defer statsTicker.Stop()
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-statsTicker.C:
					stats := processor.Stats()
					pending, err := container.OutboxRepo.CountPending(ctx)
					if err != nil {
						logger.Warn("failed to count pending outbox messages", "error", err)
					}
					container.Metrics.Gauge("outbox.pending", float64(pending))
					container.Metrics.Gauge("outbox.lag_seconds", stats.LagSeconds)
					logger.Info("outbox stats",
						"running", stats.IsRunning,
						"pending", pending,
						"published", stats.PublishedCount,
						"failed", stats.FailedCount,
						"dead", stats.DeadCount,
						"lag_seconds", stats.LagSeconds,
						"last_processed_at", stats.LastProcessedAt,
						"last_error", stats.LastError,
					)
				}
			}
		}()
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")

	processor.Stop()
	logger.Info("worker stopped")
}
