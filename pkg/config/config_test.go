package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "ATELIER_ACTOR_ID", "ATELIER_ACTOR_ROLE",
	"DATABASE_URL", "DATABASE_DRIVER", "SQLITE_PATH", "ATELIER_LOCAL_MODE", "DATABASE_MAX_CONNS",
	"REDIS_URL", "RABBITMQ_URL",
	"ATELIER_CATALOG_FILE", "ATELIER_SKIP_POLICY", "LOCK_TTL", "LOCK_WAIT",
	"OUTBOX_POLL_INTERVAL", "OUTBOX_BATCH_SIZE", "OUTBOX_MAX_RETRIES",
	"OUTBOX_STATS_INTERVAL", "OUTBOX_RETENTION_DAYS", "OUTBOX_CLEANUP_INTERVAL",
	"OUTBOX_PROCESSOR_ENABLED", "BREAKER_FAILURES", "BREAKER_OPEN_TIMEOUT",
	"WORKER_HEALTH_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN",
}

// clearEnv blanks every variable Load reads. getEnv treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", cfg.ActorID)
	assert.Equal(t, "admin", cfg.ActorRole)

	// Local mode is enabled by default when no DATABASE_URL is set
	assert.True(t, cfg.LocalMode)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.False(t, cfg.UsesRedis())
	assert.False(t, cfg.UsesRabbitMQ())

	assert.Equal(t, "allow", cfg.SkipPolicy)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, 10*time.Second, cfg.LockWait)

	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 5, cfg.OutboxMaxRetries)
	assert.Equal(t, 7*24*time.Hour, cfg.OutboxRetention())
	assert.True(t, cfg.OutboxProcessorEnabled)

	assert.Equal(t, 5, cfg.BreakerFailures)
	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)
	assert.Equal(t, "0.0.0.0:8082", cfg.MCPAddr)
	assert.Equal(t, "", cfg.MCPAuthToken)
}

func TestLoad_WithCustomEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ATELIER_ACTOR_ROLE", "designer")
	t.Setenv("ATELIER_SKIP_POLICY", "require-groups")
	t.Setenv("LOCK_WAIT", "2s")
	t.Setenv("OUTBOX_BATCH_SIZE", "200")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "false")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "designer", cfg.ActorRole)
	assert.Equal(t, "require-groups", cfg.SkipPolicy)
	assert.Equal(t, 2*time.Second, cfg.LockWait)
	assert.Equal(t, 200, cfg.OutboxBatchSize)
	assert.False(t, cfg.OutboxProcessorEnabled)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTBOX_BATCH_SIZE", "lots")
	t.Setenv("LOCK_TTL", "forever")
	t.Setenv("OUTBOX_PROCESSOR_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.True(t, cfg.OutboxProcessorEnabled)
}

func TestLoad_DatabaseSelection(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		driver    string
		local     string
		wantLocal bool
		want      string
	}{
		{name: "server url", url: "postgres://u:p@db:5432/atelier", wantLocal: false, want: "postgres"},
		{name: "explicit local mode wins", url: "postgres://u:p@db:5432/atelier", local: "true", wantLocal: true, want: "sqlite"},
		{name: "explicit driver", url: "postgres://u:p@db:5432/atelier", driver: "POSTGRES", wantLocal: false, want: "postgres"},
		{name: "no url", wantLocal: true, want: "sqlite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", tt.url)
			t.Setenv("DATABASE_DRIVER", tt.driver)
			t.Setenv("ATELIER_LOCAL_MODE", tt.local)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.wantLocal, cfg.LocalMode)
			assert.Equal(t, tt.want, cfg.DatabaseDriver)
		})
	}
}

func TestConfig_Environment(t *testing.T) {
	tests := []struct {
		appEnv string
		dev    bool
		prod   bool
	}{
		{"development", true, false},
		{"production", false, true},
		{"staging", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.appEnv, func(t *testing.T) {
			cfg := &Config{AppEnv: tt.appEnv}
			assert.Equal(t, tt.dev, cfg.IsDevelopment())
			assert.Equal(t, tt.prod, cfg.IsProduction())
		})
	}
}
