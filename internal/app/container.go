package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/commands"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/queries"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/application/subscribers"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/domain"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/catalogfile"
	"github.com/felixgeelhaar/atelier/internal/lifecycle/infrastructure/locking"
	sharedApplication "github.com/felixgeelhaar/atelier/internal/shared/application"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/atelier/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/atelier/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/atelier/pkg/config"
	"github.com/felixgeelhaar/atelier/pkg/observability"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Lifecycle core
	Catalog *domain.StageCatalog
	Engine  *domain.Engine
	Locker  locking.Locker

	// Repositories
	SubjectRepo domain.Repository
	AuditFeed   domain.AuditFeed
	OutboxRepo  outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork

	// Events
	EventRegistry      *eventbus.Registry
	EventPublisher     eventbus.Publisher
	ActivitySubscriber *subscribers.ActivitySubscriber

	// Outbox Processor
	OutboxProcessor *outbox.Processor

	// Command Handlers
	Mutator                   *commands.Mutator
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

	// Query Handlers
	Reader               *queries.Reader
	GetSnapshotHandler   *queries.GetSnapshotHandler
	GetTimelineHandler   *queries.GetTimelineHandler
	GetFinancialsHandler *queries.GetFinancialsHandler
	ListSubjectsHandler  *queries.ListSubjectsHandler
	ListAuditFeedHandler *queries.ListAuditFeedHandler
}

// NewContainer creates and wires all dependencies. Without DATABASE_URL it
// runs against a local SQLite file; Redis and RabbitMQ are optional in
// development and required in production when configured.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	catalog, err := catalogfile.LoadOrDefault(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage catalog: %w", err)
	}
	skip, err := domain.ParseSkipPolicy(cfg.SkipPolicy)
	if err != nil {
		return nil, err
	}
	c.Catalog = catalog
	c.Engine = domain.NewEngine(catalog, domain.NewRolePolicy(), domain.Options{SkipPolicy: skip})

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initLocker(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}

	// Create command handlers
	c.Mutator = commands.NewMutator(c.Engine, c.SubjectRepo, c.AuditFeed, c.OutboxRepo, c.UnitOfWork, c.Locker, logger, c.Metrics)
	c.CreateSubjectHandler = commands.NewCreateSubjectHandler(c.Mutator)
	c.TransitionStageHandler = commands.NewTransitionStageHandler(c.Mutator)
	c.CompleteSubStageHandler = commands.NewCompleteSubStageHandler(c.Mutator)
	c.UpdatePercentageHandler = commands.NewUpdatePercentageHandler(c.Mutator)
	c.ChangeHoldStatusHandler = commands.NewChangeHoldStatusHandler(c.Mutator)
	c.RecordPaymentHandler = commands.NewRecordPaymentHandler(c.Mutator)
	c.DeletePaymentHandler = commands.NewDeletePaymentHandler(c.Mutator)
	c.UpdateProjectValueHandler = commands.NewUpdateProjectValueHandler(c.Mutator)
	c.ConfigureScheduleHandler = commands.NewConfigureScheduleHandler(c.Mutator)
	c.SetExpectedDateHandler = commands.NewSetExpectedDateHandler(c.Mutator)
	c.AddCommentHandler = commands.NewAddCommentHandler(c.Mutator)

	// Create query handlers
	c.Reader = queries.NewReader(c.Engine, c.SubjectRepo, c.AuditFeed, logger, c.Metrics)
	c.GetSnapshotHandler = queries.NewGetSnapshotHandler(c.Reader)
	c.GetTimelineHandler = queries.NewGetTimelineHandler(c.Reader)
	c.GetFinancialsHandler = queries.NewGetFinancialsHandler(c.Reader)
	c.ListSubjectsHandler = queries.NewListSubjectsHandler(c.Reader)
	c.ListAuditFeedHandler = queries.NewListAuditFeedHandler(c.Reader)

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"redis_lock", c.RedisClient != nil,
		"skip_policy", skip,
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	cfg := c.Config
	conn, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MaxConns:   cfg.DatabaseConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		c.Logger.Info("migrations applied", "versions", applied)
	}

	factory, err := NewRepositoryFactory(conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	c.SubjectRepo = factory.SubjectRepository()
	c.AuditFeed = factory.AuditFeed()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))

	c.Logger.Info("connected to database", "driver", c.DBDriver)
	return nil
}

// initLocker picks the Redis lock when Redis is reachable and falls back to
// the in-process mutex in development.
func (c *Container) initLocker(ctx context.Context) error {
	cfg := c.Config
	c.Locker = locking.NewKeyedMutex()
	if !cfg.UsesRedis() {
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, using in-process subject locks", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, using in-process subject locks", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Locker = locking.NewRedisLocker(client, locking.RedisConfig{
		TTL:     cfg.LockTTL,
		MaxWait: cfg.LockWait,
	}, c.Logger)
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

// initEvents builds the publisher the outbox processor drains into.
func (c *Container) initEvents() error {
	cfg := c.Config
	c.EventRegistry = eventbus.NewRegistry(c.Logger)
	c.ActivitySubscriber = subscribers.NewActivitySubscriber(c.Logger, c.Metrics)
	c.EventRegistry.Register(c.ActivitySubscriber)

	if cfg.UsesRabbitMQ() {
		failures, err := convert.AtLeastUint32(cfg.BreakerFailures, 1)
		if err != nil {
			return fmt.Errorf("invalid BREAKER_FAILURES: %w", err)
		}
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
		switch {
		case err == nil:
			c.EventPublisher = eventbus.NewBreakerPublisher(publisher, eventbus.BreakerConfig{
				ConsecutiveFailures: failures,
				OpenTimeout:         cfg.BreakerOpenTimeout,
				HalfOpenRequests:    1,
			}, c.Logger)
			c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Healthy))
		case cfg.IsDevelopment():
			c.Logger.Warn("RabbitMQ not available, dispatching events in process", "error", err)
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}
	if c.EventPublisher == nil {
		c.EventPublisher = eventbus.NewInProcessBus(c.EventRegistry, true, c.Logger)
	}

	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        cfg.OutboxRetention(),
		CleanupInterval:  cfg.OutboxCleanupInterval,
	}, c.Logger)
	return nil
}

// Actor returns the identity configured for CLI and MCP calls.
func (c *Container) Actor() (domain.Actor, error) {
	id, err := uuid.Parse(c.Config.ActorID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid ATELIER_ACTOR_ID: %w", err)
	}
	role, err := domain.ParseRole(c.Config.ActorRole)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{ID: id, Role: role}, nil
}

// Close releases all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis client", "error", err)
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database", "error", err)
		}
	}
}
