package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/fluentpath/fluent-api/internal/api"
	"github.com/fluentpath/fluent-api/internal/catalog"
	"github.com/fluentpath/fluent-api/internal/config"
	"github.com/fluentpath/fluent-api/internal/domain/badge"
	"github.com/fluentpath/fluent-api/internal/domain/exercise"
	"github.com/fluentpath/fluent-api/internal/domain/mastery"
	"github.com/fluentpath/fluent-api/internal/events"
	"github.com/fluentpath/fluent-api/internal/platform/postgres"
	"github.com/fluentpath/fluent-api/internal/platform/redis"
	"github.com/fluentpath/fluent-api/internal/service"
	"github.com/fluentpath/fluent-api/internal/service/auth"
	"github.com/fluentpath/fluent-api/internal/service/practice"
	"github.com/fluentpath/fluent-api/internal/store"
	"github.com/fluentpath/fluent-api/internal/task"
)

const eventTaskTimeout = 10 * time.Second

// application holds the wired dependencies of the API server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db    *sql.DB
	redis *goredis.Client

	jwtService auth.JWTService

	mastery      service.MasteryTracker
	activity     service.ActivityAggregator
	lessons      service.LessonGate
	achievements service.AchievementEvaluator
	plans        service.PlanGate
	practice     practice.Service

	eventEmitter events.EventEmitter
	taskQueue    *task.TaskQueue
	workerPool   *task.WorkerPool
}

// newApplication wires stores, services and the event emitter. db must be
// an open, pinged connection; newApplication does not close it on failure.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Duration("token_lifetime", cfg.Auth.TokenLifetime))

	content, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load content catalog: %w", err)
	}
	badges, err := badge.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}
	logger.Info("catalogs loaded",
		slog.Int("lessons", len(content.Lessons())),
		slog.Int("levels", len(content.Levels())),
		slog.Int("badges", len(badges.All())))

	progressStore := postgres.NewPostgresProgressStore(db, logger)
	activityStore := postgres.NewPostgresActivityStore(db, logger)
	lessonStore := postgres.NewPostgresLessonStore(db, logger)
	achievementStore := postgres.NewPostgresAchievementStore(db, logger)
	profileStore := postgres.NewPostgresProfileStore(db, logger)

	counter, err := app.usageCounter(ctx)
	if err != nil {
		return nil, err
	}

	app.taskQueue = task.NewTaskQueue(cfg.Events.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Events.Workers,
		TaskTimeout: eventTaskTimeout,
	}, logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(task.NewEventDispatcher(app.taskQueue, logger, events.NewLogHandler(logger)))
	app.eventEmitter = emitter

	loc := cfg.Engine.Location()

	if app.mastery, err = service.NewMasteryTracker(progressStore, content, mastery.DefaultParams(), logger); err != nil {
		return nil, fmt.Errorf("failed to create mastery tracker: %w", err)
	}
	if app.activity, err = service.NewActivityAggregator(
		activityStore, profileStore, loc, cfg.Engine.DefaultDailyGoal, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create activity aggregator: %w", err)
	}
	if app.lessons, err = service.NewLessonGate(lessonStore, progressStore, profileStore, content, logger); err != nil {
		return nil, fmt.Errorf("failed to create lesson gate: %w", err)
	}
	if app.achievements, err = service.NewAchievementEvaluator(
		achievementStore, progressStore, profileStore, app.activity, badges, app.eventEmitter, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create achievement evaluator: %w", err)
	}
	if app.plans, err = service.NewPlanGate(profileStore, lessonStore, progressStore, counter, loc, logger); err != nil {
		return nil, fmt.Errorf("failed to create plan gate: %w", err)
	}

	app.practice, err = practice.NewService(practice.Deps{
		Catalog:          content,
		Evaluator:        exercise.NewDefaultEvaluator(),
		Profiles:         profileStore,
		Mastery:          app.mastery,
		Activity:         app.activity,
		Lessons:          app.lessons,
		Achievements:     app.achievements,
		Plans:            app.plans,
		DefaultDailyGoal: cfg.Engine.DefaultDailyGoal,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create practice service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// usageCounter returns the Redis counter when redis.url is configured and
// the Postgres counter otherwise.
func (app *application) usageCounter(ctx context.Context) (store.UsageCounter, error) {
	if app.config.Redis.URL == "" {
		app.logger.Info("using postgres usage counter")
		return postgres.NewPostgresUsageCounter(app.db, app.logger), nil
	}

	client, err := redis.Connect(ctx, app.config.Redis.URL)
	if err != nil {
		return nil, err
	}
	app.redis = client
	app.logger.Info("using redis usage counter")
	return redis.NewUsageCounter(client, app.logger), nil
}

// healthChecks lists the dependencies probed by GET /health.
func (app *application) healthChecks() map[string]api.HealthCheck {
	checks := map[string]api.HealthCheck{}
	if app.db != nil {
		checks["postgres"] = app.db.PingContext
	}
	if app.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return app.redis.Ping(ctx).Err() }
	}
	return checks
}

// Run starts the event workers and serves HTTP until ctx is cancelled, then
// shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if app.workerPool != nil {
		app.workerPool.Start()
	}
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup drains queued events and releases connections held by the
// application. Events still queued when ctx expires are dropped.
func (app *application) cleanup(ctx context.Context) {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		if err := app.workerPool.Stop(ctx); err != nil {
			app.logger.Warn("event delivery stopped early", slog.String("error", err.Error()))
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis connection", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
}
