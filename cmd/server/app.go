package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lingora/practice-api/internal/config"
	"github.com/lingora/practice-api/internal/domain/srs"
	"github.com/lingora/practice-api/internal/platform/sqlstore"
	"github.com/lingora/practice-api/internal/service/auth"
	"github.com/lingora/practice-api/internal/service/practice"
	"github.com/lingora/practice-api/internal/store"
	"github.com/lingora/practice-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	itemStore    store.ContentItemStore
	recordStore  store.SchedulingRecordStore
	sessionStore store.PracticeSessionStore

	jwtService      auth.JWTService
	srsService      srs.Service
	practiceService practice.PracticeService

	taskRunner *task.Runner
}

// newApplication creates an application instance with all dependencies
// initialized. The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
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

	app.itemStore = sqlstore.NewItemStore(db, logger)
	app.recordStore = sqlstore.NewSchedulingStore(db, logger)
	app.sessionStore = sqlstore.NewSessionStore(db, logger)

	app.srsService = srs.NewDefaultService()

	app.taskRunner = task.NewRunner(task.RunnerConfig{
		QueueSize:   cfg.Task.QueueSize,
		WorkerCount: cfg.Task.WorkerCount,
		MaxRetries:  cfg.Task.MaxRetries,
	}, logger)
	app.taskRunner.Start()

	app.practiceService = practice.NewPracticeService(
		app.itemStore,
		app.recordStore,
		app.sessionStore,
		app.srsService,
		app.taskRunner,
		logger,
	)

	logger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The task
// runner drains first so queued session writes reach the database
// before the connection closes.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}

// shutdownTimeout returns the configured graceful-shutdown window.
func (app *application) shutdownTimeout() time.Duration {
	return time.Duration(app.config.Server.ShutdownTimeout) * time.Second
}
