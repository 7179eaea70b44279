package main

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/lingora/practice-api/internal/config"
	"github.com/lingora/practice-api/internal/platform/database"
	"github.com/lingora/practice-api/migrations"
)

// runMigrations applies the embedded goose migrations against the
// configured database. The dialect follows the connection URL so the
// same binary migrates both postgres and SQLite deployments.
func runMigrations(ctx context.Context, cfg *config.Config, command string) error {
	dialect := "sqlite3"
	if database.IsPostgres(cfg.Database.URL) {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	goose.SetBaseFS(migrations.FS)

	db, err := database.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database for migration: %w", err)
	}
	defer func() { _ = db.Close() }()

	switch command {
	case "up":
		err = goose.UpContext(ctx, db, ".")
	case "down":
		err = goose.DownContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	return nil
}
