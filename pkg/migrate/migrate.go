package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/litcafe/backoffice/pkg/config"
	pkgdb "github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/migrate/migrations"
	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migrations are written on disk.
const DefaultDir = "pkg/migrate/migrations"

// EmbeddedDir selects the migrations compiled into the binary.
const EmbeddedDir = ""

const dialect = "postgres"

// Run executes a standard goose command that requires a DB connection. An
// empty dir runs the embedded migrations.
func Run(ctx context.Context, db *sql.DB, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dir, err := prepare(dir)
	if err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	dir, err = prepare(dir)
	if err != nil {
		return err
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}

// prepare points goose at either the embedded FS or the filesystem and
// returns the directory goose should read.
func prepare(dir string) (string, error) {
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == EmbeddedDir {
		goose.SetBaseFS(migrations.FS)
		return ".", nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}

// Embedded exposes the compiled-in migrations for validation.
func Embedded() fs.FS {
	return migrations.FS
}

// MaybeRunDev brings a dev postgres database up to the embedded head when
// the auto-migrate flag is on. Other environments, and sqlite databases
// whose schema comes from the models, are left alone.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *pkgdb.Client) error {
	switch {
	case !cfg.App.IsDev(), !cfg.FeatureFlags.AutoMigrate, cfg.DB.Driver == pkgdb.DriverSQLite:
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	if _, err := prepare(EmbeddedDir); err != nil {
		return err
	}
	before, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	if err := Run(ctx, sqlDB, EmbeddedDir, "up"); err != nil {
		return err
	}
	after, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"from_version": before,
		"to_version":   after,
	}), "dev migrations applied")
	return nil
}
