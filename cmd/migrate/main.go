package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.EmbeddedDir, "migrations directory; empty uses the files compiled into the binary")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	// create and validate only touch files
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("-name is required")
		}
		dir := opts.dir
		if dir == migrate.EmbeddedDir {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		var err error
		if opts.dir == migrate.EmbeddedDir {
			err = migrate.ValidateFS(migrate.Embedded())
		} else {
			err = migrate.ValidateDir(opts.dir)
		}
		if err != nil {
			return err
		}
		fmt.Println("migrations valid")
		return nil
	case "version":
		if opts.version == "" {
			return errors.New("-version is required")
		}
	case "up", "down", "status":
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DB.Driver == db.DriverSQLite {
		return errors.New("sqlite schemas are built from the models; nothing to migrate")
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})
	ctx = logg.WithFields(ctx, map[string]any{"cmd": opts.cmd, "dir": opts.dir})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}

	logg.Info(ctx, "migrate.start")
	if err := apply(ctx, sqlDB, opts); err != nil {
		logg.Error(ctx, "migrate.failed", err)
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}

func apply(ctx context.Context, sqlDB *sql.DB, opts options) error {
	if opts.cmd == "version" {
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
}
