package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/env"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/migrate"
)

const envOutputFormat = "LITCAFE_CLI_FORMAT"

// app is what every subcommand works against.
type app struct {
	cfg  *config.Config
	logg *logger.Logger
	db   *db.Client

	close func() error
}

func (a *app) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// openApp boots config and the database. Tests swap it for a sqlite-backed app.
var openApp = func(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "litctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
		Output:      os.Stderr,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, err
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &app{cfg: cfg, logg: logg, db: client, close: client.Close}, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "litctl",
		Short:         "LitCafe back-office administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("format", env.OneOf(envOutputFormat, formatTable, formatTable, formatJSON), "output format: table|json")

	root.AddCommand(
		newEmployeeCmd(),
		newMenuCmd(),
		newInventoryCmd(),
		newCronCmd(),
	)
	return root
}

// withApp opens the app for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
