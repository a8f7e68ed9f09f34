package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/litcafe/backoffice/internal/cron"
	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/internal/sales"
	"github.com/litcafe/backoffice/internal/suppliers"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/metrics"
	"github.com/litcafe/backoffice/pkg/migrate"
	"github.com/litcafe/backoffice/pkg/redis"
)

const lockName = "cron-worker"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.New(logger.Options{ServiceName: "cron-worker"}).Error(context.Background(), "cron worker stopped", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Service.Kind = "cron-worker"

	logg := logger.New(logger.Options{
		ServiceName: cfg.Service.Kind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	service, jobNames, err := buildService(cfg, logg, dbClient, redisClient, registry)
	if err != nil {
		return err
	}
	ctx = logg.WithFields(ctx, map[string]any{"jobs": jobNames})

	stopMetrics := serveMetrics(ctx, logg, cfg.Cron.MetricsAddr, registry)
	defer stopMetrics()

	logg.Info(ctx, "cron.worker_started")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logg.Info(ctx, "cron.worker_stopped")
	return nil
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, registry *prometheus.Registry) (*cron.Service, []string, error) {
	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), suppliers.NewRepository(dbClient.DB()))
	if err != nil {
		return nil, nil, err
	}
	jobs, err := cron.NewStandardRegistry(cron.StandardJobsParams{
		Logger:    logg,
		Inventory: inventoryService,
		Sales:     sales.NewRepository(dbClient.DB()),
		Gauges:    metrics.NewInventoryMetrics(registry),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("register jobs: %w", err)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), cfg.Cron.LockTTL)
	if err != nil {
		return nil, nil, err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(registry),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		return nil, nil, err
	}
	return service, jobs.Names(), nil
}

// serveMetrics exposes registry on addr until the returned func is called.
func serveMetrics(ctx context.Context, logg *logger.Logger, addr string, registry *prometheus.Registry) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "cron.metrics_server_failed", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
