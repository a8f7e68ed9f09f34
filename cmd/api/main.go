package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/litcafe/backoffice/api"
	"github.com/litcafe/backoffice/api/routes"
	"github.com/litcafe/backoffice/internal/auth"
	"github.com/litcafe/backoffice/internal/cart"
	"github.com/litcafe/backoffice/internal/catalog"
	"github.com/litcafe/backoffice/internal/dashboard"
	"github.com/litcafe/backoffice/internal/employees"
	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/internal/reservations"
	"github.com/litcafe/backoffice/internal/sales"
	"github.com/litcafe/backoffice/internal/suppliers"
	"github.com/litcafe/backoffice/pkg/auth/session"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/metrics"
	"github.com/litcafe/backoffice/pkg/migrate"
	"github.com/litcafe/backoffice/pkg/redis"
	"github.com/litcafe/backoffice/pkg/ws"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"serviceKind": cfg.Service.Kind,
	})

	if err := run(ctx, cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loc := cfg.App.Location()
	conn := dbClient.DB()

	employeeRepo := employees.NewRepository(conn)
	employeeService, err := employees.NewService(employeeRepo, cfg.Password)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Employees:      employeeRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	catalogRepo := catalog.NewRepository(conn)
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		return err
	}

	supplierRepo := suppliers.NewRepository(conn)
	supplierService, err := suppliers.NewService(supplierRepo)
	if err != nil {
		return err
	}
	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), supplierRepo)
	if err != nil {
		return err
	}

	var cartStore cart.SessionStore
	if cfg.FeatureFlags.UseMemoryCarts {
		logg.Warn(ctx, "cart sessions kept in process memory")
		cartStore = cart.NewMemoryStore()
	} else {
		redisCarts, err := cart.NewRedisStore(redisClient, cfg.POS.CartTTL)
		if err != nil {
			return err
		}
		cartStore = redisCarts
	}
	cartService, err := cart.NewService(cartStore, catalogRepo)
	if err != nil {
		return err
	}

	salesRepo := sales.NewRepository(conn)
	salesService, err := sales.NewService(salesRepo, loc)
	if err != nil {
		return err
	}
	submitter, err := sales.NewSubmitter(salesRepo, dbClient, metrics.NewSaleMetrics(registry), logg)
	if err != nil {
		return err
	}
	checkout, err := sales.NewCheckout(cartService, submitter, logg)
	if err != nil {
		return err
	}

	dashboardService, err := dashboard.NewService(salesService, inventoryService, employeeService, loc)
	if err != nil {
		return err
	}

	var reservationRepo reservations.Repository
	if cfg.Reservations.UsesRedis() {
		redisReservations, err := reservations.NewRedisRepository(redisClient, cfg.Reservations.Key)
		if err != nil {
			return err
		}
		reservationRepo = redisReservations
	} else {
		reservationRepo = reservations.NewGormRepository(conn)
	}
	reservationService, err := reservations.NewService(reservationRepo, logg)
	if err != nil {
		return err
	}

	hub := ws.NewHub(logg, cfg.App.AllowedOrigins)
	defer func() {
		if err := hub.Close(); err != nil {
			logg.Error(ctx, "error closing websocket hub", err)
		}
	}()
	watcher, err := reservations.NewWatcher(reservationService, cfg.Reservations.PollInterval, hub, logg)
	if err != nil {
		return err
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "reservation watcher stopped", err)
		}
	}()

	router := routes.NewRouter(cfg, logg, routes.Dependencies{
		DB:                dbClient,
		Redis:             redisClient,
		Cache:             redisClient,
		Sessions:          sessionManager,
		Gatherer:          registry,
		HTTPMetrics:       metrics.NewHTTPMetrics(registry),
		Auth:              authService,
		Catalog:           catalogService,
		Carts:             cartService,
		Checkout:          checkout,
		Sales:             salesService,
		Inventory:         inventoryService,
		Suppliers:         supplierService,
		Employees:         employeeService,
		Dashboard:         dashboardService,
		Reservations:      reservationService,
		ReservationFeed:   watcher,
		ReservationStream: hub,
	})

	logg.Info(logg.WithFields(ctx, map[string]any{
		"reservations_backend": cfg.Reservations.Backend,
		"db_driver":            cfg.DB.Driver,
	}), "starting api server")
	return api.Serve(ctx, api.NewServer(cfg, router), logg)
}
