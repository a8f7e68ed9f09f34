package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litcafe/backoffice/api/controllers"
	"github.com/litcafe/backoffice/api/middleware"
	"github.com/litcafe/backoffice/internal/auth"
	"github.com/litcafe/backoffice/internal/cart"
	"github.com/litcafe/backoffice/internal/catalog"
	"github.com/litcafe/backoffice/internal/dashboard"
	"github.com/litcafe/backoffice/internal/employees"
	"github.com/litcafe/backoffice/internal/inventory"
	"github.com/litcafe/backoffice/internal/sales"
	"github.com/litcafe/backoffice/internal/suppliers"
	"github.com/litcafe/backoffice/pkg/auth/session"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/logger"
	"github.com/litcafe/backoffice/pkg/metrics"
	pkgredis "github.com/litcafe/backoffice/pkg/redis"
)

// Cache is the redis surface shared by the rate limiter and the
// idempotency guard.
type Cache interface {
	pkgredis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies carries everything the HTTP surface is built from. Nil
// services answer 500 on their routes.
type Dependencies struct {
	DB       controllers.Pinger
	Redis    controllers.Pinger
	Cache    Cache
	Sessions session.AccessSessionChecker

	// Gatherer serves /metrics when metrics are exposed; HTTPMetrics
	// records request latencies into it.
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics

	Auth         auth.Service
	Catalog      catalog.Service
	Carts        cart.Service
	Checkout     controllers.SaleSubmitter
	Sales        sales.Service
	Inventory    inventory.Service
	Suppliers    suppliers.Service
	Employees    employees.Service
	Dashboard    dashboard.Service
	Reservations controllers.ReservationService

	ReservationFeed   controllers.SnapshotSource
	ReservationStream controllers.StreamServer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins, cfg.App.IsDev()),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
	)

	loginPolicy := middleware.NewRateLimitPolicy(
		"login",
		cfg.RateLimit.LoginWindow,
		cfg.RateLimit.LoginIPLimit,
		cfg.RateLimit.LoginEmailLimit,
	)
	reservationPolicy := middleware.NewRateLimitPolicy(
		"reservation",
		cfg.RateLimit.ReservationWindow,
		cfg.RateLimit.ReservationIPLimit,
		cfg.RateLimit.ReservationEmailLimit,
	)
	loc := cfg.App.Location()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})
	if cfg.FeatureFlags.ExposeMetrics && deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public/v1", func(r chi.Router) {
		r.Get("/menu", controllers.MenuAvailable(deps.Catalog, logg))
		r.With(middleware.RateLimit(reservationPolicy, deps.Cache, logg)).
			Post("/reservations", controllers.ReservationCreate(deps.Reservations, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(loginPolicy, deps.Cache, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, deps.Sessions, logg)).Get("/me", controllers.AuthMe(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		// route patterns are only complete once chi has matched the endpoint
		idempotent := middleware.Idempotency(deps.Cache, cfg.POS.IdempotencyTTL, logg)

		r.Route("/pos", func(r chi.Router) {
			r.Get("/menu", controllers.MenuAvailable(deps.Catalog, logg))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(deps.Carts, logg))
				r.Delete("/", controllers.CartClear(deps.Carts, logg))
				r.Post("/items", controllers.CartAddItem(deps.Carts, logg))
				r.Put("/items/{dishId}", controllers.CartUpdateItem(deps.Carts, logg))
				r.Delete("/items/{dishId}", controllers.CartRemoveItem(deps.Carts, logg))
			})
			r.With(idempotent).Post("/sales", controllers.SaleSubmit(deps.Checkout, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireManager(logg))

			r.Route("/menu", func(r chi.Router) {
				r.Get("/", controllers.MenuList(deps.Catalog, logg))
				r.Post("/", controllers.MenuCreate(deps.Catalog, logg))
				r.Get("/{id}", controllers.MenuGet(deps.Catalog, logg))
				r.Put("/{id}", controllers.MenuUpdate(deps.Catalog, logg))
				r.Delete("/{id}", controllers.MenuDelete(deps.Catalog, logg))
				r.Patch("/{id}/availability", controllers.MenuToggleAvailability(deps.Catalog, logg))
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", controllers.InventoryList(deps.Inventory, logg))
				r.Post("/", controllers.InventoryCreate(deps.Inventory, logg))
				r.Get("/low-stock", controllers.InventoryLowStock(deps.Inventory, logg))
				r.Get("/{id}", controllers.InventoryGet(deps.Inventory, logg))
				r.Put("/{id}", controllers.InventoryUpdate(deps.Inventory, logg))
				r.Delete("/{id}", controllers.InventoryDelete(deps.Inventory, logg))
				r.With(idempotent).Post("/{id}/adjust", controllers.InventoryAdjust(deps.Inventory, logg))
				r.Put("/{id}/stock", controllers.InventorySetStock(deps.Inventory, logg))
			})

			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", controllers.SupplierList(deps.Suppliers, logg))
				r.Post("/", controllers.SupplierCreate(deps.Suppliers, logg))
				r.Get("/{id}", controllers.SupplierGet(deps.Suppliers, logg))
				r.Put("/{id}", controllers.SupplierUpdate(deps.Suppliers, logg))
				r.Delete("/{id}", controllers.SupplierDelete(deps.Suppliers, logg))
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", controllers.EmployeeList(deps.Employees, logg))
				r.Post("/", controllers.EmployeeCreate(deps.Employees, logg))
				r.Get("/{id}", controllers.EmployeeGet(deps.Employees, logg))
				r.Put("/{id}", controllers.EmployeeUpdate(deps.Employees, logg))
				r.Delete("/{id}", controllers.EmployeeDelete(deps.Employees, logg))
				r.Put("/{id}/password", controllers.EmployeeSetPassword(deps.Employees, logg))
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", controllers.SaleList(deps.Sales, loc, logg))
				r.Get("/export", controllers.SaleExport(deps.Sales, loc, logg))
				r.Get("/{id}", controllers.SaleGet(deps.Sales, logg))
			})

			r.Get("/dashboard", controllers.DashboardSummary(deps.Dashboard, logg))

			r.Route("/reservations", func(r chi.Router) {
				r.Get("/", controllers.ReservationList(deps.Reservations, logg))
				r.Get("/stats", controllers.ReservationStats(deps.Reservations, logg))
				r.Get("/stream", controllers.ReservationStream(deps.ReservationStream, deps.ReservationFeed, logg))
				r.Post("/{id}/accept", controllers.ReservationAccept(deps.Reservations, logg))
				r.Post("/{id}/reject", controllers.ReservationReject(deps.Reservations, logg))
			})
		})
	})

	return r
}
