package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/litcafe/backoffice/internal/catalog"
	"github.com/litcafe/backoffice/internal/sales"
	pkgAuth "github.com/litcafe/backoffice/pkg/auth"
	"github.com/litcafe/backoffice/pkg/auth/session"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/enums"
	"github.com/litcafe/backoffice/pkg/metrics"
	pkgredis "github.com/litcafe/backoffice/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubCatalog struct {
	catalog.Service
}

func (stubCatalog) ListAvailable(context.Context, *enums.DishCategory) ([]catalog.DishDTO, error) {
	return []catalog.DishDTO{}, nil
}

func (stubCatalog) List(context.Context) ([]catalog.DishDTO, error) {
	return []catalog.DishDTO{}, nil
}

type stubCheckout struct {
	mu    sync.Mutex
	calls int
}

func (s *stubCheckout) Submit(_ context.Context, employeeID uuid.UUID, method enums.PaymentMethod) (*sales.SaleDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return &sales.SaleDTO{ID: uuid.New(), EmployeeID: employeeID, PaymentMethod: method}, nil
}

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	counts map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string]string{}, counts: map[string]int64{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	if !ok {
		return "", pkgredis.ErrNil
	}
	return v, nil
}

func (c *memoryCache) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = fmt.Sprint(value)
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = fmt.Sprint(value)
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memoryCache) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[scope]++
	return c.counts[scope] <= limit, c.counts[scope], nil
}

func (c *memoryCache) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", TimeZone: "UTC"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "litcafe", ExpirationMinutes: 60},
		RateLimit: config.RateLimitConfig{
			LoginWindow:           time.Minute,
			LoginIPLimit:          2,
			LoginEmailLimit:       2,
			ReservationWindow:     time.Minute,
			ReservationIPLimit:    5,
			ReservationEmailLimit: 5,
		},
		FeatureFlags: config.FeatureFlagsConfig{ExposeMetrics: true},
	}
}

func testDependencies() Dependencies {
	reg := prometheus.NewRegistry()
	return Dependencies{
		DB:          stubPinger{},
		Redis:       stubPinger{},
		Cache:       newMemoryCache(),
		Sessions:    stubSessions{},
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Catalog:     stubCatalog{},
		Checkout:    &stubCheckout{},
	}
}

func bearer(t *testing.T, cfg *config.Config, role enums.EmployeeRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		EmployeeID: uuid.New(),
		Role:       role,
		JTI:        session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func serve(handler http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, nil, testDependencies())

	if resp := serve(router, http.MethodGet, "/health/live", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/health/ready", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", resp.Code)
	}
	resp := serve(router, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "litcafe_http_request") {
		t.Fatalf("expected http metrics in exposition, got %s", resp.Body.String())
	}
}

func TestMetricsHiddenWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureFlags.ExposeMetrics = false
	router := NewRouter(cfg, nil, testDependencies())

	if resp := serve(router, http.MethodGet, "/metrics", "", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestPublicMenuNeedsNoAuth(t *testing.T) {
	router := NewRouter(testConfig(), nil, testDependencies())

	if resp := serve(router, http.MethodGet, "/api/public/v1/menu?category=todos", "", ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPOSRequiresAuthentication(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, nil, testDependencies())

	if resp := serve(router, http.MethodGet, "/api/v1/pos/menu", "", ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/pos/menu", bearer(t, cfg, enums.EmployeeRoleCashier), ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestManagerRoutesRejectCashiers(t *testing.T) {
	cfg := testConfig()
	router := NewRouter(cfg, nil, testDependencies())

	if resp := serve(router, http.MethodGet, "/api/v1/menu", bearer(t, cfg, enums.EmployeeRoleCashier), ""); resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if resp := serve(router, http.MethodGet, "/api/v1/menu", bearer(t, cfg, enums.EmployeeRoleManager), ""); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSaleSubmitIsIdempotent(t *testing.T) {
	cfg := testConfig()
	deps := testDependencies()
	checkout := &stubCheckout{}
	deps.Checkout = checkout
	router := NewRouter(cfg, nil, deps)
	token := bearer(t, cfg, enums.EmployeeRoleCashier)

	if resp := serve(router, http.MethodPost, "/api/v1/pos/sales", token, `{"payment_method":"cash"}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("missing key: expected 400 got %d", resp.Code)
	}

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pos/sales", strings.NewReader(`{"payment_method":"cash"}`))
		req.Header.Set("Authorization", token)
		req.Header.Set("Idempotency-Key", "ticket-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}
	first := send()
	second := send()
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201 twice got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected replayed body")
	}
	if checkout.calls != 1 {
		t.Fatalf("expected one submission got %d", checkout.calls)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	router := NewRouter(testConfig(), nil, testDependencies())

	var last int
	for i := 0; i < 3; i++ {
		last = serve(router, http.MethodPost, "/api/v1/auth/login", "", `{"email":"ana@litcafe.mx","password":"x"}`).Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third attempt got %d", last)
	}
}

func TestRoutesRegistered(t *testing.T) {
	router, ok := NewRouter(testConfig(), nil, testDependencies()).(chi.Routes)
	if !ok {
		t.Fatalf("expected chi router")
	}
	registered := map[string]bool{}
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+strings.TrimSuffix(route, "/")] = true
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	want := []string{
		"GET /api/public/v1/menu",
		"POST /api/public/v1/reservations",
		"POST /api/v1/auth/login",
		"POST /api/v1/auth/refresh",
		"POST /api/v1/auth/logout",
		"GET /api/v1/auth/me",
		"GET /api/v1/pos/cart",
		"DELETE /api/v1/pos/cart",
		"POST /api/v1/pos/cart/items",
		"PUT /api/v1/pos/cart/items/{dishId}",
		"DELETE /api/v1/pos/cart/items/{dishId}",
		"POST /api/v1/pos/sales",
		"PATCH /api/v1/menu/{id}/availability",
		"POST /api/v1/inventory/{id}/adjust",
		"PUT /api/v1/inventory/{id}/stock",
		"GET /api/v1/inventory/low-stock",
		"DELETE /api/v1/suppliers/{id}",
		"PUT /api/v1/employees/{id}",
		"GET /api/v1/sales",
		"GET /api/v1/sales/export",
		"GET /api/v1/sales/{id}",
		"GET /api/v1/dashboard",
		"GET /api/v1/reservations",
		"GET /api/v1/reservations/stats",
		"GET /api/v1/reservations/stream",
		"POST /api/v1/reservations/{id}/accept",
		"POST /api/v1/reservations/{id}/reject",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s not registered", route)
		}
	}
}
