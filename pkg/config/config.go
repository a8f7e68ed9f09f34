package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	POS          POSConfig
	Reservations ReservationsConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = defaultSQLiteDSN
		}
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Reservations.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LITCAFE_APP_ENV" required:"true"`
	Port         string `envconfig:"LITCAFE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LITCAFE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LITCAFE_LOG_WARN_STACK" default:"false"`
	// TimeZone is used to compute business-day boundaries for sales reports.
	TimeZone       string   `envconfig:"LITCAFE_APP_TIMEZONE" default:"America/Mexico_City"`
	AllowedOrigins []string `envconfig:"LITCAFE_APP_ALLOWED_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves TimeZone, falling back to UTC when it cannot be loaded.
func (a AppConfig) Location() *time.Location {
	if strings.TrimSpace(a.TimeZone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type ServiceConfig struct {
	Kind string `envconfig:"LITCAFE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"LITCAFE_DB_DSN"`
	Driver string `envconfig:"LITCAFE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"LITCAFE_DB_HOST"`
	LegacyPort     int    `envconfig:"LITCAFE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LITCAFE_DB_USER"`
	LegacyPassword string `envconfig:"LITCAFE_DB_PASSWORD"`
	LegacyName     string `envconfig:"LITCAFE_DB_NAME"`
	LegacySSLMode  string `envconfig:"LITCAFE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LITCAFE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LITCAFE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LITCAFE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LITCAFE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQuery is the duration past which a statement is logged at warn.
	SlowQuery time.Duration `envconfig:"LITCAFE_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LITCAFE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"LITCAFE_REDIS_ADDR"`
	Password     string        `envconfig:"LITCAFE_REDIS_PASSWORD"`
	DB           int           `envconfig:"LITCAFE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LITCAFE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LITCAFE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LITCAFE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LITCAFE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LITCAFE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LITCAFE_JWT_SECRET" required:"true"`
	// PreviousSecret still verifies tokens during a secret rotation.
	PreviousSecret         string `envconfig:"LITCAFE_JWT_PREVIOUS_SECRET"`
	Issuer                 string `envconfig:"LITCAFE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LITCAFE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"LITCAFE_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"LITCAFE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LITCAFE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LITCAFE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LITCAFE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LITCAFE_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"LITCAFE_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit       int           `envconfig:"LITCAFE_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"LITCAFE_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ReservationWindow     time.Duration `envconfig:"LITCAFE_RATE_LIMIT_RESERVATION_WINDOW" default:"10m"`
	ReservationEmailLimit int           `envconfig:"LITCAFE_RATE_LIMIT_RESERVATION_EMAIL_LIMIT" default:"3"`
	ReservationIPLimit    int           `envconfig:"LITCAFE_RATE_LIMIT_RESERVATION_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"LITCAFE_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"LITCAFE_AUTO_MIGRATE" default:"false"`
	UseMemoryCarts bool `envconfig:"LITCAFE_USE_MEMORY_CARTS" default:"false"`
	ExposeMetrics  bool `envconfig:"LITCAFE_EXPOSE_METRICS" default:"true"`
}

type POSConfig struct {
	CartTTL        time.Duration `envconfig:"LITCAFE_POS_CART_TTL" default:"12h"`
	IdempotencyTTL time.Duration `envconfig:"LITCAFE_POS_IDEMPOTENCY_TTL" default:"24h"`
}

type ReservationsConfig struct {
	Backend      string        `envconfig:"LITCAFE_RESERVATIONS_BACKEND" default:"postgres"`
	Key          string        `envconfig:"LITCAFE_RESERVATIONS_KEY" default:"lit:reservations"`
	PollInterval time.Duration `envconfig:"LITCAFE_RESERVATIONS_POLL_INTERVAL" default:"5s"`
}

func (r ReservationsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(r.Backend)) {
	case ReservationsBackendPostgres, ReservationsBackendRedis:
	default:
		return fmt.Errorf("%s must be %q or %q", EnvReservationsBackend, ReservationsBackendPostgres, ReservationsBackendRedis)
	}
	if r.PollInterval <= 0 {
		return fmt.Errorf("%s must be positive", EnvReservationsPollInterval)
	}
	return nil
}

// UsesRedis reports whether reservations are kept in a redis document.
func (r ReservationsConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(r.Backend), ReservationsBackendRedis)
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"LITCAFE_CRON_INTERVAL" default:"15m"`
	LockTTL     time.Duration `envconfig:"LITCAFE_CRON_LOCK_TTL" default:"10m"`
	MetricsAddr string        `envconfig:"LITCAFE_CRON_METRICS_ADDR" default:":9102"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
