package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "LITCAFE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	ReservationsBackendPostgres = "postgres"
	ReservationsBackendRedis    = "redis"
)

const (
	EnvAppEnv                   = "LITCAFE_APP_ENV"
	EnvPort                     = "LITCAFE_APP_PORT"
	EnvLogLevel                 = "LITCAFE_LOG_LEVEL"
	EnvDBDSN                    = "LITCAFE_DB_DSN"
	EnvDBHost                   = "LITCAFE_DB_HOST"
	EnvDBUser                   = "LITCAFE_DB_USER"
	EnvDBName                   = "LITCAFE_DB_NAME"
	EnvRedisURL                 = "LITCAFE_REDIS_URL"
	EnvJWTSecret                = "LITCAFE_JWT_SECRET"
	EnvJWTIssuer                = "LITCAFE_JWT_ISSUER"
	EnvJWTExpMins               = "LITCAFE_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes   = "LITCAFE_REFRESH_TOKEN_TTL_MINUTES"
	EnvReservationsBackend      = "LITCAFE_RESERVATIONS_BACKEND"
	EnvReservationsKey          = "LITCAFE_RESERVATIONS_KEY"
	EnvReservationsPollInterval = "LITCAFE_RESERVATIONS_POLL_INTERVAL"
	EnvPOSCartTTL               = "LITCAFE_POS_CART_TTL"
	EnvUseSQLite                = "LITCAFE_USE_SQLITE"
)

// defaultSQLiteDSN is the local database file used when LITCAFE_USE_SQLITE is
// set without a DSN.
const defaultSQLiteDSN = "file:litcafe.db?_foreign_keys=on"

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
