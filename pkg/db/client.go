package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db/models"
	"github.com/litcafe/backoffice/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Client owns the pooled GORM connection shared by every repository.
type Client struct {
	conn *gorm.DB
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the configured database. Postgres is the production store and
// gets its schema from the goose migrations; sqlite is for local runs and
// tests and is built from the models, with foreign keys switched on.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dialector, err := dialectorFor(driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", dialector.Name(), err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	configurePool(sqlDB, cfg)

	if driver == DriverSQLite {
		if err := conn.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("creating sqlite schema: %w", err)
		}
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", dialector.Name()), "database connection established")
	}
	return &Client{conn: conn}, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", DriverPostgres:
		return postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), nil
	case DriverSQLite:
		return sqlite.Open(withForeignKeys(dsn)), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// withForeignKeys turns on mattn/go-sqlite3's foreign key enforcement unless
// the DSN already sets it.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

func configurePool(sqlDB *sql.DB, cfg config.DBConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}

// Wrap adapts an existing GORM handle.
func Wrap(conn *gorm.DB) *Client {
	return &Client{conn: conn}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn in a transaction that commits when fn returns nil. An
// error or a panic rolls it back; the panic is re-raised.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return c.conn.WithContext(ctx).Transaction(fn)
}
