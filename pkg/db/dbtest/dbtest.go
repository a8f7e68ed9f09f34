// Package dbtest opens throwaway sqlite databases for package tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/litcafe/backoffice/pkg/config"
	"github.com/litcafe/backoffice/pkg/db"
)

// New returns a client bound to a private in-memory sqlite database with the
// full schema applied. The database is dropped when the test ends.
func New(t testing.TB) *db.Client {
	t.Helper()
	cfg := config.DBConfig{
		Driver:       db.DriverSQLite,
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		MaxOpenConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}
