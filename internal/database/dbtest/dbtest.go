// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/justsurfingit/job-trends-api/internal/config"
	"github.com/justsurfingit/job-trends-api/internal/database"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New returns a migrated sqlite database private to tb. A single pooled
// connection keeps the in-memory database alive until tb finishes.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, seq.Add(1))

	db, err := database.Connect(context.Background(), database.Options{
		Driver:       config.DriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     "silent",
	}, zap.NewNop())
	if err != nil {
		tb.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test database: %v", err)
	}

	tb.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
