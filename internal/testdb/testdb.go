// Package testdb opens the Postgres database used by integration tests.
//
// Tests call Open, which skips the test when no database is configured, and
// WithTx to run statements inside a transaction that is always rolled back.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/fluentpath/fluent-api/internal/config"
	"github.com/fluentpath/fluent-api/internal/platform/postgres"
	"github.com/fluentpath/fluent-api/internal/redact"
)

// Environment variables consulted for the test database URL, in order.
var urlEnvVars = []string{"DATABASE_URL", "FLUENT_DATABASE_URL"}

const setupTimeout = 30 * time.Second

// DatabaseURL returns the first configured test database URL, or "".
func DatabaseURL() string {
	for _, name := range urlEnvVars {
		if url := os.Getenv(name); url != "" {
			return url
		}
	}
	return ""
}

// Open connects to the test database and applies all migrations. It skips
// the test when no URL is configured. The connection is closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), setupTimeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := postgres.Open(ctx, config.DatabaseConfig{
		URL:          url,
		MaxOpenConns: 10,
		MaxIdleConns: 10,
	}, logger)
	if err != nil {
		t.Fatalf("failed to connect to test database: %s", redact.Error(err))
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close test database: %v", err)
		}
	})

	if err := postgres.Migrate(ctx, db, "up", logger); err != nil {
		t.Fatalf("failed to migrate test database: %s", redact.Error(err))
	}
	return db
}

// WithTx runs fn inside a transaction and rolls it back afterwards, even when
// fn fails the test or panics.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
