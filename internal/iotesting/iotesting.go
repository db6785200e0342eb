// Package iotesting provides shared test utilities for store-backed tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/iodb"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioschema"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioseed"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
)

const (
	// TestDatabaseName is the PostgreSQL database used by integration
	// tests, so they never touch a production database.
	TestDatabaseName = "gomi_test"
)

// Config returns a default configuration rooted in a temporary home
// directory that is removed after the test.
func Config(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptHomeDir(t.TempDir()),
		config.OptLogDestination("stderr"),
	})
	return cfg
}

// SQLite connects to a fresh SQLite database inside the config home and
// creates the schema. The connection is closed after the test.
func SQLite(t *testing.T, cfg *config.Config) db.Operator {
	t.Helper()
	ctx := context.Background()

	op := iodb.New()
	if err := op.Connect(ctx, cfg); err != nil {
		t.Fatalf("cannot connect to sqlite: %v", err)
	}
	t.Cleanup(func() { op.Close() })

	if err := ioschema.NewManager(op).Create(ctx, cfg); err != nil {
		t.Fatalf("cannot create schema: %v", err)
	}
	return op
}

// Postgres connects to the PostgreSQL test database, drops its tables
// and creates the schema. The test is skipped in short mode or when the
// server is not reachable. Connection settings are taken from
// GOMI_DATABASE_HOST, GOMI_DATABASE_PORT, GOMI_DATABASE_USER and
// GOMI_DATABASE_PASSWORD when set.
func Postgres(t *testing.T, cfg *config.Config) db.Operator {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}

	opts := []config.Option{
		config.OptDatabaseDriver(config.DriverPostgres),
		config.OptDatabaseDatabase(TestDatabaseName),
	}
	if v := os.Getenv("GOMI_DATABASE_HOST"); v != "" {
		opts = append(opts, config.OptDatabaseHost(v))
	}
	if v := os.Getenv("GOMI_DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if v := os.Getenv("GOMI_DATABASE_USER"); v != "" {
		opts = append(opts, config.OptDatabaseUser(v))
	}
	if v := os.Getenv("GOMI_DATABASE_PASSWORD"); v != "" {
		opts = append(opts, config.OptDatabasePassword(v))
	}
	cfg.Update(opts)

	ctx := context.Background()
	op := iodb.New()
	if err := op.Connect(ctx, cfg); err != nil {
		t.Skipf("PostgreSQL is not available: %v", err)
	}
	t.Cleanup(func() { op.Close() })

	if err := op.DropAllTables(ctx); err != nil {
		t.Fatalf("cannot drop tables: %v", err)
	}
	if err := ioschema.NewManager(op).Create(ctx, cfg); err != nil {
		t.Fatalf("cannot create schema: %v", err)
	}
	return op
}

// Seeded returns a SQLite store seeded from ScheduleYAML and
// CatalogueCSV.
func Seeded(t *testing.T) (*config.Config, db.Operator) {
	t.Helper()

	cfg := Config(t)
	cfg.Update([]config.Option{
		config.OptSeedSchedulePath(
			WriteFile(t, cfg.HomeDir, "schedule.yaml", ScheduleYAML)),
		config.OptSeedCataloguePath(
			WriteFile(t, cfg.HomeDir, "items.csv", CatalogueCSV)),
	})
	op := SQLite(t, cfg)

	clock := func() time.Time { return time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC) }
	_, err := ioseed.New(cfg, op, ioseed.OptClock(clock)).Seed(context.Background())
	if err != nil {
		t.Fatalf("cannot seed store: %v", err)
	}
	return cfg, op
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("cannot create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
	return path
}
