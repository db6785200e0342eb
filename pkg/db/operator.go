package db

import (
	"context"
	"database/sql"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
)

// Operator defines the interface for basic database management operations.
// It provides connection lifecycle management and exposes a *sql.DB for
// high-level components (SchemaManager, Seeder, Querier, Exporter) to
// execute their SQL.
//
// Statements are written with "?" placeholders and passed through Rebind,
// so the same SQL runs on SQLite and PostgreSQL.
type Operator interface {
	// Connect opens the database selected by cfg.Database.Driver.
	Connect(context.Context, *config.Config) error

	// Close closes the database connection.
	Close() error

	// DB returns the connection handle, nil before Connect.
	DB() *sql.DB

	// Driver returns config.DriverSQLite or config.DriverPostgres.
	Driver() string

	// Rebind converts "?" placeholders to the driver's syntax.
	Rebind(query string) string

	// TableExists checks if a table exists in the database.
	TableExists(ctx context.Context, tableName string) (bool, error)

	// HasTables checks if the database has any tables.
	// Used to determine if schema creation should prompt for confirmation.
	HasTables(ctx context.Context) (bool, error)

	// DropAllTables drops all tables of the database.
	// Used during schema creation when overwriting existing data.
	DropAllTables(ctx context.Context) error
}
