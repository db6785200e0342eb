package lifecycle

import (
	"context"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
)

// SchemaManager defines the interface for database schema management.
// SQLite schema comes from the DDL of pkg/schema models, PostgreSQL
// schema from GORM AutoMigrate of the same models.
// Schema management is idempotent - safe to run multiple times.
type SchemaManager interface {
	// Create creates the database schema. Existing tables have to be
	// dropped by the caller beforehand when a fresh start is wanted.
	Create(ctx context.Context, cfg *config.Config) error

	// Migrate creates missing tables and indexes (and, for PostgreSQL,
	// missing columns) keeping existing data.
	Migrate(ctx context.Context, cfg *config.Config) error
}
