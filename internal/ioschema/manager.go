// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that runs model DDL on SQLite and wraps GORM AutoMigrate
// on PostgreSQL.
package ioschema

import (
	"context"
	"errors"
	"log/slog"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/gnames/gn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// manager implements the lifecycle.SchemaManager interface.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// Create creates the database schema.
func (m *manager) Create(
	ctx context.Context,
	cfg *config.Config,
) error {
	if m.operator.DB() == nil {
		return NotConnectedError()
	}
	if err := m.apply(ctx); err != nil {
		if isGNError(err) {
			return err
		}
		return CreateSchemaError(err)
	}
	if err := m.setCollation(ctx); err != nil {
		return err
	}
	slog.Info("Database schema created", "driver", m.operator.Driver())
	return nil
}

// Migrate brings the schema to the current model definitions.
func (m *manager) Migrate(
	ctx context.Context,
	cfg *config.Config,
) error {
	if m.operator.DB() == nil {
		return NotConnectedError()
	}
	if err := m.apply(ctx); err != nil {
		if isGNError(err) {
			return err
		}
		return MigrateSchemaError(err)
	}
	if err := m.setCollation(ctx); err != nil {
		return err
	}
	slog.Info("Database schema migrated", "driver", m.operator.Driver())
	return nil
}

func (m *manager) apply(ctx context.Context) error {
	sqlDB := m.operator.DB()

	if m.operator.Driver() == config.DriverPostgres {
		gormDB, err := gorm.Open(
			postgres.New(postgres.Config{Conn: sqlDB}),
			&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
		)
		if err != nil {
			return GORMConnectionError(err)
		}
		return schema.Migrate(gormDB.WithContext(ctx))
	}

	tx, err := sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, tbl := range schema.AllTables() {
		if _, err = tx.ExecContext(ctx, tbl.TableDDL()); err != nil {
			return err
		}
		for _, idx := range tbl.IndexDDL() {
			if _, err = tx.ExecContext(ctx, idx); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// setCollation makes normalized name columns of PostgreSQL compare
// bytewise, as they do in SQLite.
func (m *manager) setCollation(ctx context.Context) error {
	if m.operator.Driver() != config.DriverPostgres {
		return nil
	}
	for _, c := range normColumns {
		if _, err := m.operator.DB().ExecContext(ctx, collationSQL(c)); err != nil {
			return CollationError(c.table, c.name, err)
		}
	}
	slog.Debug("Collation set", "columns", len(normColumns))
	return nil
}

func isGNError(err error) bool {
	var gnErr *gn.Error
	return errors.As(err, &gnErr)
}
