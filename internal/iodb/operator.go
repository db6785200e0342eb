// Package iodb implements database operations for SQLite (modernc.org/sqlite)
// and PostgreSQL (pgxpool). This is an impure I/O package that implements
// contracts defined in pkg/.
package iodb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// operator implements db.Operator on top of database/sql.
type operator struct {
	driver string
	db     *sql.DB
	pool   *pgxpool.Pool
}

// New creates a new database operator (without connecting).
func New() db.Operator {
	return &operator{}
}

// Connect opens the configured database and verifies the connection.
func (o *operator) Connect(ctx context.Context, cfg *config.Config) error {
	switch cfg.Database.Driver {
	case config.DriverSQLite, "":
		return o.connectSQLite(ctx, cfg.SQLitePath())
	case config.DriverPostgres:
		return o.connectPostgres(ctx, &cfg.Database)
	default:
		return UnsupportedDriverError(cfg.Database.Driver)
	}
}

func (o *operator) connectSQLite(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return SQLiteConnectionError(path, err)
	}

	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return SQLiteConnectionError(path, err)
	}
	// SQLite allows one writer, a single connection also keeps
	// per-connection pragmas in effect.
	sqlDB.SetMaxOpenConns(1)

	if err = sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return SQLiteConnectionError(path, err)
	}

	slog.Debug("Connected to SQLite", "path", path)
	o.driver = config.DriverSQLite
	o.db = sqlDB
	return nil
}

func (o *operator) connectPostgres(
	ctx context.Context,
	cfg *config.DatabaseConfig,
) error {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 0
	poolConfig.MaxConnIdleTime = 0

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return ConnectionError(cfg.Host, cfg.Port,
			cfg.Database, cfg.User, err)
	}

	slog.Debug("Connected to PostgreSQL",
		"host", cfg.Host, "port", cfg.Port, "database", cfg.Database)
	o.driver = config.DriverPostgres
	o.pool = pool
	o.db = stdlib.OpenDBFromPool(pool)
	return nil
}

// Close releases all database connections.
func (o *operator) Close() error {
	var err error
	if o.db != nil {
		err = o.db.Close()
		o.db = nil
	}
	if o.pool != nil {
		o.pool.Close()
		o.pool = nil
	}
	return err
}

// DB returns the connection handle.
func (o *operator) DB() *sql.DB {
	return o.db
}

// Driver returns the name of the connected driver.
func (o *operator) Driver() string {
	return o.driver
}

// Rebind converts "?" placeholders to "$1", "$2", ... for PostgreSQL.
// Question marks inside single-quoted literals are kept.
func (o *operator) Rebind(query string) string {
	if o.driver != config.DriverPostgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// TableExists checks if a table exists in the current database.
func (o *operator) TableExists(
	ctx context.Context,
	tableName string,
) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}
	tables, err := o.tables(ctx)
	if err != nil {
		return false, TableExistsCheckError(tableName, err)
	}
	return slices.Contains(tables, tableName), nil
}

// HasTables checks if the database has any tables.
func (o *operator) HasTables(ctx context.Context) (bool, error) {
	if o.db == nil {
		return false, NotConnectedError()
	}
	tables, err := o.tables(ctx)
	if err != nil {
		return false, TableCheckError(err)
	}
	return len(tables) > 0, nil
}

// DropAllTables drops all tables, children before parents.
func (o *operator) DropAllTables(ctx context.Context) error {
	if o.db == nil {
		return NotConnectedError()
	}
	tables, err := o.tables(ctx)
	if err != nil {
		return QueryTablesError(err)
	}

	// known tables go first in reverse dependency order, so foreign
	// keys never block a drop
	var order []string
	known := schema.AllTables()
	for i := len(known) - 1; i >= 0; i-- {
		name := known[i].TableName()
		if slices.Contains(tables, name) {
			order = append(order, name)
		}
	}
	for _, t := range tables {
		if !slices.Contains(order, t) {
			order = append(order, t)
		}
	}

	for _, table := range order {
		q := fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
		if o.driver == config.DriverPostgres {
			q += " CASCADE"
		}
		if _, err := o.db.ExecContext(ctx, q); err != nil {
			return DropTableError(table, err)
		}
	}

	return nil
}

func (o *operator) tables(ctx context.Context) ([]string, error) {
	if o.db == nil {
		return nil, NotConnectedError()
	}

	query := `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`
	if o.driver == config.DriverPostgres {
		query = `SELECT tablename FROM pg_tables
			WHERE schemaname = 'public'
			ORDER BY tablename`
	}

	rows, err := o.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}
