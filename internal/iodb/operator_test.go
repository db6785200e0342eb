package iodb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebindDollar(t *testing.T) {
	tests := []struct {
		msg, query, res string
	}{
		{"none", "SELECT 1", "SELECT 1"},
		{"one", "SELECT * FROM items WHERE name_norm = ?",
			"SELECT * FROM items WHERE name_norm = $1"},
		{"many", "INSERT INTO t (a, b, c) VALUES (?, ?, ?)",
			"INSERT INTO t (a, b, c) VALUES ($1, $2, $3)"},
		{"quoted", "SELECT '?' || name FROM t WHERE id = ?",
			"SELECT '?' || name FROM t WHERE id = $1"},
		{"unicode", "SELECT ? AS 名前", "SELECT $1 AS 名前"},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			assert.Equal(t, v.res, rebindDollar(v.query))
		})
	}
}

func TestRebindByDriver(t *testing.T) {
	q := "SELECT ? , ?"
	assert.Equal(t, q, (&operator{driver: config.DriverSQLite}).Rebind(q))
	assert.Equal(t, "SELECT $1 , $2",
		(&operator{driver: config.DriverPostgres}).Rebind(q))
}

func TestNotConnected(t *testing.T) {
	ctx := context.Background()
	op := New()
	assert.Nil(t, op.DB())
	assert.NoError(t, op.Close())

	_, err1 := op.HasTables(ctx)
	_, err2 := op.TableExists(ctx, "items")
	err3 := op.DropAllTables(ctx)

	for _, err := range []error{err1, err2, err3} {
		var gnErr *gn.Error
		require.True(t, errors.As(err, &gnErr))
		assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := config.New()
	cfg.Database.Driver = "oracle"

	err := New().Connect(context.Background(), cfg)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.DBUnsupportedDriverError, gnErr.Code)
	assert.Equal(t, []any{"oracle"}, gnErr.Vars)
}

func TestSQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "gomi.db")
	cfg := config.New()
	cfg.Update([]config.Option{config.OptDatabasePath(path)})

	op := New()
	require.NoError(t, op.Connect(ctx, cfg))
	defer op.Close()
	assert.Equal(t, config.DriverSQLite, op.Driver())
	assert.FileExists(t, path)

	has, err := op.HasTables(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = op.DB().ExecContext(ctx,
		"CREATE TABLE extra (id TEXT PRIMARY KEY)")
	require.NoError(t, err)
	_, err = op.DB().ExecContext(ctx,
		"CREATE TABLE sources (source_id TEXT PRIMARY KEY)")
	require.NoError(t, err)

	exists, err := op.TableExists(ctx, "sources")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = op.TableExists(ctx, "items")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, op.DropAllTables(ctx))
	has, err = op.HasTables(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSQLiteForeignKeysOn(t *testing.T) {
	ctx := context.Background()
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptDatabasePath(filepath.Join(t.TempDir(), "gomi.db")),
	})

	op := New()
	require.NoError(t, op.Connect(ctx, cfg))
	defer op.Close()

	var on int
	err := op.DB().QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&on)
	require.NoError(t, err)
	assert.Equal(t, 1, on)
}
