package ioschema_test

import (
	"context"
	"errors"
	"testing"

	"github.com/HashiReo/nonoichi-waste-app/internal/iodb"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioschema"
	"github.com/HashiReo/nonoichi-waste-app/internal/iotesting"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotConnected(t *testing.T) {
	cfg := iotesting.Config(t)
	mgr := ioschema.NewManager(iodb.New())

	for _, f := range []func() error{
		func() error { return mgr.Create(context.Background(), cfg) },
		func() error { return mgr.Migrate(context.Background(), cfg) },
	} {
		err := f()
		var gnErr *gn.Error
		require.True(t, errors.As(err, &gnErr))
		assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
	}
}

func TestCreateSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.Config(t)
	op := iotesting.SQLite(t, cfg)

	has, err := op.HasTables(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	for _, tbl := range schema.AllTables() {
		exists, err := op.TableExists(ctx, tbl.TableName())
		require.NoError(t, err)
		assert.True(t, exists, tbl.TableName())
	}
}

func TestMigrateIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.Config(t)
	op := iotesting.SQLite(t, cfg)

	_, err := op.DB().ExecContext(ctx,
		`INSERT INTO sources (source_id, source_type, title, file_path,
			url, fetched_at) VALUES ('src_1', 'pdf', 't', '', '', '')`)
	require.NoError(t, err)

	mgr := ioschema.NewManager(op)
	require.NoError(t, mgr.Migrate(ctx, cfg))
	require.NoError(t, mgr.Migrate(ctx, cfg))

	var n int
	err = op.DB().QueryRowContext(ctx,
		"SELECT count(*) FROM sources").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "migrate keeps data")
}

func TestCreatePostgres(t *testing.T) {
	ctx := context.Background()
	cfg := iotesting.Config(t)
	op := iotesting.Postgres(t, cfg)

	for _, tbl := range schema.AllTables() {
		exists, err := op.TableExists(ctx, tbl.TableName())
		require.NoError(t, err)
		assert.True(t, exists, tbl.TableName())
	}

	var collation string
	err := op.DB().QueryRowContext(ctx,
		`SELECT collation_name FROM information_schema.columns
		WHERE table_name = 'items' AND column_name = 'name_norm'`,
	).Scan(&collation)
	require.NoError(t, err)
	assert.Equal(t, "C", collation)

	require.NoError(t, ioschema.NewManager(op).Migrate(ctx, cfg))
}
