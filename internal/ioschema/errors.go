package ioschema

import (
	"errors"
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError is returned when the operator has no open store.
func NotConnectedError() error {
	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  "Schema change attempted without an open store",
		Err:  errors.New("not connected to database"),
	}
}

// GORMConnectionError wraps a failure to put GORM on top of the open
// PostgreSQL connection.
func GORMConnectionError(err error) error {
	msg := `Cannot open PostgreSQL store with GORM

<em>How to fix:</em>
  1. Check the database section of ~/.config/gomi/config.yaml
  2. Or switch to the default store with GOMI_DATABASE_DRIVER=sqlite`

	return &gn.Error{
		Code: errcode.SchemaGORMConnectionError,
		Msg:  msg,
		Err:  fmt.Errorf("gorm open: %w", err),
	}
}

// CreateSchemaError wraps a failure while creating the ten tables.
func CreateSchemaError(err error) error {
	msg := `Cannot create the collection schedule tables

<em>How to fix:</em>
  1. Run <em>gomi create --force</em> to drop tables left by an old version
  2. On PostgreSQL check that the user may CREATE tables
  3. See the log file for the failing statement`

	return &gn.Error{
		Code: errcode.SchemaCreateError,
		Msg:  msg,
		Err:  fmt.Errorf("create schema: %w", err),
	}
}

// MigrateSchemaError wraps a failure while adding missing tables,
// columns or indexes.
func MigrateSchemaError(err error) error {
	msg := `Cannot migrate the collection schedule tables

<em>How to fix:</em>
  1. Keep a copy with <em>gomi export</em>
  2. Recreate the store with <em>gomi create --force</em> and <em>gomi seed</em>`

	return &gn.Error{
		Code: errcode.SchemaMigrateError,
		Msg:  msg,
		Err:  fmt.Errorf("migrate schema: %w", err),
	}
}

// CollationError wraps a failure to collate a normalized column.
func CollationError(table, column string, err error) error {
	return &gn.Error{
		Code: errcode.SchemaCollationError,
		Msg:  "Cannot set bytewise collation on <em>%s.%s</em>",
		Vars: []any{table, column},
		Err:  fmt.Errorf("collate %s.%s: %w", table, column, err),
	}
}
