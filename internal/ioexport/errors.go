package ioexport

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError is returned when export starts without a database
// connection.
func NotConnectedError() error {
	msg := "Export attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// ExportError is returned when a table cannot be read for export.
func ExportError(table string, err error) error {
	msg := "Cannot export table <em>%s</em>"

	return &gn.Error{
		Code: errcode.ExportError,
		Msg:  msg,
		Vars: []any{table},
		Err:  fmt.Errorf("cannot export %s: %w", table, err),
	}
}
