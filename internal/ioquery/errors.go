package ioquery

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError is returned when a lookup runs without a database
// connection.
func NotConnectedError() error {
	msg := "Query attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// InvalidInputError is returned for empty or malformed lookup input.
func InvalidInputError(field, value string) error {
	msg := "Invalid %s: <em>%q</em>"
	vars := []any{field, value}

	return &gn.Error{
		Code: errcode.QueryInvalidInputError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid %s %q", field, value),
	}
}

// QueryError wraps a storage failure of a lookup.
func QueryError(op string, err error) error {
	msg := `Lookup <em>%s</em> failed

Make sure the database is created and seeded.`
	vars := []any{op}

	return &gn.Error{
		Code: errcode.QueryError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("query %s: %w", op, err),
	}
}
