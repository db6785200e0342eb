package iocatalog

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// MissingCatalogueError is returned when the catalogue file does not
// exist. Seeding treats it as a warning.
func MissingCatalogueError(path string, err error) error {
	msg := `Item catalogue <em>%s</em> not found, run <em>gomi fetch</em> to create it`

	return &gn.Error{
		Code: errcode.MissingInputError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("catalogue %s is missing: %w", path, err),
	}
}

// ReadError is returned when the catalogue cannot be read or parsed.
func ReadError(path string, err error) error {
	msg := `Cannot read item catalogue <em>%s</em>

<em>Possible causes:</em>
  - The file is not CSV
  - Columns item_name and category are missing from the header`

	return &gn.Error{
		Code: errcode.CatalogueReadError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("cannot read catalogue %s: %w", path, err),
	}
}
