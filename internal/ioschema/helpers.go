package ioschema

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
)

type column struct {
	table, name string
}

// normColumns hold NFKC-normalized text used by exact and prefix
// lookups.
var normColumns = []column{
	{lifecycle.TableItems, "name_norm"},
	{lifecycle.TableItemAliases, "alias_norm"},
}

// collationSQL switches a PostgreSQL text column to bytewise "C"
// collation.
func collationSQL(c column) string {
	return fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN %s TYPE TEXT COLLATE "C"`,
		c.table, c.name)
}
