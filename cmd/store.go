/*
Copyright © 2026 HashiReo

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/internal/iodb"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/spf13/cobra"
)

// connect opens the configured store. The caller closes it.
func connect(ctx context.Context) (db.Operator, error) {
	op := iodb.New()
	if err := op.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	return op, nil
}

// storeLabel describes the configured store for messages.
func storeLabel(c *config.Config) string {
	if c.Database.Driver == config.DriverPostgres {
		return fmt.Sprintf("%s@%s:%d/%s",
			c.Database.User, c.Database.Host, c.Database.Port, c.Database.Database)
	}
	return c.SQLitePath()
}

// hasSchema checks that the schema exists and warns otherwise.
func hasSchema(ctx context.Context, op db.Operator) (bool, error) {
	hasTables, err := op.HasTables(ctx)
	if err != nil {
		return false, err
	}
	if !hasTables {
		gn.Warn(`<warn>Database <em>%s</em> is empty</warn>
Run <em>gomi create</em> first.`, storeLabel(cfg))
	}
	return hasTables, nil
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := gnfmt.GNjson{Pretty: true}
	bs, err := enc.Encode(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(bs))
	return nil
}
