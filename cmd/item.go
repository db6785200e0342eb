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
	"io"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioquery"
	"github.com/HashiReo/nonoichi-waste-app/pkg/query"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getItemCmd returns the item command.
func getItemCmd() *cobra.Command {
	var (
		suggestions int
		asJSON      bool
	)

	itemCmd := &cobra.Command{
		Use:   "item TEXT",
		Short: "Find the disposal category of an item",
		Long: `Item normalizes TEXT and looks it up by item name, then by alias.
When nothing matches, items starting with TEXT are suggested, shortest
first. Suggestions are hints, not answers.

Examples:
  gomi item ペットボトル
  gomi item ＰＥＴボトル
  gomi item ペット -k 5 -j`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runItem(cmd, args[0], suggestions, asJSON)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	itemCmd.Flags().IntVarP(&suggestions, "suggestions", "k", 0,
		"number of suggestions (default query.suggestions)")
	itemCmd.Flags().BoolVarP(&asJSON, "json", "j", false,
		"print the result as JSON")

	return itemCmd
}

func runItem(cmd *cobra.Command, text string, k int, asJSON bool) error {
	ctx := context.Background()

	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	ok, err := hasSchema(ctx, op)
	if err != nil || !ok {
		return err
	}

	res, err := ioquery.New(cfg, op).ResolveCategory(ctx, text, k)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res)
	}
	printResolution(cmd.OutOrStdout(), res)
	return nil
}

func printResolution(w io.Writer, res *query.Resolution) {
	if res.Resolved() {
		it := res.Item
		fmt.Fprintf(w, "%s: %s [%s]\n", it.Name, it.CategoryName, it.CategoryID)
		if it.MatchedBy == query.MatchAlias {
			fmt.Fprintf(w, "  found by alias %q\n", res.Normalized)
		}
		if it.Note != "" {
			fmt.Fprintf(w, "  %s\n", it.Note)
		}
		return
	}

	fmt.Fprintf(w, "No item named %q\n", res.Normalized)
	if len(res.Suggestions) == 0 {
		return
	}
	fmt.Fprintln(w, "Did you mean:")
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "  %s: %s\n", s.Name, s.CategoryName)
	}
}
