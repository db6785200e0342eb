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
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioquery"
	"github.com/HashiReo/nonoichi-waste-app/pkg/query"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getNextCmd returns the next command.
func getNextCmd() *cobra.Command {
	var (
		area, item, category, asOf string
		asJSON                     bool
	)

	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next pickup for an area",
		Long: `Next prints the earliest collection of a category in an area on
or after the given time, with today and can-put-out flags. The
category is given directly, or found from an item name.

The area is a name or an area id. Times without a zone are read in
query.time_zone; the default is now.

Examples:
  gomi next -a 本町2丁目 -c burnable
  gomi next -a 本町2丁目 -i ペットボトル
  gomi next -a 本町2丁目 -c 燃やすごみ -t "2025-04-07 07:30"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runNext(cmd, area, item, category, asOf, asJSON)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	nextCmd.Flags().StringVarP(&area, "area", "a", "", "area name or id")
	nextCmd.Flags().StringVarP(&item, "item", "i", "", "item name")
	nextCmd.Flags().StringVarP(&category, "category", "c", "",
		"category id or name")
	nextCmd.Flags().StringVarP(&asOf, "time", "t", "",
		"reference time (RFC3339, 'YYYY-MM-DD HH:MM' or a date)")
	nextCmd.Flags().BoolVarP(&asJSON, "json", "j", false,
		"print the result as JSON")
	_ = nextCmd.MarkFlagRequired("area")
	nextCmd.MarkFlagsMutuallyExclusive("item", "category")
	nextCmd.MarkFlagsOneRequired("item", "category")

	return nextCmd
}

func runNext(
	cmd *cobra.Command,
	area, item, category, asOf string,
	asJSON bool,
) error {
	ctx := context.Background()
	loc := ioquery.Location(cfg.Query.TimeZone)

	at, err := ioquery.ParseTime(asOf, loc)
	if err != nil {
		return err
	}
	if at.IsZero() {
		at = time.Now().In(loc)
	}

	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	ok, err := hasSchema(ctx, op)
	if err != nil || !ok {
		return err
	}

	q := ioquery.New(cfg, op)
	var (
		p   *query.Pickup
		res *query.Resolution
	)
	if item != "" {
		p, res, err = q.NextPickupForItem(ctx, area, item, at)
	} else {
		p, err = q.NextPickup(ctx, area, category, at)
	}
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(cmd, struct {
			Pickup     *query.Pickup     `json:"pickup"`
			Resolution *query.Resolution `json:"resolution,omitempty"`
		}{p, res})
	}

	w := cmd.OutOrStdout()
	if res != nil && !res.Resolved() {
		printResolution(w, res)
		return nil
	}
	if res != nil {
		fmt.Fprintf(w, "%s: %s\n", res.Item.Name, res.Item.CategoryName)
	}
	if p == nil {
		fmt.Fprintf(w, "No upcoming pickup in %s\n", area)
		return nil
	}
	printPickup(w, p)
	return nil
}

func printPickup(w io.Writer, p *query.Pickup) {
	fmt.Fprintf(w, "%s %s: %s", p.AreaName, p.CategoryName, p.Date)
	if p.DeadlineTime != "" {
		fmt.Fprintf(w, " until %s", p.DeadlineTime)
	}
	fmt.Fprintln(w)

	switch {
	case p.IsToday && p.CanPutOut:
		fmt.Fprintln(w, "  today, can still be put out")
	case p.IsToday:
		fmt.Fprintln(w, "  today, deadline has passed")
	}
	if p.Note != "" {
		fmt.Fprintf(w, "  %s\n", p.Note)
	}
}
