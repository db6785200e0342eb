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
	"os"
	"os/signal"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioseed"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getSeedCmd returns the seed command.
func getSeedCmd() *cobra.Command {
	var (
		schedulePath  string
		cataloguePath string
		noCatalogue   bool
		withExport    bool
		asJSON        bool
	)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the schedule document and item catalogue",
		Long: `Seed loads the schedule document into the database, turns its
recurrence rules into collection events and merges the item catalogue.

Steps run in order and each one commits on its own:
  1. source           provenance of the schedule document
  2. categories       disposal classes and deadlines
  3. areas            areas, area groups and their members
  4. schedule groups  recurrence rules
  5. links            area group to schedule group links
  6. events           collection events of the effective period
  7. catalogue        items and aliases (skipped if items.csv is missing)
  8. export           CSV dump of every table (with --export)

Seeding stops at the first failing step. Running it again with a fixed
document repairs the database.

Examples:
  gomi seed
  gomi seed -s schedule_r7.yaml -c items.csv
  gomi seed --no-catalogue
  gomi seed -e`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var seedOpts []config.Option
			if cmd.Flags().Changed("schedule") {
				seedOpts = append(seedOpts, config.OptSeedSchedulePath(schedulePath))
			}
			if cmd.Flags().Changed("catalogue") {
				seedOpts = append(seedOpts, config.OptSeedCataloguePath(cataloguePath))
			}
			seedOpts = append(seedOpts,
				config.OptSeedWithoutCatalogue(noCatalogue),
				config.OptSeedWithExport(withExport),
			)
			cfg.Update(seedOpts)

			err := runSeed(cmd, asJSON)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	seedCmd.Flags().StringVarP(&schedulePath, "schedule", "s", "",
		"schedule document (default ~/.config/gomi/schedule.yaml)")
	seedCmd.Flags().StringVarP(&cataloguePath, "catalogue", "c", "",
		"raw item catalogue CSV")
	seedCmd.Flags().BoolVar(&noCatalogue, "no-catalogue", false,
		"skip the item catalogue")
	seedCmd.Flags().BoolVarP(&withExport, "export", "e", false,
		"export every table to CSV after seeding")
	seedCmd.Flags().BoolVarP(&asJSON, "json", "j", false,
		"print the seeding report as JSON")

	return seedCmd
}

func runSeed(cmd *cobra.Command, asJSON bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	ok, err := hasSchema(ctx, op)
	if err != nil || !ok {
		return err
	}

	gn.Info("Seeding <em>%s</em> from %s", storeLabel(cfg), cfg.SchedulePath())
	report, err := ioseed.New(cfg, op).Seed(ctx)
	if err != nil {
		return err
	}
	for _, w := range report.Warnings {
		gn.Warn("<warn>%s</warn>", w)
	}

	if asJSON {
		return printJSON(cmd, report)
	}
	return nil
}
