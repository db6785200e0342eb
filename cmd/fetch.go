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

	"github.com/HashiReo/nonoichi-waste-app/internal/iofetch"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getFetchCmd returns the fetch command.
func getFetchCmd() *cobra.Command {
	var (
		outputPath string
		maxPage    int
		asJSON     bool
	)

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the item dictionary into the raw catalogue",
		Long: `Fetch downloads the listing pages of the municipal item dictionary
and writes them as the raw item catalogue CSV used by 'gomi seed'.

The page count is read from the first page and capped by
fetch.max_page. Pages are downloaded by fetch workers (jobs_number),
paced by fetch.pages_per_second and retried fetch.retries times.
Pages that still fail are listed in failed_pages.txt next to the
catalogue. The catalogue is replaced only after a complete run.

Examples:
  gomi fetch
  gomi fetch -o /tmp/items.csv
  gomi fetch -m 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fetchOpts []config.Option
			if cmd.Flags().Changed("output") {
				fetchOpts = append(fetchOpts, config.OptFetchOutputPath(outputPath))
			}
			if cmd.Flags().Changed("max-page") {
				fetchOpts = append(fetchOpts, config.OptFetchMaxPage(maxPage))
			}
			cfg.Update(fetchOpts)

			err := runFetch(cmd, asJSON)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	fetchCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"catalogue CSV to write (default: seed catalogue path)")
	fetchCmd.Flags().IntVarP(&maxPage, "max-page", "m", 0,
		"maximum number of pages to fetch")
	fetchCmd.Flags().BoolVarP(&asJSON, "json", "j", false,
		"print the fetch report as JSON")

	return fetchCmd
}

func runFetch(cmd *cobra.Command, asJSON bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := iofetch.New(cfg).Fetch(ctx)
	if err != nil {
		return err
	}
	gn.Message("<em>Catalogue written to %s</em>", report.OutputPath)

	if asJSON {
		return printJSON(cmd, report)
	}
	return nil
}
