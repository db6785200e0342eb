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
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioexport"
	"github.com/HashiReo/nonoichi-waste-app/internal/iofs"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioquery"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getExportCmd returns the export command.
func getExportCmd() *cobra.Command {
	var (
		dir   string
		area  string
		alarm int
	)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store as CSV files or an area calendar",
		Long: `Export writes every table of the store as a UTF-8 CSV file with a
byte order mark into the export directory. Existing files are
replaced.

With --area it writes all stored events of that area as an iCalendar
file <area_id>.ics instead.

Examples:
  gomi export
  gomi export -d /tmp/gomi
  gomi export -a 本町2丁目 --alarm 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dir") {
				cfg.Update([]config.Option{config.OptExportDir(dir)})
			}
			var err error
			if area != "" {
				err = runExportCalendar(cmd, area, alarm)
			} else {
				err = runExport(cmd)
			}
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	exportCmd.Flags().StringVarP(&dir, "dir", "d", "",
		"export directory (default: ~/.local/share/gomi/export)")
	exportCmd.Flags().StringVarP(&area, "area", "a", "",
		"write the calendar of this area")
	exportCmd.Flags().IntVar(&alarm, "alarm", 0,
		"reminder in minutes before the deadline")

	return exportCmd
}

func runExport(cmd *cobra.Command) error {
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

	files, err := ioexport.New(op).Export(ctx, cfg.ExportPath())
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	gn.Message("<em>Exported %d tables</em>", len(files))
	return nil
}

func runExportCalendar(cmd *cobra.Command, area string, alarm int) error {
	ctx := context.Background()
	loc := ioquery.Location(cfg.Query.TimeZone)

	op, err := connect(ctx)
	if err != nil {
		return err
	}
	defer op.Close()

	ok, err := hasSchema(ctx, op)
	if err != nil || !ok {
		return err
	}

	from := time.Date(1, 1, 1, 0, 0, 0, 0, loc)
	to := time.Date(9999, 12, 31, 0, 0, 0, 0, loc)
	events, err := ioquery.New(cfg, op).Events(ctx, area, "", from, to)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		gn.Warn("No events for <em>%s</em>", area)
		return nil
	}

	cal := ioexport.Calendar{
		Name:     "ごみ収集 " + events[0].AreaName,
		TimeZone: loc.String(),
		Alarm:    time.Duration(alarm) * time.Minute,
		Stamp:    time.Now().In(loc),
	}
	var buf bytes.Buffer
	if err = ioexport.WriteICS(&buf, cal, events); err != nil {
		return err
	}

	path := filepath.Join(cfg.ExportPath(), events[0].AreaID+".ics")
	if err = iofs.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	gn.Message("<em>Wrote %d events of %s</em>", len(events), events[0].AreaName)
	return nil
}
