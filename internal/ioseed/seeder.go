// Package ioseed implements the Seeder interface. It loads the schedule
// document, expands recurrence rules into collection events and merges
// the raw item catalogue into the store.
//
// This is an impure I/O package. Every step writes in its own
// transaction and commits before the next step starts.
package ioseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioexport"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioschedule"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schedule"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
)

// seeder implements the lifecycle.Seeder interface.
type seeder struct {
	cfg      *config.Config
	operator db.Operator
	loader   schedule.Loader
	exporter lifecycle.Exporter
	now      func() time.Time
}

// Option configures a seeder.
type Option func(*seeder)

// OptLoader replaces the schedule document loader. By default the
// document is read from cfg.SchedulePath().
func OptLoader(l schedule.Loader) Option {
	return func(s *seeder) {
		s.loader = l
	}
}

// OptExporter replaces the exporter of the last step.
func OptExporter(e lifecycle.Exporter) Option {
	return func(s *seeder) {
		s.exporter = e
	}
}

// OptClock sets the source of updated_at timestamps.
func OptClock(now func() time.Time) Option {
	return func(s *seeder) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new Seeder.
func New(cfg *config.Config, op db.Operator, opts ...Option) lifecycle.Seeder {
	res := &seeder{
		cfg:      cfg,
		operator: op,
		loader:   ioschedule.New(cfg.SchedulePath()),
		exporter: ioexport.New(op),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// run keeps the state shared by steps of one seeding pass.
type run struct {
	doc      *schedule.Document
	sourceID string
	stamp    string
	report   *lifecycle.Report
}

type step struct {
	name string
	desc string
	fn   func(context.Context, *run) error
}

// Seed runs all steps in order and stops at the first failure.
func (s *seeder) Seed(ctx context.Context) (*lifecycle.Report, error) {
	if s.operator.DB() == nil {
		return nil, NotConnectedError()
	}

	start := time.Now()
	report := &lifecycle.Report{
		RunID:  uuid.NewString(),
		Counts: make(map[string]int),
	}
	slog.Info("Starting seeding", "run_id", report.RunID)

	doc, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		msg := fmt.Sprintf("%s: %s", w.Field, w.Message)
		report.Warnings = append(report.Warnings, msg)
		slog.Warn("Schedule document warning", "field", w.Field, "message", w.Message)
	}

	r := &run{
		doc:    doc,
		stamp:  s.now().UTC().Format(schema.TimeFormat),
		report: report,
	}

	steps := []step{
		{"source", "Saving document source", s.upsertSource},
		{"categories", "Saving categories", s.upsertCategories},
		{"areas", "Saving areas and area groups", s.upsertAreas},
		{"schedule_groups", "Saving schedule groups", s.upsertScheduleGroups},
		{"links", "Validating area group links", s.upsertLinks},
		{"events", "Generating collection events", s.materializeEvents},
		{"catalogue", "Merging item catalogue", s.mergeCatalogue},
		{"export", "Exporting tables", s.export},
	}

	for i, st := range steps {
		if err = ctx.Err(); err != nil {
			return nil, CancelledError(err)
		}
		gn.Info("(%d/%d) %s...", i+1, len(steps), st.desc)
		slog.Info("Seeding step", "run_id", report.RunID, "step", st.name)

		if err = st.fn(ctx, r); err != nil {
			slog.Error("Seeding step failed",
				"run_id", report.RunID,
				"step", st.name,
				"error", err,
			)
			if isGNError(err) {
				return nil, err
			}
			return nil, StepError(st.name, err)
		}
	}

	if err = s.countRows(ctx, report); err != nil {
		return nil, StepError("count", err)
	}

	report.Duration = time.Since(start)
	slog.Info("Seeding complete",
		"run_id", report.RunID,
		"source_id", report.SourceID,
		"events", report.EventsInserted,
		"items", report.ItemsMerged,
		"duration", gnfmt.TimeString(report.Duration.Seconds()),
	)
	gn.Info(`Seeding complete
Events: <em>%s</em>, items: <em>%s</em>, skipped items: %s.
Elapsed time: <em>%s</em>
`,
		humanize.Comma(int64(report.EventsInserted)),
		humanize.Comma(int64(report.ItemsMerged)),
		humanize.Comma(int64(report.ItemsSkipped)),
		gnfmt.TimeString(report.Duration.Seconds()),
	)
	return report, nil
}

func (s *seeder) export(ctx context.Context, r *run) error {
	if !s.cfg.Seed.WithExport {
		slog.Info("Export is not requested")
		return nil
	}
	files, err := s.exporter.Export(ctx, s.cfg.ExportPath())
	if err != nil {
		return err
	}
	r.report.ExportedFiles = files
	gn.Message("<em>Exported %d tables to %s</em>", len(files), s.cfg.ExportPath())
	return nil
}

func (s *seeder) countRows(ctx context.Context, report *lifecycle.Report) error {
	for _, tbl := range schema.AllTables() {
		name := tbl.TableName()
		var n int
		q := "SELECT count(*) FROM " + name
		if err := s.operator.DB().QueryRowContext(ctx, q).Scan(&n); err != nil {
			return err
		}
		report.Counts[name] = n
	}
	return nil
}

// inTx runs fn in a transaction and commits it when fn succeeds.
func (s *seeder) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.operator.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *seeder) q(query string) string {
	return s.operator.Rebind(query)
}

// column reads a single text column of all rows. Rows are read to the
// end before the caller runs further statements on the transaction.
func (s *seeder) column(
	ctx context.Context,
	tx *sql.Tx,
	query string,
	args ...any,
) ([]string, error) {
	rows, err := tx.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, rows.Err()
}

func (s *seeder) idLength() int {
	return s.cfg.Seed.IDLength
}

func isGNError(err error) bool {
	var gnErr *gn.Error
	return errors.As(err, &gnErr)
}
