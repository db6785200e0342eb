package ioseed_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/iodb"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioseed"
	"github.com/HashiReo/nonoichi-waste-app/internal/iotesting"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/HashiReo/nonoichi-waste-app/pkg/ident"
	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = func() time.Time {
	return time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
}

type env struct {
	cfg *config.Config
	op  db.Operator
}

// newEnv creates a SQLite store and writes the schedule document and,
// when given, the catalogue into the test home.
func newEnv(t *testing.T, doc, catalogue string) *env {
	t.Helper()
	cfg := iotesting.Config(t)
	e := &env{cfg: cfg}
	e.write(t, doc, catalogue)
	e.op = iotesting.SQLite(t, cfg)
	return e
}

func (e *env) write(t *testing.T, doc, catalogue string) {
	t.Helper()
	home := e.cfg.HomeDir
	opts := []config.Option{
		config.OptSeedSchedulePath(iotesting.WriteFile(t, home, "schedule.yaml", doc)),
		config.OptSeedCataloguePath(filepath.Join(home, "items.csv")),
	}
	if catalogue != "" {
		iotesting.WriteFile(t, home, "items.csv", catalogue)
	} else {
		os.Remove(filepath.Join(home, "items.csv"))
	}
	e.cfg.Update(opts)
}

func (e *env) seed(t *testing.T, opts ...ioseed.Option) (*lifecycle.Report, error) {
	t.Helper()
	opts = append([]ioseed.Option{ioseed.OptClock(clock)}, opts...)
	return ioseed.New(e.cfg, e.op, opts...).Seed(context.Background())
}

func (e *env) count(t *testing.T, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT count(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	err := e.op.DB().QueryRow(e.op.Rebind(q), args...).Scan(&n)
	require.NoError(t, err)
	return n
}

// dump returns every table without timestamp columns.
func (e *env) dump(t *testing.T) map[string][][]string {
	t.Helper()
	res := make(map[string][][]string)
	for _, tbl := range schema.AllTables() {
		cols := slices.DeleteFunc(schema.Columns(tbl), func(c string) bool {
			return c == "updated_at" || c == "fetched_at"
		})
		list := strings.Join(cols, ", ")
		rows, err := e.op.DB().Query(
			"SELECT " + list + " FROM " + tbl.TableName() + " ORDER BY " + list)
		require.NoError(t, err)

		for rows.Next() {
			vals := make([]string, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			require.NoError(t, rows.Scan(ptrs...))
			res[tbl.TableName()] = append(res[tbl.TableName()], vals)
		}
		require.NoError(t, rows.Err())
		rows.Close()
	}
	return res
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr), "expected gn.Error, got %v", err)
	return gnErr.Code
}

func areaID(name string) string {
	return ident.AreaID(name, 12)
}

func TestSeed(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)

	rep, err := e.seed(t)
	require.NoError(t, err)

	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, ident.DeriveID("src_pdf", "令和7年度 野々市市ごみ収集日程表", 12),
		rep.SourceID)
	assert.Equal(t, 26, rep.EventsInserted)
	assert.Equal(t, 4, rep.EventsDuplicate)
	assert.Equal(t, 6, rep.ItemsMerged)
	assert.Equal(t, 1, rep.ItemsSkipped)
	assert.False(t, rep.CatalogueSkipped)
	assert.Contains(t, rep.Warnings[0], "large")

	counts := map[string]int{
		lifecycle.TableSources:        2,
		lifecycle.TableCategories:     3,
		lifecycle.TableAreas:          3,
		lifecycle.TableAreaGroups:     2,
		lifecycle.TableMembers:        4,
		lifecycle.TableScheduleGroups: 4,
		lifecycle.TableLinks:          4,
		lifecycle.TableEvents:         26,
		lifecycle.TableItems:          6,
		lifecycle.TableItemAliases:    2,
	}
	assert.Equal(t, counts, rep.Counts)
}

func TestSeedEvents(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, "")
	_, err := e.seed(t)
	require.NoError(t, err)

	var deadline, note string
	err = e.op.DB().QueryRow(`SELECT deadline_time, note FROM collection_events
		WHERE area_id = ? AND category_id = 'burnable'
		AND collection_date = '2025-04-07'`, areaID("本町2丁目"),
	).Scan(&deadline, &note)
	require.NoError(t, err)
	assert.Equal(t, "08:00", deadline)
	assert.Equal(t, "祝日も収集します", note)

	rows, err := e.op.DB().Query(`SELECT collection_date FROM collection_events
		WHERE area_id = ? AND category_id = 'pet'
		ORDER BY collection_date`, areaID("本町1丁目"))
	require.NoError(t, err)
	defer rows.Close()
	var dates []string
	for rows.Next() {
		var d string
		require.NoError(t, rows.Scan(&d))
		dates = append(dates, d)
	}
	assert.Equal(t, []string{"2025-04-09", "2025-04-23"}, dates)

	// no event outside of the effective range
	assert.Equal(t, 0, e.count(t, "collection_events",
		"collection_date < '2025-04-01' OR collection_date > '2025-04-30'"))

	// one event per (area, category, date)
	var dup int
	err = e.op.DB().QueryRow(`SELECT count(*) FROM (
		SELECT area_id, category_id, collection_date FROM collection_events
		GROUP BY area_id, category_id, collection_date
		HAVING count(*) > 1)`).Scan(&dup)
	require.NoError(t, err)
	assert.Equal(t, 0, dup)
}

func TestSeedRuleStored(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, "")
	_, err := e.seed(t)
	require.NoError(t, err)

	var kind, js, note string
	err = e.op.DB().QueryRow(`SELECT rule_type, rule_json, note
		FROM schedule_groups WHERE schedule_group_id = 'sg_burn_mon_thu'`,
	).Scan(&kind, &js, &note)
	require.NoError(t, err)
	assert.Equal(t, "weekly", kind)
	assert.Contains(t, js, "MON")
	assert.Contains(t, js, "THU")
	assert.Equal(t, "祝日も収集します", note)
}

func TestSeedIdempotent(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)

	_, err := e.seed(t)
	require.NoError(t, err)
	first := e.dump(t)

	later := func() time.Time { return clock().Add(48 * time.Hour) }
	rep, err := e.seed(t, ioseed.OptClock(later))
	require.NoError(t, err)
	assert.Equal(t, 26, rep.EventsInserted)

	assert.Equal(t, first, e.dump(t))

	var updated string
	err = e.op.DB().QueryRow(
		"SELECT updated_at FROM categories WHERE category_id = 'pet'",
	).Scan(&updated)
	require.NoError(t, err)
	assert.Equal(t, "2025-04-02T09:00:00Z", updated)
}

func TestSeedLinkMismatch(t *testing.T) {
	bad := strings.Replace(iotesting.ScheduleYAML,
		"{schedule_id: sg_pet_2_4_wed, category_id: pet}",
		"{schedule_id: sg_pet_2_4_wed, category_id: burnable}", 1)

	t.Run("fresh store", func(t *testing.T) {
		e := newEnv(t, bad, "")
		_, err := e.seed(t)
		require.Error(t, err)
		assert.Equal(t, errcode.LinkCategoryMismatchError, errCode(t, err))

		// earlier steps are committed
		assert.Equal(t, 3, e.count(t, "categories", ""))
		assert.Equal(t, 4, e.count(t, "schedule_groups", ""))
		// no link and no event is written
		assert.Equal(t, 0, e.count(t, "area_group_schedule_links", ""))
		assert.Equal(t, 0, e.count(t, "collection_events", ""))
	})

	t.Run("seeded store", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, "")
		_, err := e.seed(t)
		require.NoError(t, err)
		before := e.dump(t)

		e.write(t, bad, "")
		_, err = e.seed(t)
		assert.Equal(t, errcode.LinkCategoryMismatchError, errCode(t, err))

		after := e.dump(t)
		assert.Equal(t, before["area_group_schedule_links"], after["area_group_schedule_links"])
		assert.Equal(t, before["collection_events"], after["collection_events"])
	})
}

func TestSeedReferenceErrors(t *testing.T) {
	tests := []struct {
		msg, old, new string
		code          gn.ErrorCode
		table         string
		rows          int
	}{
		{
			"unknown schedule group",
			"{schedule_id: sg_large, category_id: large}",
			"{schedule_id: sg_glass, category_id: large}",
			errcode.LinkDanglingReferenceError, "area_group_schedule_links", 0,
		},
		{
			"unknown area group",
			"  - area_group_id: ag_south\n",
			"  - area_group_id: ag_west\n",
			errcode.LinkDanglingReferenceError, "area_group_schedule_links", 0,
		},
		{
			"schedule group with unknown category",
			"    category_id: large\n",
			"    category_id: glass\n",
			errcode.MissingReferenceError, "schedule_groups", 0,
		},
		{
			"alias of unknown item",
			"  - item: ペットボトル\n",
			"  - item: ガラス瓶\n",
			errcode.MissingReferenceError, "items", 0,
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			doc := strings.Replace(iotesting.ScheduleYAML, v.old, v.new, 1)
			require.NotEqual(t, iotesting.ScheduleYAML, doc)

			e := newEnv(t, doc, iotesting.CatalogueCSV)
			_, err := e.seed(t)
			require.Error(t, err)
			assert.Equal(t, v.code, errCode(t, err))
			assert.Equal(t, v.rows, e.count(t, v.table, ""))
		})
	}
}

func TestSeedStaleMembers(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, "")
	_, err := e.seed(t)
	require.NoError(t, err)
	suematsu := areaID("末松1丁目")
	assert.Equal(t, 5, e.count(t, "collection_events", "area_id = ?", suematsu))

	doc := strings.Replace(iotesting.ScheduleYAML,
		"areas: [末松1丁目, 本町2丁目]", "areas: [本町2丁目]", 1)
	e.write(t, doc, "")
	_, err = e.seed(t)
	require.NoError(t, err)

	assert.Equal(t, 0, e.count(t, "area_group_members",
		"area_group_id = 'ag_south' AND area_id = ?", suematsu))
	assert.Equal(t, 1, e.count(t, "area_group_members", "area_group_id = 'ag_south'"))
	assert.Equal(t, 0, e.count(t, "collection_events", "area_id = ?", suematsu))
	// areas are kept
	assert.Equal(t, 1, e.count(t, "areas", "area_id = ?", suematsu))
}

func TestSeedRuleChange(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, "")
	_, err := e.seed(t)
	require.NoError(t, err)

	doc := strings.Replace(iotesting.ScheduleYAML,
		"weekdays: [MON]\n", "weekdays: [TUE]\n", 1)
	e.write(t, doc, "")
	_, err = e.seed(t)
	require.NoError(t, err)

	suematsu := areaID("末松1丁目")
	assert.Equal(t, 0, e.count(t, "collection_events",
		"area_id = ? AND collection_date = '2025-04-07'", suematsu))
	assert.Equal(t, 1, e.count(t, "collection_events",
		"area_id = ? AND collection_date = '2025-04-08'", suematsu))
}

func TestSeedLinkRemoved(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, "")
	_, err := e.seed(t)
	require.NoError(t, err)

	doc := strings.Replace(iotesting.ScheduleYAML,
		"      - {schedule_id: sg_large, category_id: large}\n", "", 1)
	e.write(t, doc, "")
	_, err = e.seed(t)
	require.NoError(t, err)

	assert.Equal(t, 0, e.count(t, "area_group_schedule_links",
		"schedule_group_id = 'sg_large'"))
	assert.Equal(t, 0, e.count(t, "collection_events", "category_id = 'large'"))
}

func TestSeedCatalogue(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, "")
		rep, err := e.seed(t)
		require.NoError(t, err)
		assert.True(t, rep.CatalogueSkipped)
		assert.Equal(t, 0, rep.ItemsMerged)
		assert.Equal(t, 1, e.count(t, "sources", ""))
		assert.Equal(t, 26, e.count(t, "collection_events", ""))
	})

	t.Run("disabled", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)
		e.cfg.Update([]config.Option{config.OptSeedWithoutCatalogue(true)})
		rep, err := e.seed(t)
		require.NoError(t, err)
		assert.True(t, rep.CatalogueSkipped)
		assert.Equal(t, 0, e.count(t, "items", ""))
	})

	t.Run("unknown category", func(t *testing.T) {
		csv := iotesting.CatalogueCSV + "ガラス瓶,びん,\n"
		e := newEnv(t, iotesting.ScheduleYAML, csv)
		_, err := e.seed(t)
		assert.Equal(t, errcode.MissingReferenceError, errCode(t, err))
		assert.Equal(t, 0, e.count(t, "items", ""))
		assert.Equal(t, 26, e.count(t, "collection_events", ""))
	})

	t.Run("excluded categories", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)
		e.cfg.Update([]config.Option{
			config.OptSeedExcludedCategories([]string{"自己処理", "粗大ごみ"}),
		})
		rep, err := e.seed(t)
		require.NoError(t, err)
		assert.Equal(t, 2, rep.ItemsSkipped)
		assert.Equal(t, 0, e.count(t, "items", "name = 'ソファー'"))
	})

	t.Run("category change updates in place", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)
		_, err := e.seed(t)
		require.NoError(t, err)

		var id string
		err = e.op.DB().QueryRow(
			"SELECT item_id FROM items WHERE name_norm = 'ソファー'").Scan(&id)
		require.NoError(t, err)

		csv := strings.Replace(iotesting.CatalogueCSV,
			"ソファー,粗大ごみ,", "ソファー,燃やすごみ,小さく切ったもの", 1)
		e.write(t, iotesting.ScheduleYAML, csv)
		_, err = e.seed(t)
		require.NoError(t, err)

		var id2, cat, note string
		err = e.op.DB().QueryRow(`SELECT item_id, category_id, note FROM items
			WHERE name_norm = 'ソファー'`).Scan(&id2, &cat, &note)
		require.NoError(t, err)
		assert.Equal(t, id, id2)
		assert.Equal(t, "burnable", cat)
		assert.Equal(t, "小さく切ったもの", note)
		assert.Equal(t, 6, e.count(t, "items", ""))
	})

	t.Run("aliases", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)
		_, err := e.seed(t)
		require.NoError(t, err)

		doc := strings.Replace(iotesting.ScheduleYAML,
			"aliases: [ペット, PETボトル]", "aliases: [ＰＥＴ]", 1)
		e.write(t, doc, iotesting.CatalogueCSV)
		_, err = e.seed(t)
		require.NoError(t, err)

		var alias string
		err = e.op.DB().QueryRow(
			"SELECT alias_norm FROM item_aliases").Scan(&alias)
		require.NoError(t, err)
		assert.Equal(t, "PET", alias)
	})
}

func TestSeedExport(t *testing.T) {
	e := newEnv(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)
	e.cfg.Update([]config.Option{config.OptSeedWithExport(true)})

	rep, err := e.seed(t)
	require.NoError(t, err)
	require.Len(t, rep.ExportedFiles, len(schema.AllTables()))
	for _, f := range rep.ExportedFiles {
		assert.FileExists(t, f)
		assert.Equal(t, e.cfg.ExportPath(), filepath.Dir(f))
	}
}

func TestSeedFailures(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		cfg := iotesting.Config(t)
		_, err := ioseed.New(cfg, iodb.New()).Seed(context.Background())
		assert.Equal(t, errcode.DBNotConnectedError, errCode(t, err))
	})

	t.Run("missing document", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, "")
		e.cfg.Update([]config.Option{
			config.OptSeedSchedulePath(filepath.Join(e.cfg.HomeDir, "none.yaml")),
		})
		_, err := e.seed(t)
		assert.Equal(t, errcode.MissingInputError, errCode(t, err))
		assert.Equal(t, 0, e.count(t, "sources", ""))
	})

	t.Run("cancelled", func(t *testing.T) {
		e := newEnv(t, iotesting.ScheduleYAML, "")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ioseed.New(e.cfg, e.op).Seed(ctx)
		assert.Equal(t, errcode.SeedCancelledError, errCode(t, err))
	})
}

func TestSeedPostgres(t *testing.T) {
	cfg := iotesting.Config(t)
	e := &env{cfg: cfg}
	e.write(t, iotesting.ScheduleYAML, iotesting.CatalogueCSV)
	e.op = iotesting.Postgres(t, cfg)

	rep, err := e.seed(t)
	require.NoError(t, err)
	assert.Equal(t, 26, rep.EventsInserted)
	first := e.dump(t)

	_, err = e.seed(t)
	require.NoError(t, err)
	assert.Equal(t, first, e.dump(t))
}
