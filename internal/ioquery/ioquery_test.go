package ioquery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/iodb"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioquery"
	"github.com/HashiReo/nonoichi-waste-app/internal/iotesting"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/HashiReo/nonoichi-waste-app/pkg/ident"
	"github.com/HashiReo/nonoichi-waste-app/pkg/query"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jst = time.FixedZone("JST", 9*60*60)

func at(day, h, m int) time.Time {
	return time.Date(2025, 4, day, h, m, 0, 0, jst)
}

func newQuerier(t *testing.T) query.Querier {
	t.Helper()
	cfg, op := iotesting.Seeded(t)
	return ioquery.New(cfg, op)
}

func TestResolveCategory(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	tests := []struct {
		msg      string
		text     string
		item     string
		category string
		match    query.Match
	}{
		{"exact name", "ペットボトル", "ペットボトル", "pet", query.MatchName},
		{"full-width name", "ＰＥＴボトル", "ＰＥＴボトル", "pet", query.MatchName},
		{"spaces around", "  生ごみ ", "生ごみ", "burnable", query.MatchName},
		{"alias", "ペット", "ペットボトル", "pet", query.MatchAlias},
		{"parentheses", "ペットボトル(汚れたもの)", "ペットボトル（汚れたもの）",
			"burnable", query.MatchName},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := q.ResolveCategory(ctx, v.text, 5)
			require.NoError(t, err)
			require.True(t, res.Resolved())
			assert.Equal(t, v.item, res.Item.Name)
			assert.Equal(t, v.category, res.Item.CategoryID)
			assert.Equal(t, v.match, res.Item.MatchedBy)
			assert.Empty(t, res.Suggestions)
		})
	}
}

func TestResolveCategorySuggestions(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	res, err := q.ResolveCategory(ctx, "ペットボ", 5)
	require.NoError(t, err)
	assert.False(t, res.Resolved())
	assert.Equal(t, "ペットボ", res.Normalized)

	var names []string
	for _, s := range res.Suggestions {
		names = append(names, s.Name)
		assert.Equal(t, query.MatchPrefix, s.MatchedBy)
	}
	assert.Equal(t, []string{
		"ペットボトル", "ペットボトルキャップ", "ペットボトル（汚れたもの）",
	}, names)

	res, err = q.ResolveCategory(ctx, "ペットボ", 2)
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 2)

	res, err = q.ResolveCategory(ctx, "冷蔵庫", 5)
	require.NoError(t, err)
	assert.False(t, res.Resolved())
	assert.Empty(t, res.Suggestions)

	// wildcard characters are literal
	res, err = q.ResolveCategory(ctx, "%", 5)
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
}

func TestResolveCategorySuggestionsCase(t *testing.T) {
	cfg, op := iotesting.Seeded(t)
	q := ioquery.New(cfg, op)
	ctx := context.Background()

	var sourceID string
	err := op.DB().QueryRowContext(ctx,
		`SELECT source_id FROM items LIMIT 1`).Scan(&sourceID)
	require.NoError(t, err)

	stmt := op.Rebind(`INSERT INTO items (item_id, name, name_norm, category_id,
		note, source_id, source_url, fetched_at, updated_at)
		VALUES (?, ?, ?, 'burnable', '', ?, '', '', '')`)
	for _, name := range []string{
		"PEN", "PENCIL", "PENCASE", "pen-a", "pencil sharpener",
	} {
		_, err = op.DB().ExecContext(ctx, stmt,
			ident.DeriveID("item", name, 12), name, name, sourceID)
		require.NoError(t, err)
	}

	names := func(res *query.Resolution) []string {
		var out []string
		for _, s := range res.Suggestions {
			out = append(out, s.Name)
		}
		return out
	}

	tests := []struct {
		msg  string
		text string
		k    int
		want []string
	}{
		{"lower case fills k", "pen", 2, []string{"pen-a", "pencil sharpener"}},
		{"lower case only", "pen", 5, []string{"pen-a", "pencil sharpener"}},
		{"upper case", "PE", 2, []string{"PEN", "PENCIL"}},
		{"upper case all", "PENC", 5, []string{"PENCIL", "PENCASE"}},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := q.ResolveCategory(ctx, v.text, v.k)
			require.NoError(t, err)
			assert.False(t, res.Resolved())
			assert.Equal(t, v.want, names(res))
		})
	}
}

func TestNextPickup(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	tests := []struct {
		msg       string
		area, cat string
		asOf      time.Time
		date      string
		isToday   bool
		canPutOut bool
	}{
		{"before deadline", "本町1丁目", "pet", at(9, 6, 50), "2025-04-09", true, true},
		{"after deadline", "本町1丁目", "pet", at(9, 7, 30), "2025-04-09", true, false},
		{"day before", "本町1丁目", "pet", at(8, 23, 0), "2025-04-09", false, true},
		{"next occurrence", "本町1丁目", "pet", at(10, 6, 0), "2025-04-23", false, true},
		{"category by name", "本町1丁目", "ペットボトル", at(1, 6, 0), "2025-04-09", false, true},
		{"area by id", ident.AreaID("末松1丁目", 12), "large", at(16, 20, 0),
			"2025-04-16", true, true},
		{"full-width digit", "本町２丁目", "burnable", at(7, 8, 0), "2025-04-07", true, true},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := q.NextPickup(ctx, v.area, v.cat, v.asOf)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, v.date, res.Date)
			assert.Equal(t, v.isToday, res.IsToday)
			assert.Equal(t, v.canPutOut, res.CanPutOut)
		})
	}
}

func TestNextPickupDetails(t *testing.T) {
	q := newQuerier(t)

	res, err := q.NextPickup(context.Background(), "本町1丁目", "pet", at(1, 0, 0))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "本町1丁目", res.AreaName)
	assert.Equal(t, "ペットボトル", res.CategoryName)
	assert.Equal(t, "07:00", res.DeadlineTime)
	assert.Equal(t, "キャップを外してください", res.Note)
}

func TestNextPickupAbsent(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	tests := []struct {
		msg       string
		area, cat string
		asOf      time.Time
	}{
		{"unknown area", "金沢", "pet", at(1, 0, 0)},
		{"unknown category", "本町1丁目", "glass", at(1, 0, 0)},
		{"no link", "本町1丁目", "large", at(1, 0, 0)},
		{"after range", "本町1丁目", "pet", at(24, 0, 0)},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := q.NextPickup(ctx, v.area, v.cat, v.asOf)
			require.NoError(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestNextPickupForItem(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	p, res, err := q.NextPickupForItem(ctx, "本町1丁目", "ペット", at(1, 0, 0))
	require.NoError(t, err)
	assert.True(t, res.Resolved())
	require.NotNil(t, p)
	assert.Equal(t, "pet", p.CategoryID)
	assert.Equal(t, "2025-04-09", p.Date)

	p, res, err = q.NextPickupForItem(ctx, "本町1丁目", "ペットボ", at(1, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.False(t, res.Resolved())
	assert.NotEmpty(t, res.Suggestions)

	p, res, err = q.NextPickupForItem(ctx, "本町1丁目", "ソファー", at(1, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, "large", res.Item.CategoryID)
}

func TestEvents(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	res, err := q.Events(ctx, "本町2丁目", "", at(1, 0, 0), at(30, 0, 0))
	require.NoError(t, err)
	assert.Len(t, res, 11)
	assert.Equal(t, "2025-04-03", res[0].Date)
	assert.Equal(t, "本町2丁目", res[0].AreaName)

	res, err = q.Events(ctx, "本町2丁目", "燃やすごみ", at(1, 0, 0), at(10, 0, 0))
	require.NoError(t, err)
	var dates []string
	for _, e := range res {
		dates = append(dates, e.Date)
	}
	assert.Equal(t, []string{"2025-04-03", "2025-04-07", "2025-04-10"}, dates)

	res, err = q.Events(ctx, "金沢", "", at(1, 0, 0), at(30, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = q.Events(ctx, "本町2丁目", "", at(10, 0, 0), at(1, 0, 0))
	assert.Equal(t, errcode.QueryInvalidInputError, code(t, err))
}

func TestListings(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	areas, err := q.Areas(ctx)
	require.NoError(t, err)
	var names []string
	for _, a := range areas {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"末松1丁目", "本町1丁目", "本町2丁目"}, names)

	cats, err := q.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 3)
	assert.Equal(t, "burnable", cats[0].CategoryID)
	assert.Equal(t, "指定袋に入れて出してください", cats[0].DisposalInstructions)
	assert.Equal(t, "large", cats[1].CategoryID)
	assert.Empty(t, cats[1].DeadlineTime)
}

func TestInvalidInput(t *testing.T) {
	q := newQuerier(t)
	ctx := context.Background()

	_, err := q.ResolveCategory(ctx, "  ", 5)
	assert.Equal(t, errcode.QueryInvalidInputError, code(t, err))

	_, err = q.NextPickup(ctx, "", "pet", at(1, 0, 0))
	assert.Equal(t, errcode.QueryInvalidInputError, code(t, err))
}

func TestNotConnected(t *testing.T) {
	q := ioquery.New(config.New(), iodb.New())
	_, err := q.Areas(context.Background())
	assert.Equal(t, errcode.DBNotConnectedError, code(t, err))
}

func TestLocation(t *testing.T) {
	loc := ioquery.Location("Nowhere/City")
	_, offset := time.Date(2025, 4, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*60*60, offset)
}

func code(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	return gnErr.Code
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		msg, in string
		res     time.Time
		err     bool
	}{
		{"empty", "", time.Time{}, false},
		{"rfc3339", "2025-04-09T06:50:00+09:00", at(9, 6, 50), false},
		{"local minutes", "2025-04-09T06:50", at(9, 6, 50), false},
		{"local with space", "2025-04-09 07:30", at(9, 7, 30), false},
		{"date", "2025-04-09", at(9, 0, 0), false},
		{"garbage", "tomorrow", time.Time{}, true},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			res, err := ioquery.ParseTime(v.in, jst)
			if v.err {
				assert.Equal(t, errcode.QueryInvalidInputError, code(t, err))
				return
			}
			require.NoError(t, err)
			assert.True(t, v.res.Equal(res), res)
		})
	}
}
