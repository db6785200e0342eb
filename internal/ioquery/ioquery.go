// Package ioquery implements the Querier interface on top of a seeded
// store. It never writes.
package ioquery

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/HashiReo/nonoichi-waste-app/pkg/ident"
	"github.com/HashiReo/nonoichi-waste-app/pkg/pickup"
	"github.com/HashiReo/nonoichi-waste-app/pkg/query"
)

const dateFormat = "2006-01-02"

type querier struct {
	cfg      *config.Config
	operator db.Operator
	loc      *time.Location
}

// New creates a new Querier. Instants without a location are read in
// the configured time zone.
func New(cfg *config.Config, op db.Operator) query.Querier {
	return &querier{
		cfg:      cfg,
		operator: op,
		loc:      Location(cfg.Query.TimeZone),
	}
}

// Location loads a time zone by name. Japan Standard Time is used when
// the zone is unknown or tzdata is missing.
func Location(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("Cannot load time zone, using JST", "zone", name, "error", err)
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

func (q *querier) ResolveCategory(
	ctx context.Context,
	text string,
	k int,
) (*query.Resolution, error) {
	if q.operator.DB() == nil {
		return nil, NotConnectedError()
	}
	norm := ident.Normalize(text)
	if norm == "" {
		return nil, InvalidInputError("item", text)
	}
	if k <= 0 {
		k = q.cfg.Query.Suggestions
	}

	res := &query.Resolution{Query: text, Normalized: norm}

	item, err := q.itemByName(ctx, norm)
	if err != nil {
		return nil, QueryError("item", err)
	}
	if item == nil {
		item, err = q.itemByAlias(ctx, norm)
		if err != nil {
			return nil, QueryError("item alias", err)
		}
	}
	if item != nil {
		res.Item = item
		slog.Debug("Item resolved", "query", norm, "item_id", item.ItemID,
			"matched_by", item.MatchedBy)
		return res, nil
	}

	res.Suggestions, err = q.suggestions(ctx, norm, k)
	if err != nil {
		return nil, QueryError("item suggestions", err)
	}
	slog.Debug("Item not resolved", "query", norm, "suggestions", len(res.Suggestions))
	return res, nil
}

const itemColumns = `i.item_id, i.name, i.name_norm, i.category_id, c.name, i.note`

func (q *querier) itemByName(ctx context.Context, norm string) (*query.Item, error) {
	stmt := `SELECT ` + itemColumns + `
		FROM items i JOIN categories c ON c.category_id = i.category_id
		WHERE i.name_norm = ?`
	return q.item(ctx, query.MatchName, stmt, norm)
}

func (q *querier) itemByAlias(ctx context.Context, norm string) (*query.Item, error) {
	stmt := `SELECT ` + itemColumns + `
		FROM item_aliases a
		JOIN items i ON i.item_id = a.item_id
		JOIN categories c ON c.category_id = i.category_id
		WHERE a.alias_norm = ?`
	return q.item(ctx, query.MatchAlias, stmt, norm)
}

func (q *querier) item(
	ctx context.Context,
	match query.Match,
	stmt string,
	args ...any,
) (*query.Item, error) {
	row := q.operator.DB().QueryRowContext(ctx, q.operator.Rebind(stmt), args...)
	res := query.Item{MatchedBy: match}
	err := row.Scan(&res.ItemID, &res.Name, &res.NameNorm,
		&res.CategoryID, &res.CategoryName, &res.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// suggestions returns items whose normalized name starts with norm,
// shortest first.
func (q *querier) suggestions(
	ctx context.Context,
	norm string,
	k int,
) ([]query.Item, error) {
	stmt := `SELECT ` + itemColumns + `
		FROM items i JOIN categories c ON c.category_id = i.category_id
		WHERE substr(i.name_norm, 1, ?) = ?
		ORDER BY length(i.name_norm), i.name_norm
		LIMIT ?`
	// substr is case-sensitive on both drivers, LIKE is not on SQLite.
	rows, err := q.operator.DB().QueryContext(ctx, q.operator.Rebind(stmt),
		utf8.RuneCountInString(norm), norm, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []query.Item
	for rows.Next() {
		it := query.Item{MatchedBy: query.MatchPrefix}
		if err = rows.Scan(&it.ItemID, &it.Name, &it.NameNorm,
			&it.CategoryID, &it.CategoryName, &it.Note); err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (q *querier) NextPickup(
	ctx context.Context,
	area, category string,
	asOf time.Time,
) (*query.Pickup, error) {
	if q.operator.DB() == nil {
		return nil, NotConnectedError()
	}
	ar, err := q.area(ctx, area)
	if err != nil || ar == nil {
		return nil, err
	}
	cat, err := q.category(ctx, category)
	if err != nil || cat == nil {
		return nil, err
	}
	return q.nextPickup(ctx, ar, cat, q.asOf(asOf))
}

func (q *querier) NextPickupForItem(
	ctx context.Context,
	area, item string,
	asOf time.Time,
) (*query.Pickup, *query.Resolution, error) {
	res, err := q.ResolveCategory(ctx, item, 0)
	if err != nil {
		return nil, nil, err
	}
	if !res.Resolved() {
		return nil, res, nil
	}

	ar, err := q.area(ctx, area)
	if err != nil || ar == nil {
		return nil, res, err
	}
	cat := &query.Category{
		CategoryID: res.Item.CategoryID,
		Name:       res.Item.CategoryName,
	}
	p, err := q.nextPickup(ctx, ar, cat, q.asOf(asOf))
	return p, res, err
}

func (q *querier) nextPickup(
	ctx context.Context,
	ar *query.Area,
	cat *query.Category,
	asOf time.Time,
) (*query.Pickup, error) {
	stmt := `SELECT collection_date, deadline_time, note
		FROM collection_events
		WHERE area_id = ? AND category_id = ? AND collection_date >= ?
		ORDER BY collection_date
		LIMIT 1`
	res := query.Pickup{
		AreaID:       ar.AreaID,
		AreaName:     ar.Name,
		CategoryID:   cat.CategoryID,
		CategoryName: cat.Name,
	}
	err := q.operator.DB().QueryRowContext(ctx, q.operator.Rebind(stmt),
		ar.AreaID, cat.CategoryID, asOf.Format(dateFormat),
	).Scan(&res.Date, &res.DeadlineTime, &res.Note)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("No pickup found", "area_id", ar.AreaID, "category_id", cat.CategoryID)
		return nil, nil
	}
	if err != nil {
		return nil, QueryError("next pickup", err)
	}

	res.Judgment, err = pickup.Judge(res.Date, res.DeadlineTime, asOf)
	if err != nil {
		return nil, QueryError("next pickup", err)
	}
	return &res, nil
}

func (q *querier) Events(
	ctx context.Context,
	area, category string,
	from, to time.Time,
) ([]query.Event, error) {
	if q.operator.DB() == nil {
		return nil, NotConnectedError()
	}
	if to.Before(from) {
		return nil, InvalidInputError("date range",
			from.Format(dateFormat)+".."+to.Format(dateFormat))
	}
	ar, err := q.area(ctx, area)
	if err != nil || ar == nil {
		return nil, err
	}

	stmt := `SELECT e.category_id, c.name, e.collection_date,
			e.deadline_time, e.note
		FROM collection_events e
		JOIN categories c ON c.category_id = e.category_id
		WHERE e.area_id = ? AND e.collection_date BETWEEN ? AND ?`
	args := []any{ar.AreaID, from.Format(dateFormat), to.Format(dateFormat)}
	if category != "" {
		cat, err := q.category(ctx, category)
		if err != nil || cat == nil {
			return nil, err
		}
		stmt += ` AND e.category_id = ?`
		args = append(args, cat.CategoryID)
	}
	stmt += ` ORDER BY e.collection_date, e.category_id`

	rows, err := q.operator.DB().QueryContext(ctx, q.operator.Rebind(stmt), args...)
	if err != nil {
		return nil, QueryError("events", err)
	}
	defer rows.Close()

	var res []query.Event
	for rows.Next() {
		ev := query.Event{AreaID: ar.AreaID, AreaName: ar.Name}
		if err = rows.Scan(&ev.CategoryID, &ev.CategoryName, &ev.Date,
			&ev.DeadlineTime, &ev.Note); err != nil {
			return nil, QueryError("events", err)
		}
		res = append(res, ev)
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError("events", err)
	}
	return res, nil
}

func (q *querier) Areas(ctx context.Context) ([]query.Area, error) {
	if q.operator.DB() == nil {
		return nil, NotConnectedError()
	}
	rows, err := q.operator.DB().QueryContext(ctx,
		`SELECT area_id, name FROM areas ORDER BY name, area_id`)
	if err != nil {
		return nil, QueryError("areas", err)
	}
	defer rows.Close()

	var res []query.Area
	for rows.Next() {
		var a query.Area
		if err = rows.Scan(&a.AreaID, &a.Name); err != nil {
			return nil, QueryError("areas", err)
		}
		res = append(res, a)
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError("areas", err)
	}
	return res, nil
}

func (q *querier) Categories(ctx context.Context) ([]query.Category, error) {
	if q.operator.DB() == nil {
		return nil, NotConnectedError()
	}
	res, err := q.categories(ctx)
	if err != nil {
		return nil, QueryError("categories", err)
	}
	return res, nil
}

func (q *querier) categories(ctx context.Context) ([]query.Category, error) {
	rows, err := q.operator.DB().QueryContext(ctx,
		`SELECT category_id, name, deadline_time, disposal_instructions
		FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []query.Category
	for rows.Next() {
		var c query.Category
		if err = rows.Scan(&c.CategoryID, &c.Name, &c.DeadlineTime,
			&c.DisposalInstructions); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

// area finds an area by name through its derived id, or by the id
// itself.
func (q *querier) area(ctx context.Context, area string) (*query.Area, error) {
	norm := ident.Normalize(area)
	if norm == "" {
		return nil, InvalidInputError("area", area)
	}

	stmt := q.operator.Rebind(
		`SELECT area_id, name FROM areas WHERE area_id = ? OR area_id = ?`)
	var res query.Area
	err := q.operator.DB().QueryRowContext(ctx, stmt,
		ident.AreaID(norm, q.cfg.Seed.IDLength), norm,
	).Scan(&res.AreaID, &res.Name)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("Area not found", "area", norm)
		return nil, nil
	}
	if err != nil {
		return nil, QueryError("area", err)
	}
	return &res, nil
}

// category finds a category by id or by normalized name.
func (q *querier) category(ctx context.Context, category string) (*query.Category, error) {
	norm := ident.Normalize(category)
	if norm == "" {
		return nil, InvalidInputError("category", category)
	}

	cats, err := q.categories(ctx)
	if err != nil {
		return nil, QueryError("category", err)
	}
	for i := range cats {
		if cats[i].CategoryID == norm || ident.Normalize(cats[i].Name) == norm {
			return &cats[i], nil
		}
	}
	slog.Debug("Category not found", "category", norm)
	return nil, nil
}

// asOf reads a zero instant as now in the configured zone.
func (q *querier) asOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().In(q.loc)
	}
	return t
}

// ParseTime reads a reference instant given as RFC 3339, as local
// "YYYY-MM-DDTHH:MM" or as a local date meaning its midnight. An empty
// string gives the zero time, which lookups read as now.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", dateFormat} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, InvalidInputError("time", s)
}
