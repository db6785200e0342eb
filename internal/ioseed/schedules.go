package ioseed

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"

	"github.com/HashiReo/nonoichi-waste-app/pkg/reconcile"
	"github.com/HashiReo/nonoichi-waste-app/pkg/rule"
	"github.com/gnames/gn"
)

// upsertScheduleGroups replaces schedule groups by id. The rule is kept
// as its kind and canonical JSON. Every group must reference a stored
// category, otherwise nothing is written.
func (s *seeder) upsertScheduleGroups(ctx context.Context, r *run) error {
	q := `INSERT INTO schedule_groups
		(schedule_group_id, category_id, name, rule_type, rule_json,
		note, source_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (schedule_group_id) DO UPDATE SET
			category_id = excluded.category_id,
			name = excluded.name,
			rule_type = excluded.rule_type,
			rule_json = excluded.rule_json,
			note = excluded.note,
			source_id = excluded.source_id,
			updated_at = excluded.updated_at`

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		cats, err := s.column(ctx, tx, `SELECT category_id FROM categories`)
		if err != nil {
			return err
		}
		for _, g := range r.doc.ScheduleGroups {
			if !slices.Contains(cats, g.CategoryID) {
				return MissingCategoryError(g.ID, g.CategoryID)
			}
		}

		for _, g := range r.doc.ScheduleGroups {
			kind, js, err := rule.Encode(g.Rule.Rule)
			if err != nil {
				return err
			}
			if _, err = tx.ExecContext(ctx, s.q(q),
				g.ID, g.CategoryID, g.Name, string(kind), js,
				g.NoteText(), r.sourceID, r.stamp); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	gn.Message("<em>Saved %d schedule groups</em>", len(r.doc.ScheduleGroups))
	return nil
}

// upsertLinks checks every declared link against the store and then
// reconciles the links of each area group of the document. A single bad
// link aborts the step before any link is written.
func (s *seeder) upsertLinks(ctx context.Context, r *run) error {
	desired := make(map[string][]string)
	var groups []string
	for _, g := range r.doc.AreaGroups {
		groups = append(groups, g.ID)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		stored, err := s.scheduleCategories(ctx, tx)
		if err != nil {
			return err
		}
		areaGroups, err := s.column(ctx, tx,
			`SELECT area_group_id FROM area_groups`)
		if err != nil {
			return err
		}

		for _, l := range r.doc.Links {
			if !slices.Contains(areaGroups, l.AreaGroupID) {
				return DanglingLinkError("area group", l.AreaGroupID)
			}
			for _, ls := range l.Schedules {
				cat, ok := stored[ls.ScheduleID]
				if !ok {
					return DanglingLinkError("schedule group", ls.ScheduleID)
				}
				if ls.CategoryID != cat {
					return LinkMismatchError(
						l.AreaGroupID, ls.ScheduleID, ls.CategoryID, cat)
				}
				desired[l.AreaGroupID] = append(desired[l.AreaGroupID], ls.ScheduleID)
			}
			groups = append(groups, l.AreaGroupID)
		}

		var added, removed int
		for _, gid := range reconcile.Unique(groups) {
			current, err := s.column(ctx, tx,
				`SELECT schedule_group_id FROM area_group_schedule_links
				WHERE area_group_id = ? ORDER BY schedule_group_id`, gid)
			if err != nil {
				return err
			}
			add, remove := reconcile.Diff(current, desired[gid])
			for _, sid := range remove {
				if _, err = tx.ExecContext(ctx, s.q(
					`DELETE FROM area_group_schedule_links
					WHERE area_group_id = ? AND schedule_group_id = ?`),
					gid, sid); err != nil {
					return err
				}
			}
			for _, sid := range add {
				if _, err = tx.ExecContext(ctx, s.q(
					`INSERT INTO area_group_schedule_links
					(area_group_id, schedule_group_id) VALUES (?, ?)`),
					gid, sid); err != nil {
					return err
				}
			}
			added += len(add)
			removed += len(remove)
		}
		slog.Info("Links saved", "added", added, "removed", removed)
		return nil
	})
	if err != nil {
		return err
	}

	var n int
	for _, v := range desired {
		n += len(reconcile.Unique(v))
	}
	gn.Message("<em>Saved %d links</em>", n)
	return nil
}

// scheduleCategories maps stored schedule group ids to their category.
func (s *seeder) scheduleCategories(
	ctx context.Context,
	tx *sql.Tx,
) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT schedule_group_id, category_id FROM schedule_groups`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]string)
	for rows.Next() {
		var id, cat string
		if err := rows.Scan(&id, &cat); err != nil {
			return nil, err
		}
		res[id] = cat
	}
	return res, rows.Err()
}
