package ioseed

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/HashiReo/nonoichi-waste-app/pkg/rule"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schedule"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
)

// linkRule is a stored link joined with its schedule group and category.
type linkRule struct {
	areaGroupID     string
	scheduleGroupID string
	categoryID      string
	ruleType        string
	ruleJSON        string
	note            string
	deadline        string
}

// materializeEvents replaces the events of the current source. Rules are
// decoded from their stored form, evaluated over the effective range and
// fanned out over member areas. An (area, category, date) that already
// has an event keeps it.
func (s *seeder) materializeEvents(ctx context.Context, r *run) error {
	start := r.doc.EffectiveStart.Time
	end := r.doc.EffectiveEnd.Time

	var inserted, duplicate int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(
			`DELETE FROM collection_events WHERE source_id = ?`), r.sourceID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			slog.Info("Stale events removed", "source_id", r.sourceID, "events", n)
		}

		links, err := s.links(ctx, tx, r.sourceID)
		if err != nil {
			return err
		}

		members := make(map[string][]string)
		for _, l := range links {
			if _, ok := members[l.areaGroupID]; ok {
				continue
			}
			areas, err := s.column(ctx, tx,
				`SELECT area_id FROM area_group_members
				WHERE area_group_id = ? ORDER BY area_id`, l.areaGroupID)
			if err != nil {
				return err
			}
			members[l.areaGroupID] = areas
		}

		stmt, err := tx.PrepareContext(ctx, s.q(
			`INSERT INTO collection_events
			(area_id, category_id, collection_date, deadline_time, note, source_id)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (area_id, category_id, collection_date) DO NOTHING`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, l := range links {
			rl, err := rule.Decode(rule.Kind(l.ruleType), l.ruleJSON)
			if err != nil {
				return err
			}
			dates, err := rule.Evaluate(rl, start, end)
			if err != nil {
				return err
			}

			for _, area := range members[l.areaGroupID] {
				for _, d := range dates {
					res, err := stmt.ExecContext(ctx,
						area, l.categoryID, d.Format(schedule.DateFormat),
						l.deadline, l.note, r.sourceID)
					if err != nil {
						return err
					}
					n, err := res.RowsAffected()
					if err != nil {
						return err
					}
					if n == 0 {
						duplicate++
						continue
					}
					inserted++
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.report.EventsInserted = inserted
	r.report.EventsDuplicate = duplicate
	slog.Info("Events generated",
		"source_id", r.sourceID,
		"from", r.doc.EffectiveStart.String(),
		"to", r.doc.EffectiveEnd.String(),
		"inserted", inserted,
		"duplicate", duplicate,
	)
	gn.Message("<em>Generated %s collection events</em>",
		humanize.Comma(int64(inserted)))
	return nil
}

// links returns stored links of area groups that belong to the source,
// in a stable order so duplicate fan-outs resolve the same way on every
// run.
func (s *seeder) links(
	ctx context.Context,
	tx *sql.Tx,
	sourceID string,
) ([]linkRule, error) {
	q := `SELECT l.area_group_id, sg.schedule_group_id, sg.category_id,
		sg.rule_type, sg.rule_json, sg.note, c.deadline_time
		FROM area_group_schedule_links l
		JOIN area_groups ag ON ag.area_group_id = l.area_group_id
		JOIN schedule_groups sg ON sg.schedule_group_id = l.schedule_group_id
		JOIN categories c ON c.category_id = sg.category_id
		WHERE ag.source_id = ?
		ORDER BY l.area_group_id, sg.schedule_group_id`

	rows, err := tx.QueryContext(ctx, s.q(q), sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []linkRule
	for rows.Next() {
		var l linkRule
		err := rows.Scan(&l.areaGroupID, &l.scheduleGroupID, &l.categoryID,
			&l.ruleType, &l.ruleJSON, &l.note, &l.deadline)
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, rows.Err()
}
