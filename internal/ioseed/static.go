package ioseed

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/HashiReo/nonoichi-waste-app/pkg/ident"
	"github.com/HashiReo/nonoichi-waste-app/pkg/reconcile"
	"github.com/gnames/gn"
)

const (
	sourceTypePDF = "pdf"
	sourceTypeWeb = "web"
)

// upsertSource stores provenance of the document, replacing it by id.
func (s *seeder) upsertSource(ctx context.Context, r *run) error {
	pdf := r.doc.Sources.PDF
	r.sourceID = pdf.ID
	if r.sourceID == "" {
		r.sourceID = ident.DeriveID("src_pdf", pdf.Title, s.idLength())
	}
	r.report.SourceID = r.sourceID

	fetchedAt := pdf.FetchedAt
	if fetchedAt == "" {
		fetchedAt = r.stamp
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.saveSource(ctx, tx, r.sourceID, sourceTypePDF,
			pdf.Title, pdf.FilePath, "", fetchedAt)
	})
}

func (s *seeder) saveSource(
	ctx context.Context,
	tx *sql.Tx,
	id, typ, title, path, url, fetchedAt string,
) error {
	q := `INSERT INTO sources
		(source_id, source_type, title, file_path, url, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO UPDATE SET
			source_type = excluded.source_type,
			title = excluded.title,
			file_path = excluded.file_path,
			url = excluded.url,
			fetched_at = excluded.fetched_at`
	_, err := tx.ExecContext(ctx, s.q(q), id, typ, title, path, url, fetchedAt)
	if err == nil {
		slog.Info("Source saved", "source_id", id, "type", typ)
	}
	return err
}

// upsertCategories replaces every declared category by id.
func (s *seeder) upsertCategories(ctx context.Context, r *run) error {
	q := `INSERT INTO categories
		(category_id, name, deadline_time, disposal_instructions,
		source_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (category_id) DO UPDATE SET
			name = excluded.name,
			deadline_time = excluded.deadline_time,
			disposal_instructions = excluded.disposal_instructions,
			source_id = excluded.source_id,
			updated_at = excluded.updated_at`

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range r.doc.Categories {
			_, err := tx.ExecContext(ctx, s.q(q),
				c.ID, c.Name, c.DeadlineTime, c.DisposalInstructions,
				r.sourceID, r.stamp)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	gn.Message("<em>Saved %d categories</em>", len(r.doc.Categories))
	return nil
}

// upsertAreas stores every area named by an area group, the groups and
// their membership. Membership of each group is reconciled, so members
// dropped from the document are removed.
func (s *seeder) upsertAreas(ctx context.Context, r *run) error {
	type area struct{ id, name string }

	var areas []area
	seen := make(map[string]struct{})
	members := make(map[string][]string, len(r.doc.AreaGroups))
	for _, g := range r.doc.AreaGroups {
		for _, name := range g.Areas {
			id := ident.AreaID(name, s.idLength())
			members[g.ID] = append(members[g.ID], id)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			areas = append(areas, area{id: id, name: ident.Normalize(name)})
		}
	}

	qArea := `INSERT INTO areas (area_id, name, source_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (area_id) DO UPDATE SET
			name = excluded.name,
			source_id = excluded.source_id,
			updated_at = excluded.updated_at`
	qGroup := `INSERT INTO area_groups
		(area_group_id, name, source_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (area_group_id) DO UPDATE SET
			name = excluded.name,
			source_id = excluded.source_id,
			updated_at = excluded.updated_at`

	var added, removed int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, a := range areas {
			if _, err := tx.ExecContext(ctx, s.q(qArea),
				a.id, a.name, r.sourceID, r.stamp); err != nil {
				return err
			}
		}

		for _, g := range r.doc.AreaGroups {
			if _, err := tx.ExecContext(ctx, s.q(qGroup),
				g.ID, g.Name, r.sourceID, r.stamp); err != nil {
				return err
			}

			current, err := s.column(ctx, tx,
				`SELECT area_id FROM area_group_members
				WHERE area_group_id = ? ORDER BY area_id`, g.ID)
			if err != nil {
				return err
			}
			add, remove := reconcile.Diff(current, members[g.ID])
			for _, id := range remove {
				if _, err = tx.ExecContext(ctx, s.q(
					`DELETE FROM area_group_members
					WHERE area_group_id = ? AND area_id = ?`),
					g.ID, id); err != nil {
					return err
				}
			}
			for _, id := range add {
				if _, err = tx.ExecContext(ctx, s.q(
					`INSERT INTO area_group_members (area_group_id, area_id)
					VALUES (?, ?)`),
					g.ID, id); err != nil {
					return err
				}
			}
			added += len(add)
			removed += len(remove)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Area groups saved",
		"areas", len(areas),
		"groups", len(r.doc.AreaGroups),
		"members_added", added,
		"members_removed", removed,
	)
	gn.Message("<em>Saved %d areas in %d area groups</em>",
		len(areas), len(r.doc.AreaGroups))
	return nil
}
