package ioseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/HashiReo/nonoichi-waste-app/internal/iocatalog"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/HashiReo/nonoichi-waste-app/pkg/ident"
	"github.com/HashiReo/nonoichi-waste-app/pkg/reconcile"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
)

// mergeCatalogue upserts catalogue items on their normalized name and
// reconciles item aliases of the document. A missing catalogue is
// skipped with a warning, aliases are skipped with it.
func (s *seeder) mergeCatalogue(ctx context.Context, r *run) error {
	if s.cfg.Seed.WithoutCatalogue {
		r.report.CatalogueSkipped = true
		slog.Info("Catalogue merge is disabled")
		return nil
	}

	path := s.cfg.CataloguePath()
	rows, err := iocatalog.Read(path)
	if err != nil {
		var gnErr *gn.Error
		if errors.As(err, &gnErr) && gnErr.Code == errcode.MissingInputError {
			msg := fmt.Sprintf("item catalogue %s is missing, items are not updated", path)
			gn.Warn("<warn>Item catalogue <em>%s</em> is missing, skipping items</warn>", path)
			slog.Warn("Catalogue is missing", "path", path)
			r.report.CatalogueSkipped = true
			r.report.Warnings = append(r.report.Warnings, msg)
			return nil
		}
		return err
	}

	src := s.catalogueSource(path, rows, r.stamp)
	excluded := make([]string, 0, len(s.cfg.Seed.ExcludedCategories))
	for _, c := range s.cfg.Seed.ExcludedCategories {
		excluded = append(excluded, ident.Normalize(c))
	}

	var merged, skipped, aliases int
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		cats, err := s.categoriesByName(ctx, tx)
		if err != nil {
			return err
		}

		var items []schema.Item
		for _, row := range rows {
			catNorm := ident.Normalize(row.Category)
			if slices.Contains(excluded, catNorm) {
				skipped++
				continue
			}
			catID, ok := cats[catNorm]
			if !ok {
				return UnknownCatalogueCategoryError(path, row.Line, row.Name, row.Category)
			}
			items = append(items, schema.Item{
				ItemID:     ident.ItemID(row.Name, row.Category, s.idLength()),
				Name:       row.Name,
				NameNorm:   ident.Normalize(row.Name),
				CategoryID: catID,
				Note:       row.Note,
				SourceID:   src.SourceID,
				SourceURL:  s.itemURL(src, row.Page),
				FetchedAt:  src.FetchedAt,
				UpdatedAt:  r.stamp,
			})
		}

		if err = s.saveSource(ctx, tx, src.SourceID, src.SourceType,
			src.Title, src.FilePath, src.URL, src.FetchedAt); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, s.q(
			`INSERT INTO items
			(item_id, name, name_norm, category_id, note, source_id,
			source_url, fetched_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (name_norm) DO UPDATE SET
				category_id = excluded.category_id,
				note = excluded.note,
				source_id = excluded.source_id,
				source_url = excluded.source_url,
				fetched_at = excluded.fetched_at,
				updated_at = excluded.updated_at`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, it := range items {
			if _, err = stmt.ExecContext(ctx,
				it.ItemID, it.Name, it.NameNorm, it.CategoryID, it.Note,
				it.SourceID, it.SourceURL, it.FetchedAt, it.UpdatedAt,
			); err != nil {
				return err
			}
			merged++
		}

		aliases, err = s.reconcileAliases(ctx, tx, r)
		return err
	})
	if err != nil {
		return err
	}

	r.report.ItemsMerged = merged
	r.report.ItemsSkipped = skipped
	slog.Info("Catalogue merged",
		"path", path,
		"source_id", src.SourceID,
		"items", merged,
		"skipped", skipped,
		"aliases", aliases,
	)
	gn.Message("<em>Merged %s items, skipped %s, %d aliases</em>",
		humanize.Comma(int64(merged)),
		humanize.Comma(int64(skipped)),
		aliases,
	)
	return nil
}

// catalogueSource builds the provenance row of the catalogue. Fetched
// catalogues carry page numbers and are attributed to the dictionary
// URL, others to their file.
func (s *seeder) catalogueSource(
	path string,
	rows []iocatalog.Row,
	stamp string,
) schema.Source {
	res := schema.Source{
		SourceType: sourceTypeWeb,
		Title:      "item catalogue",
		FilePath:   path,
		FetchedAt:  stamp,
	}
	if info, err := os.Stat(path); err == nil {
		res.FetchedAt = info.ModTime().UTC().Format(schema.TimeFormat)
	}

	fetched := slices.ContainsFunc(rows, func(r iocatalog.Row) bool {
		return r.Page > 0
	})
	if fetched {
		res.URL = s.cfg.Fetch.BaseURL
		res.SourceID = ident.DeriveID("src_web", res.URL, s.idLength())
		return res
	}
	res.SourceID = ident.DeriveID("src_web", path, s.idLength())
	return res
}

func (s *seeder) itemURL(src schema.Source, page int) string {
	if src.URL == "" || page <= 0 {
		return src.URL
	}
	return fmt.Sprintf("%s?page=%d", src.URL, page)
}

// categoriesByName maps normalized category names to ids.
func (s *seeder) categoriesByName(
	ctx context.Context,
	tx *sql.Tx,
) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT category_id, name FROM categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		res[ident.Normalize(name)] = id
	}
	return res, rows.Err()
}

// reconcileAliases makes the stored aliases of every item named in the
// document equal to the declared ones. An alias equal to the item name is
// ignored.
func (s *seeder) reconcileAliases(
	ctx context.Context,
	tx *sql.Tx,
	r *run,
) (int, error) {
	var total int
	for _, a := range r.doc.ItemAliases {
		norm := ident.Normalize(a.Item)
		ids, err := s.column(ctx, tx,
			`SELECT item_id FROM items WHERE name_norm = ?`, norm)
		if err != nil {
			return 0, err
		}
		if len(ids) == 0 {
			return 0, UnknownAliasItemError(a.Item)
		}
		itemID := ids[0]

		var desired []string
		for _, alias := range a.Aliases {
			an := ident.Normalize(alias)
			if an == "" || an == norm {
				continue
			}
			owners, err := s.column(ctx, tx,
				`SELECT item_id FROM item_aliases WHERE alias_norm = ?`, an)
			if err != nil {
				return 0, err
			}
			if len(owners) > 0 && owners[0] != itemID {
				return 0, AliasConflictError(alias, a.Item)
			}
			desired = append(desired, an)
		}

		current, err := s.column(ctx, tx,
			`SELECT alias_norm FROM item_aliases
			WHERE item_id = ? ORDER BY alias_norm`, itemID)
		if err != nil {
			return 0, err
		}
		add, remove := reconcile.Diff(current, desired)
		for _, an := range remove {
			if _, err = tx.ExecContext(ctx, s.q(
				`DELETE FROM item_aliases WHERE item_id = ? AND alias_norm = ?`),
				itemID, an); err != nil {
				return 0, err
			}
		}
		for _, an := range add {
			if _, err = tx.ExecContext(ctx, s.q(
				`INSERT INTO item_aliases (item_id, alias_norm) VALUES (?, ?)`),
				itemID, an); err != nil {
				return 0, err
			}
		}
		total += len(reconcile.Unique(desired))
	}
	return total, nil
}
