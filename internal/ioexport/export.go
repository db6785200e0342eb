// Package ioexport writes the store out for people: one CSV file per
// table and iCalendar feeds of collection events.
package ioexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/HashiReo/nonoichi-waste-app/internal/iofs"
	"github.com/HashiReo/nonoichi-waste-app/pkg/db"
	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
)

// bom lets spreadsheet tools detect UTF-8 in exported files.
const bom = "\uFEFF"

type exporter struct {
	operator db.Operator
}

// New creates a new Exporter.
func New(op db.Operator) lifecycle.Exporter {
	return &exporter{operator: op}
}

// Export writes <table>.csv for every table into dir. Rows are ordered by
// all columns, so unchanged tables give identical files.
func (e *exporter) Export(ctx context.Context, dir string) ([]string, error) {
	if e.operator.DB() == nil {
		return nil, NotConnectedError()
	}

	var res []string
	for _, tbl := range schema.AllTables() {
		name := tbl.TableName()
		cols := schema.Columns(tbl)
		data, err := e.table(ctx, name, cols)
		if err != nil {
			return nil, ExportError(name, err)
		}

		path := filepath.Join(dir, name+".csv")
		if err = iofs.WriteFileAtomic(path, data); err != nil {
			return nil, err
		}
		res = append(res, path)
	}

	slog.Info("Tables exported", "dir", dir, "files", len(res))
	return res, nil
}

func (e *exporter) table(
	ctx context.Context,
	name string,
	cols []string,
) ([]byte, error) {
	list := strings.Join(cols, ", ")
	q := "SELECT " + list + " FROM " + name + " ORDER BY " + list
	rows, err := e.operator.DB().QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buf bytes.Buffer
	buf.WriteString(bom)
	w := csv.NewWriter(&buf)
	if err = w.Write(cols); err != nil {
		return nil, err
	}

	vals := make([]string, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		if err = w.Write(vals); err != nil {
			return nil, err
		}
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	w.Flush()
	if err = w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
