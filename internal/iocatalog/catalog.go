// Package iocatalog reads and writes the raw item catalogue: a CSV file
// with item_name, category and optional note and page columns, as
// scraped from the municipal item dictionary.
package iocatalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/gnames/gnlib"
)

// Header of catalogue files written by the fetcher.
var Header = []string{"item_name", "category", "note", "page"}

const bom = "\uFEFF"

// Row is one catalogue entry.
type Row struct {
	// Line is the line number in the file, header is line 1.
	Line int

	Name     string
	Category string
	Note     string

	// Page is the dictionary page the row was found on, 0 if unknown.
	Page int
}

// Read parses the catalogue at path. A missing file returns an error
// with errcode.MissingInputError.
func Read(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, MissingCatalogueError(path, err)
	}
	if err != nil {
		return nil, ReadError(path, err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, ReadError(path, err)
	}
	return rows, nil
}

// Parse reads catalogue rows from r. Columns are found by header name,
// unknown columns are ignored. A leading UTF-8 byte order mark is
// dropped and invalid UTF-8 is repaired. Rows without an item name are
// skipped.
func Parse(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && string(b) == bom {
		br.Discard(len(bom))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("catalogue is empty")
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	nameIdx, ok := cols["item_name"]
	if !ok {
		return nil, errors.New("column item_name is missing")
	}
	catIdx, ok := cols["category"]
	if !ok {
		return nil, errors.New("column category is missing")
	}
	noteIdx, hasNote := cols["note"]
	pageIdx, hasPage := cols["page"]

	var res []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		row := Row{
			Line:     line,
			Name:     field(rec, nameIdx),
			Category: field(rec, catIdx),
		}
		if row.Name == "" {
			continue
		}
		if hasNote {
			row.Note = field(rec, noteIdx)
		}
		if hasPage {
			if p, err := strconv.Atoi(field(rec, pageIdx)); err == nil {
				row.Page = p
			}
		}
		res = append(res, row)
	}
	return res, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(gnlib.FixUtf8(rec[i]))
}

// Encode writes rows as a catalogue CSV with a byte order mark, so
// spreadsheet tools detect UTF-8.
func Encode(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		page := ""
		if r.Page > 0 {
			page = strconv.Itoa(r.Page)
		}
		if err := w.Write([]string{r.Name, r.Category, r.Note, page}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("cannot encode catalogue: %w", err)
	}
	return buf.Bytes(), nil
}
