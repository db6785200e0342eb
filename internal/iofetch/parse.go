package iofetch

import (
	"errors"
	"io"
	"iter"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/HashiReo/nonoichi-waste-app/internal/iocatalog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	totalPagesRe = regexp.MustCompile(`全[\s　]*([0-9]+)[\s　]*ページ`)

	errNoTable = errors.New("item table not found")

	tableClasses = []string{"table", "table-striped", "table-hover"}
)

// totalPages reads the page count from the "全 N ページ" caption. It
// returns 0 when the caption is missing.
func totalPages(doc string) int {
	m := totalPagesRe.FindStringSubmatch(doc)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// parseRows extracts catalogue rows from the item table of a listing
// page. The first cell is the item name. The second cell holds the
// category as its own text and an optional note in a nested div.
func parseRows(r io.Reader, page int) ([]iocatalog.Row, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	table := find(root, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClasses(n, tableClasses...)
	})
	if table == nil {
		return nil, errNoTable
	}

	var res []iocatalog.Row
	for body := range children(table, atom.Tbody) {
		for tr := range children(body, atom.Tr) {
			var tds []*html.Node
			for td := range children(tr, atom.Td) {
				tds = append(tds, td)
			}
			if len(tds) < 2 {
				continue
			}
			row := iocatalog.Row{
				Name:     strings.Join(texts(tds[0]), " "),
				Category: category(tds[1]),
				Page:     page,
			}
			if div := find(tds[1], func(n *html.Node) bool {
				return n.DataAtom == atom.Div
			}); div != nil {
				row.Note = strings.Join(texts(div), "\n")
			}
			if row.Name == "" {
				continue
			}
			res = append(res, row)
		}
	}
	return res, nil
}

// category returns the first own text of the cell, or all of its text
// when the cell has no own text.
func category(td *html.Node) string {
	for c := td.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		if s := strings.TrimSpace(c.Data); s != "" {
			return s
		}
	}
	return strings.Join(texts(td), " ")
}

// children yields the direct element children of n with the given tag.
func children(n *html.Node, a atom.Atom) iter.Seq[*html.Node] {
	return func(yield func(*html.Node) bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				if !yield(c) {
					return
				}
			}
		}
	}
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
		if res := find(c, match); res != nil {
			return res
		}
	}
	return nil
}

// texts returns trimmed non-empty text nodes under n in document order.
func texts(n *html.Node) []string {
	var res []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				res = append(res, s)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return res
}

func hasClasses(n *html.Node, want ...string) bool {
	var classes []string
	for _, a := range n.Attr {
		if a.Key == "class" {
			classes = strings.Fields(a.Val)
		}
	}
	for _, w := range want {
		if !slices.Contains(classes, w) {
			return false
		}
	}
	return true
}
