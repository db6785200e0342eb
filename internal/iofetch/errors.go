package iofetch

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// PageError is returned when a listing page cannot be downloaded after
// all retries.
func PageError(url string, page int, err error) error {
	msg := `Cannot download page <em>%d</em> of <em>%s</em>

Check the network connection and fetch.base_url in the config.`
	vars := []any{page, url}

	return &gn.Error{
		Code: errcode.FetchPageError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("fetch page %d of %s: %w", page, url, err),
	}
}

// ParseError is returned when a page has no item table.
func ParseError(page int, err error) error {
	msg := `Page <em>%d</em> has no item table

The layout of the item dictionary may have changed.`
	vars := []any{page}

	return &gn.Error{
		Code: errcode.FetchParseError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("parse page %d: %w", page, err),
	}
}

// NoDataError is returned when the first page lists no items.
func NoDataError(url string) error {
	msg := "No items found at <em>%s</em>"
	vars := []any{url}

	return &gn.Error{
		Code: errcode.FetchNoDataError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("no items at %s", url),
	}
}

// CancelledError is returned when the context is cancelled during the
// download. The catalogue file is left untouched.
func CancelledError(err error) error {
	msg := "Fetch was cancelled, the catalogue is not changed"

	return &gn.Error{
		Code: errcode.FetchPageError,
		Msg:  msg,
		Err:  fmt.Errorf("fetch cancelled: %w", err),
	}
}
