// Package query defines read-only lookups over a seeded store: item to
// category resolution and next pickup with its put-out judgment.
//
// Absence is never an error. A lookup that finds nothing returns a nil
// result and a nil error.
package query

import (
	"context"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/pkg/pickup"
)

// Querier answers item and pickup questions. Implementations are safe for
// concurrent use by several readers, but must not run while the store is
// being seeded.
type Querier interface {
	// ResolveCategory finds the item named by text, first by its own
	// normalized name, then by an alias. When nothing matches, the result
	// has no Item and carries up to k prefix suggestions ordered by
	// normalized length.
	ResolveCategory(ctx context.Context, text string, k int) (*Resolution, error)

	// NextPickup returns the earliest event for the area and category on
	// or after the date of asOf, or nil.
	NextPickup(
		ctx context.Context,
		area, category string,
		asOf time.Time,
	) (*Pickup, error)

	// NextPickupForItem resolves the item first and returns the next
	// pickup of its category. The resolution is returned in every case so
	// callers can show suggestions for an unknown item.
	NextPickupForItem(
		ctx context.Context,
		area, item string,
		asOf time.Time,
	) (*Pickup, *Resolution, error)

	// Events returns the events of an area between from and to
	// inclusive. An empty category means every category.
	Events(
		ctx context.Context,
		area, category string,
		from, to time.Time,
	) ([]Event, error)

	// Areas lists all areas ordered by name.
	Areas(ctx context.Context) ([]Area, error)

	// Categories lists all categories ordered by id.
	Categories(ctx context.Context) ([]Category, error)
}

// Match tells how an item was found.
type Match string

const (
	MatchName   Match = "name"
	MatchAlias  Match = "alias"
	MatchPrefix Match = "prefix"
)

// Item is a catalogue entry with its category.
type Item struct {
	ItemID       string `json:"item_id"`
	Name         string `json:"name"`
	NameNorm     string `json:"-"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Note         string `json:"note,omitempty"`
	MatchedBy    Match  `json:"matched_by"`
}

// Resolution is the outcome of ResolveCategory.
type Resolution struct {
	// Query is the text as given.
	Query string `json:"query"`

	// Normalized is the normalized form of Query used for matching.
	Normalized string `json:"normalized"`

	// Item is the resolved item, nil when nothing matched exactly.
	Item *Item `json:"item,omitempty"`

	// Suggestions are items whose normalized name starts with
	// Normalized. They are a convenience, not a resolution.
	Suggestions []Item `json:"suggestions,omitempty"`
}

// Resolved returns true when an item was found by name or alias.
func (r *Resolution) Resolved() bool {
	return r != nil && r.Item != nil
}

// Pickup is the next collection event with its put-out judgment.
type Pickup struct {
	AreaID       string `json:"area_id"`
	AreaName     string `json:"area_name"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Date         string `json:"date"`
	DeadlineTime string `json:"deadline_time,omitempty"`
	Note         string `json:"note,omitempty"`

	pickup.Judgment
}

// Event is one stored collection event.
type Event struct {
	AreaID       string `json:"area_id"`
	AreaName     string `json:"area_name"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Date         string `json:"date"`
	DeadlineTime string `json:"deadline_time,omitempty"`
	Note         string `json:"note,omitempty"`
}

// Area is a named pickup zone.
type Area struct {
	AreaID string `json:"area_id"`
	Name   string `json:"name"`
}

// Category is a disposal class.
type Category struct {
	CategoryID           string `json:"category_id"`
	Name                 string `json:"name"`
	DeadlineTime         string `json:"deadline_time,omitempty"`
	DisposalInstructions string `json:"disposal_instructions,omitempty"`
}
