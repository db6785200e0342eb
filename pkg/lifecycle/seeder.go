package lifecycle

import (
	"context"
	"time"
)

// Seeder defines the interface for loading a schedule document into the
// store.
//
// Seeding runs as an ordered sequence of steps: source, categories,
// areas and area groups, schedule groups, links, events, item catalogue
// and export. Every step runs in its own transaction and commits before
// the next one starts. A failing step leaves the results of earlier steps
// in place and skips the rest. Each step is idempotent, so a later
// successful run repairs the store.
type Seeder interface {
	// Seed runs every step and returns a summary of the run.
	Seed(ctx context.Context) (*Report, error)
}

// Table row counts of a Report.
const (
	TableSources        = "sources"
	TableCategories     = "categories"
	TableAreas          = "areas"
	TableAreaGroups     = "area_groups"
	TableMembers        = "area_group_members"
	TableScheduleGroups = "schedule_groups"
	TableLinks          = "area_group_schedule_links"
	TableEvents         = "collection_events"
	TableItems          = "items"
	TableItemAliases    = "item_aliases"
)

// Report summarizes one seeding run.
type Report struct {
	// RunID identifies the run in logs.
	RunID string `json:"run_id"`

	// SourceID is the provenance id of the schedule document.
	SourceID string `json:"source_id"`

	// Counts holds the number of rows written per table.
	Counts map[string]int `json:"counts"`

	// EventsInserted is the number of stored events. Fan-outs that
	// collide on (area, category, date) are counted once.
	EventsInserted int `json:"events_inserted"`

	// EventsDuplicate is the number of fan-outs dropped as duplicates.
	EventsDuplicate int `json:"events_duplicate"`

	// ItemsMerged is the number of catalogue rows written as items.
	ItemsMerged int `json:"items_merged"`

	// ItemsSkipped is the number of catalogue rows with an excluded
	// category.
	ItemsSkipped int `json:"items_skipped"`

	// CatalogueSkipped is true when the catalogue step did not run.
	CatalogueSkipped bool `json:"catalogue_skipped"`

	// ExportedFiles lists CSV files written by the export step.
	ExportedFiles []string `json:"exported_files,omitempty"`

	// Warnings collects non-fatal problems found in the inputs.
	Warnings []string `json:"warnings,omitempty"`

	// Duration of the whole run.
	Duration time.Duration `json:"duration"`
}
