package lifecycle

import (
	"context"
	"time"
)

// Fetcher defines the interface for building the raw item catalogue from
// the municipal item dictionary.
//
// Pages are fetched with capped retries and increasing backoff. A page
// that still fails is recorded, it does not stop the run. The catalogue
// is written atomically, a failed run never leaves a truncated file.
type Fetcher interface {
	// Fetch downloads listing pages and writes the catalogue CSV.
	Fetch(ctx context.Context) (*FetchReport, error)
}

// FetchReport summarizes one fetch run.
type FetchReport struct {
	// Pages is the number of listing pages requested.
	Pages int `json:"pages"`

	// FailedPages lists page numbers that could not be fetched.
	FailedPages []int `json:"failed_pages,omitempty"`

	// Rows is the number of items written.
	Rows int `json:"rows"`

	// OutputPath is the catalogue file.
	OutputPath string `json:"output_path"`

	// FailedPagesPath is the file with failed page numbers, empty when
	// all pages were fetched.
	FailedPagesPath string `json:"failed_pages_path,omitempty"`

	Duration time.Duration `json:"duration"`
}
