package lifecycle

import "context"

// Exporter defines the interface for dumping every table to CSV files
// for human inspection.
type Exporter interface {
	// Export writes one CSV file per table into dir and returns the
	// written paths.
	Export(ctx context.Context, dir string) ([]string, error)
}
