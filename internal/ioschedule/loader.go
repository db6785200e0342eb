// Package ioschedule reads the schedule document from the file system.
package ioschedule

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/HashiReo/nonoichi-waste-app/internal/iofs"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schedule"
)

type loader struct {
	path string
}

// New creates a schedule.Loader for the document at path.
func New(path string) schedule.Loader {
	return &loader{path: path}
}

// Load reads, parses and validates the document.
func (l *loader) Load() (*schedule.Document, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, MissingScheduleError(l.path, err)
	}
	if err != nil {
		return nil, iofs.ReadFileError(l.path, err)
	}

	doc, err := schedule.Parse(data)
	if err != nil {
		return nil, err
	}

	slog.Info("Schedule document loaded",
		"path", l.path,
		"categories", len(doc.Categories),
		"area_groups", len(doc.AreaGroups),
		"schedule_groups", len(doc.ScheduleGroups),
	)
	return doc, nil
}
