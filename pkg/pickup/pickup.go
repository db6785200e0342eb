// Package pickup decides whether waste may still be put out for a
// collection event at a given instant.
package pickup

import (
	"fmt"
	"time"
)

// Judgment is the display-only verdict for one event.
type Judgment struct {
	// IsToday is true when the event date equals the date of the
	// reference instant.
	IsToday bool `json:"is_today"`

	// CanPutOut is true for future events, and for today's events up to
	// and including the deadline.
	CanPutOut bool `json:"can_put_out"`
}

// Judge compares an event date (YYYY-MM-DD) and a category deadline
// (HH:MM, empty for none) with asOf. The calendar date of asOf is taken
// in its own location. Events before the asOf date are not expected and
// yield a zero Judgment.
func Judge(date, deadline string, asOf time.Time) (Judgment, error) {
	ev, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Judgment{}, fmt.Errorf("invalid event date %q: %w", date, err)
	}
	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)

	switch {
	case ev.After(today):
		return Judgment{CanPutOut: true}, nil
	case ev.Before(today):
		return Judgment{}, nil
	}

	if deadline == "" {
		return Judgment{IsToday: true, CanPutOut: true}, nil
	}
	cut, err := time.Parse("15:04", deadline)
	if err != nil {
		return Judgment{}, fmt.Errorf("invalid deadline %q: %w", deadline, err)
	}

	now := asOf.Hour()*3600 + asOf.Minute()*60 + asOf.Second()
	limit := cut.Hour()*3600 + cut.Minute()*60
	return Judgment{IsToday: true, CanPutOut: now <= limit}, nil
}
