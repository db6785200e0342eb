// Package rule expands recurrence rules of a collection schedule into
// concrete calendar dates.
//
// A rule is one of a closed set of kinds. Rules are decoded from the
// schedule document (YAML) or from their persisted JSON form, and are
// validated while decoding, so an unknown kind or an impossible date is
// rejected before any date is generated.
//
// Dates are represented as time.Time values at midnight UTC. Evaluation
// is pure: the same rule over the same range always yields the same
// ordered dates.
package rule

import (
	"slices"
	"time"
)

// Kind is the discriminant tag of a rule.
type Kind string

const (
	// KindWeekly matches every date whose weekday is in a set.
	KindWeekly Kind = "weekly"

	// KindMonthDates lists literal days for each month.
	KindMonthDates Kind = "month_dates"

	// KindMonthlyNthWeekday matches the nth occurrence of a weekday in
	// each month.
	KindMonthlyNthWeekday Kind = "monthly_nth_weekday"

	// KindMonthlyMultipleNthWeekday is the union of several nth
	// occurrences of a weekday in each month.
	KindMonthlyMultipleNthWeekday Kind = "monthly_multiple_nth_weekday"
)

// Kinds lists all supported rule kinds.
var Kinds = []Kind{
	KindWeekly,
	KindMonthDates,
	KindMonthlyNthWeekday,
	KindMonthlyMultipleNthWeekday,
}

// Rule is a recurrence rule. The set of implementations is closed:
// Weekly, MonthDates, MonthlyNthWeekday and MonthlyMultipleNthWeekday.
type Rule interface {
	// Kind returns the discriminant tag of the rule.
	Kind() Kind

	// Validate reports structural problems of the rule.
	Validate() error

	// dates returns matching dates in [start, end], both normalized
	// to midnight UTC. Output may be unsorted.
	dates(start, end time.Time) []time.Time
}

// Evaluate returns the sorted, deduplicated dates in the inclusive range
// [start, end] that match the rule. Only the calendar date of start and
// end is used. An empty slice is returned when start is after end.
func Evaluate(r Rule, start, end time.Time) ([]time.Time, error) {
	if r == nil {
		return nil, UnknownTypeError("")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	start, end = Day(start), Day(end)
	if start.After(end) {
		return []time.Time{}, nil
	}

	res := r.dates(start, end)
	slices.SortFunc(res, func(a, b time.Time) int {
		return a.Compare(b)
	})
	res = slices.CompactFunc(res, func(a, b time.Time) bool {
		return a.Equal(b)
	})
	if res == nil {
		res = []time.Time{}
	}
	return res, nil
}

// New returns an empty rule of the given kind, ready for decoding.
func New(k Kind) (Rule, error) {
	switch k {
	case KindWeekly:
		return &Weekly{}, nil
	case KindMonthDates:
		return &MonthDates{}, nil
	case KindMonthlyNthWeekday:
		return &MonthlyNthWeekday{}, nil
	case KindMonthlyMultipleNthWeekday:
		return &MonthlyMultipleNthWeekday{}, nil
	default:
		return nil, UnknownTypeError(string(k))
	}
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Date builds a calendar date at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// NthWeekday returns the nth (1-indexed) occurrence of weekday in the
// month. The second value is false when the month has fewer than nth
// occurrences.
func NthWeekday(
	year int,
	month time.Month,
	weekday time.Weekday,
	nth int,
) (time.Time, bool) {
	count := 0
	for day := 1; day <= DaysIn(year, month); day++ {
		d := Date(year, month, day)
		if d.Weekday() != weekday {
			continue
		}
		count++
		if count == nth {
			return d, true
		}
	}
	return time.Time{}, false
}

// eachMonth calls fn for the first day of every month overlapping
// [start, end].
func eachMonth(start, end time.Time, fn func(year int, month time.Month)) {
	m := Date(start.Year(), start.Month(), 1)
	for !m.After(end) {
		fn(m.Year(), m.Month())
		m = m.AddDate(0, 1, 0)
	}
}

func inRange(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}
