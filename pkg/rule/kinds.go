package rule

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// MaxNth is the largest occurrence of a weekday a month can have.
const MaxNth = 5

// Weekly matches every date whose weekday is in Weekdays.
type Weekly struct {
	Weekdays []Weekday `json:"weekdays" yaml:"weekdays"`
}

func (r *Weekly) Kind() Kind { return KindWeekly }

func (r *Weekly) Validate() error {
	if len(r.Weekdays) == 0 {
		return InvalidError(KindWeekly, "weekdays cannot be empty")
	}
	for _, wd := range r.Weekdays {
		if err := validateWeekday(KindWeekly, wd); err != nil {
			return err
		}
	}
	return nil
}

func (r *Weekly) dates(start, end time.Time) []time.Time {
	var set [7]bool
	for _, wd := range r.Weekdays {
		set[time.Weekday(wd)] = true
	}

	var res []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if set[d.Weekday()] {
			res = append(res, d)
		}
	}
	return res
}

// MonthDates lists literal days of month per month. Keys of Months use
// the "YYYY-MM" format.
type MonthDates struct {
	Months map[string][]int `json:"months" yaml:"months"`
}

func (r *MonthDates) Kind() Kind { return KindMonthDates }

func (r *MonthDates) Validate() error {
	if len(r.Months) == 0 {
		return InvalidError(KindMonthDates, "months cannot be empty")
	}
	for _, ym := range slices.Sorted(maps.Keys(r.Months)) {
		m, err := parseYearMonth(ym)
		if err != nil {
			return InvalidError(KindMonthDates, err.Error())
		}
		last := DaysIn(m.Year(), m.Month())
		for _, day := range r.Months[ym] {
			if day < 1 || day > last {
				msg := fmt.Sprintf("day %d does not exist in %s", day, ym)
				return InvalidError(KindMonthDates, msg)
			}
		}
	}
	return nil
}

func (r *MonthDates) dates(start, end time.Time) []time.Time {
	var res []time.Time
	for ym, days := range r.Months {
		m, err := parseYearMonth(ym)
		if err != nil {
			continue
		}
		for _, day := range days {
			d := Date(m.Year(), m.Month(), day)
			if inRange(d, start, end) {
				res = append(res, d)
			}
		}
	}
	return res
}

func parseYearMonth(s string) (time.Time, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month key %q is not in YYYY-MM format", s)
	}
	return t, nil
}

// MonthlyNthWeekday matches the Nth occurrence of Weekday in every
// month. Months without that occurrence contribute no date.
type MonthlyNthWeekday struct {
	Weekday Weekday `json:"weekday" yaml:"weekday"`
	Nth     int     `json:"nth"     yaml:"nth"`
}

func (r *MonthlyNthWeekday) Kind() Kind { return KindMonthlyNthWeekday }

func (r *MonthlyNthWeekday) Validate() error {
	if err := validateWeekday(KindMonthlyNthWeekday, r.Weekday); err != nil {
		return err
	}
	return validateNth(KindMonthlyNthWeekday, r.Nth)
}

// Sunday is the zero Weekday, so an absent weekday has to be caught on
// the source keys.
func (r *MonthlyNthWeekday) requiredKeys() []string { return []string{"weekday"} }

func (r *MonthlyNthWeekday) dates(start, end time.Time) []time.Time {
	return nthDates(time.Weekday(r.Weekday), []int{r.Nth}, start, end)
}

// MonthlyMultipleNthWeekday matches several occurrences of Weekday in
// every month, for example the 2nd and 4th Wednesday.
type MonthlyMultipleNthWeekday struct {
	Weekday Weekday `json:"weekday" yaml:"weekday"`
	Nth     []int   `json:"nth"     yaml:"nth"`
}

func (r *MonthlyMultipleNthWeekday) Kind() Kind {
	return KindMonthlyMultipleNthWeekday
}

func (r *MonthlyMultipleNthWeekday) Validate() error {
	if err := validateWeekday(KindMonthlyMultipleNthWeekday, r.Weekday); err != nil {
		return err
	}
	if len(r.Nth) == 0 {
		return InvalidError(KindMonthlyMultipleNthWeekday, "nth cannot be empty")
	}
	for _, n := range r.Nth {
		if err := validateNth(KindMonthlyMultipleNthWeekday, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *MonthlyMultipleNthWeekday) requiredKeys() []string {
	return []string{"weekday"}
}

func (r *MonthlyMultipleNthWeekday) dates(start, end time.Time) []time.Time {
	return nthDates(time.Weekday(r.Weekday), r.Nth, start, end)
}

func validateWeekday(k Kind, wd Weekday) error {
	if !wd.Valid() {
		return InvalidError(k, fmt.Sprintf("weekday %d is out of range", int(wd)))
	}
	return nil
}

func validateNth(k Kind, n int) error {
	if n < 1 || n > MaxNth {
		msg := fmt.Sprintf("nth must be between 1 and %d, got %d", MaxNth, n)
		return InvalidError(k, msg)
	}
	return nil
}

func nthDates(wd time.Weekday, nths []int, start, end time.Time) []time.Time {
	var res []time.Time
	eachMonth(start, end, func(year int, month time.Month) {
		for _, n := range nths {
			d, ok := NthWeekday(year, month, wd, n)
			if ok && inRange(d, start, end) {
				res = append(res, d)
			}
		}
	})
	return res
}
