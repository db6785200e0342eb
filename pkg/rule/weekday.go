package rule

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Weekday is a time.Weekday that reads and writes the three-letter
// tokens used in schedule documents (MON, TUE, ...).
type Weekday time.Weekday

var weekdayTokens = [...]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

var weekdayByToken = map[string]time.Weekday{
	"SUN": time.Sunday, "SUNDAY": time.Sunday, "日": time.Sunday,
	"MON": time.Monday, "MONDAY": time.Monday, "月": time.Monday,
	"TUE": time.Tuesday, "TUESDAY": time.Tuesday, "火": time.Tuesday,
	"WED": time.Wednesday, "WEDNESDAY": time.Wednesday, "水": time.Wednesday,
	"THU": time.Thursday, "THURSDAY": time.Thursday, "木": time.Thursday,
	"FRI": time.Friday, "FRIDAY": time.Friday, "金": time.Friday,
	"SAT": time.Saturday, "SATURDAY": time.Saturday, "土": time.Saturday,
}

// ParseWeekday converts a token such as "MON" or "Thursday" into a
// Weekday. Matching is case-insensitive.
func ParseWeekday(s string) (Weekday, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if wd, ok := weekdayByToken[key]; ok {
		return Weekday(wd), nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// Valid reports whether w is one of Sunday..Saturday.
func (w Weekday) Valid() bool {
	return w >= 0 && int(w) < len(weekdayTokens)
}

// String returns the three-letter token of the weekday.
func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayTokens[w]
}

// MarshalText implements encoding.TextMarshaler.
func (w Weekday) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(w))
	}
	return []byte(w.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Weekday) UnmarshalText(b []byte) error {
	wd, err := ParseWeekday(string(b))
	if err != nil {
		return err
	}
	*w = wd
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (w *Weekday) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: weekday must be a scalar", n.Line)
	}
	return w.UnmarshalText([]byte(n.Value))
}
