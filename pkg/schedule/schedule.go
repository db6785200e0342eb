// Package schedule defines the schedule document: the human-authored
// definition of categories, area groups, recurrence rules and the links
// between them from which collection events are generated.
//
// The document is YAML. Rules are decoded into pkg/rule types while the
// document is parsed, so an unknown rule type or an impossible date is
// reported as soon as the file is loaded.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/pkg/rule"
	"gopkg.in/yaml.v3"
)

// Loader provides a parsed and validated schedule document.
type Loader interface {
	Load() (*Document, error)
}

// Document is the complete schedule definition.
type Document struct {
	Sources        Sources         `yaml:"sources"`
	Categories     []Category      `yaml:"categories"`
	AreaGroups     []AreaGroup     `yaml:"area_groups"`
	ScheduleGroups []ScheduleGroup `yaml:"schedule_groups"`
	Links          []Link          `yaml:"area_group_schedule_links"`

	// EffectiveStart and EffectiveEnd bound event generation, inclusive.
	EffectiveStart Date `yaml:"effective_start"`
	EffectiveEnd   Date `yaml:"effective_end"`

	// ItemAliases are optional alternative spellings of catalogue items.
	ItemAliases []ItemAlias `yaml:"item_aliases,omitempty"`

	// Warnings holds non-fatal validation findings (not serialized).
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal document issue.
type ValidationWarning struct {
	Field   string
	Message string
}

// Sources describes provenance of the document.
type Sources struct {
	PDF PDF `yaml:"pdf"`
}

// PDF is the printed schedule the document was transcribed from.
type PDF struct {
	// ID is optional. When empty a content-derived id is used.
	ID        string `yaml:"id,omitempty"`
	Title     string `yaml:"title"`
	FilePath  string `yaml:"file_path"`
	FetchedAt string `yaml:"fetched_at,omitempty"`
}

// Category is a disposal class.
type Category struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// DeadlineTime is the same-day cutoff in HH:MM. Empty means no cutoff.
	DeadlineTime         string `yaml:"deadline_time,omitempty"`
	DisposalInstructions string `yaml:"disposal_instructions,omitempty"`
}

// AreaGroup is a set of areas that share collection timing.
type AreaGroup struct {
	ID    string   `yaml:"id"`
	Name  string   `yaml:"name"`
	Areas []string `yaml:"areas"`
}

// ScheduleGroup binds one recurrence rule to one category.
type ScheduleGroup struct {
	ID         string    `yaml:"id"`
	CategoryID string    `yaml:"category_id"`
	Name       string    `yaml:"name"`
	Rule       rule.Spec `yaml:"rule"`

	// Notes and Note are synonyms. Both accept a string or a list.
	Notes Notes `yaml:"notes,omitempty"`
	Note  Notes `yaml:"note,omitempty"`
}

// NoteText returns all notes of the group joined by newlines.
func (s ScheduleGroup) NoteText() string {
	all := make([]string, 0, len(s.Notes)+len(s.Note))
	all = append(all, s.Notes...)
	all = append(all, s.Note...)
	return strings.Join(all, "\n")
}

// Link states which schedule groups an area group follows.
type Link struct {
	AreaGroupID string         `yaml:"area_group_id"`
	Schedules   []LinkSchedule `yaml:"schedules"`
}

// LinkSchedule references a schedule group. CategoryID repeats the
// category of the schedule group and must agree with it.
type LinkSchedule struct {
	ScheduleID string `yaml:"schedule_id"`
	CategoryID string `yaml:"category_id"`
}

// ItemAlias lists alternative names of a catalogue item.
type ItemAlias struct {
	Item    string   `yaml:"item"`
	Aliases []string `yaml:"aliases"`
}

// Notes is a list of free-text notes that also accepts a single string.
type Notes []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Notes) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*n = nil
			return nil
		}
		s := strings.TrimSpace(node.Value)
		if s != "" {
			*n = Notes{s}
		}
		return nil
	case yaml.SequenceNode:
		var vals []string
		if err := node.Decode(&vals); err != nil {
			return err
		}
		res := make(Notes, 0, len(vals))
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				res = append(res, v)
			}
		}
		*n = res
		return nil
	default:
		return fmt.Errorf("line %d: notes must be a string or a list", node.Line)
	}
}

// DateFormat is the layout of calendar dates in documents and storage.
const DateFormat = "2006-01-02"

// Date is a calendar date at midnight UTC.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", n.Line)
	}
	res, err := ParseDate(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: date %q is not in YYYY-MM-DD format",
			n.Line, n.Value)
	}
	*d = res
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}
