package schedule

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gnames/gn"
	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a schedule document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ParseError(errors.New("document is empty"))
		}
		var gnErr *gn.Error
		if errors.As(err, &gnErr) {
			return nil, err
		}
		return nil, ParseError(err)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structure of the document and normalizes deadline
// times to HH:MM. Cross references are resolved against the store by the
// seeder, so they are not checked here. Non-fatal findings are appended
// to Warnings.
func (d *Document) Validate() error {
	if d.Sources.PDF.Title == "" {
		return InvalidError("sources.pdf.title", "title is required")
	}
	if d.EffectiveStart.IsZero() {
		return InvalidError("effective_start", "date is required")
	}
	if d.EffectiveEnd.IsZero() {
		return InvalidError("effective_end", "date is required")
	}
	if d.EffectiveStart.After(d.EffectiveEnd.Time) {
		reason := fmt.Sprintf("%s is after effective_end %s",
			d.EffectiveStart, d.EffectiveEnd)
		return InvalidError("effective_start", reason)
	}

	if len(d.Categories) == 0 {
		return InvalidError("categories", "at least one category is required")
	}
	ids := make(map[string]struct{})
	for i := range d.Categories {
		c := &d.Categories[i]
		field := fmt.Sprintf("categories[%d]", i)
		if err := checkID(ids, field, c.ID); err != nil {
			return err
		}
		if c.Name == "" {
			return InvalidError(field+".name", "name is required")
		}
		if c.DeadlineTime == "" {
			d.warn(field+".deadline_time",
				fmt.Sprintf("category %s has no deadline, same-day put-out is always allowed", c.ID))
			continue
		}
		hm, err := NormalizeDeadline(c.DeadlineTime)
		if err != nil {
			return InvalidError(field+".deadline_time", err.Error())
		}
		c.DeadlineTime = hm
	}

	ids = make(map[string]struct{})
	for i, g := range d.AreaGroups {
		field := fmt.Sprintf("area_groups[%d]", i)
		if err := checkID(ids, field, g.ID); err != nil {
			return err
		}
		if len(g.Areas) == 0 {
			d.warn(field+".areas", fmt.Sprintf("area group %s has no areas", g.ID))
		}
		for j, a := range g.Areas {
			if a == "" {
				return InvalidError(fmt.Sprintf("%s.areas[%d]", field, j),
					"area name cannot be empty")
			}
		}
	}

	ids = make(map[string]struct{})
	for i, s := range d.ScheduleGroups {
		field := fmt.Sprintf("schedule_groups[%d]", i)
		if err := checkID(ids, field, s.ID); err != nil {
			return err
		}
		if s.CategoryID == "" {
			return InvalidError(field+".category_id", "category_id is required")
		}
		if s.Rule.Rule == nil {
			return InvalidError(field+".rule", "rule is required")
		}
	}

	for i, l := range d.Links {
		field := fmt.Sprintf("area_group_schedule_links[%d]", i)
		if l.AreaGroupID == "" {
			return InvalidError(field+".area_group_id", "area_group_id is required")
		}
		for j, s := range l.Schedules {
			if s.ScheduleID == "" {
				return InvalidError(
					fmt.Sprintf("%s.schedules[%d].schedule_id", field, j),
					"schedule_id is required",
				)
			}
		}
	}

	for i, a := range d.ItemAliases {
		if a.Item == "" {
			return InvalidError(fmt.Sprintf("item_aliases[%d].item", i),
				"item is required")
		}
	}

	return nil
}

// NormalizeDeadline validates a time of day and returns it as HH:MM.
func NormalizeDeadline(s string) (string, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", fmt.Errorf("deadline %q is not in HH:MM format", s)
	}
	return t.Format("15:04"), nil
}

func checkID(seen map[string]struct{}, field, id string) error {
	if id == "" {
		return InvalidError(field+".id", "id is required")
	}
	if _, ok := seen[id]; ok {
		return InvalidError(field+".id", fmt.Sprintf("duplicate id %s", id))
	}
	seen[id] = struct{}{}
	return nil
}

func (d *Document) warn(field, msg string) {
	d.Warnings = append(d.Warnings, ValidationWarning{Field: field, Message: msg})
}
