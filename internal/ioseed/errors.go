package ioseed

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// NotConnectedError is returned when seeding starts without a database
// connection.
func NotConnectedError() error {
	msg := "Seeding attempted without database connection"

	return &gn.Error{
		Code: errcode.DBNotConnectedError,
		Msg:  msg,
		Err:  fmt.Errorf("not connected to database"),
	}
}

// CancelledError is returned when the context is cancelled between
// steps.
func CancelledError(err error) error {
	msg := `Seeding was cancelled

Steps finished before cancellation are saved.
Run <em>gomi seed</em> again to complete the store.`

	return &gn.Error{
		Code: errcode.SeedCancelledError,
		Msg:  msg,
		Err:  fmt.Errorf("seeding cancelled: %w", err),
	}
}

// StepError wraps a storage failure of one seeding step.
func StepError(step string, err error) error {
	msg := `Seeding step <em>%s</em> failed

Results of earlier steps are saved, later steps did not run.
Check the log file for details and run <em>gomi seed</em> again.`

	return &gn.Error{
		Code: errcode.SeedStepError,
		Msg:  msg,
		Vars: []any{step},
		Err:  fmt.Errorf("seeding step %s: %w", step, err),
	}
}

// MissingCategoryError is returned for a schedule group whose category
// is not declared.
func MissingCategoryError(scheduleID, categoryID string) error {
	msg := `Schedule group <em>%s</em> refers to unknown category <em>%s</em>

<em>How to fix:</em>
  Add the category to <em>categories</em> or correct <em>category_id</em>`

	return &gn.Error{
		Code: errcode.MissingReferenceError,
		Msg:  msg,
		Vars: []any{scheduleID, categoryID},
		Err: fmt.Errorf("schedule group %s: unknown category %s",
			scheduleID, categoryID),
	}
}

// DanglingLinkError is returned for a link to an unknown area group or
// schedule group.
func DanglingLinkError(kind, id string) error {
	msg := `Link refers to unknown %s <em>%s</em>

No links or events were written.`

	return &gn.Error{
		Code: errcode.LinkDanglingReferenceError,
		Msg:  msg,
		Vars: []any{kind, id},
		Err:  fmt.Errorf("link refers to unknown %s %s", kind, id),
	}
}

// LinkMismatchError is returned when the category declared on a link
// differs from the category of the schedule group.
func LinkMismatchError(areaGroupID, scheduleID, declared, stored string) error {
	msg := `Link <em>%s</em> -> <em>%s</em> declares category <em>%s</em>,
but the schedule group has category <em>%s</em>

No links or events were written.`

	return &gn.Error{
		Code: errcode.LinkCategoryMismatchError,
		Msg:  msg,
		Vars: []any{areaGroupID, scheduleID, declared, stored},
		Err: fmt.Errorf("link %s -> %s: category %q does not match %q",
			areaGroupID, scheduleID, declared, stored),
	}
}

// UnknownCatalogueCategoryError is returned for a catalogue row whose
// category is not stored.
func UnknownCatalogueCategoryError(path string, line int, item, category string) error {
	msg := `Catalogue item <em>%s</em> has unknown category <em>%s</em>
(%s, line %d)

<em>How to fix:</em>
  1. Add the category to the schedule document
  2. Or add it to <em>seed.excluded_categories</em> in config.yaml`

	return &gn.Error{
		Code: errcode.MissingReferenceError,
		Msg:  msg,
		Vars: []any{item, category, path, line},
		Err: fmt.Errorf("%s:%d: item %s: unknown category %s",
			path, line, item, category),
	}
}

// UnknownAliasItemError is returned for aliases of an item that is not
// in the store.
func UnknownAliasItemError(item string) error {
	msg := "Aliases are declared for unknown item <em>%s</em>"

	return &gn.Error{
		Code: errcode.MissingReferenceError,
		Msg:  msg,
		Vars: []any{item},
		Err:  fmt.Errorf("aliases of unknown item %s", item),
	}
}

// AliasConflictError is returned when an alias already resolves to
// another item.
func AliasConflictError(alias, item string) error {
	msg := "Alias <em>%s</em> of <em>%s</em> already belongs to another item"

	return &gn.Error{
		Code: errcode.ScheduleInvalidError,
		Msg:  msg,
		Vars: []any{alias, item},
		Err:  fmt.Errorf("alias %s of %s belongs to another item", alias, item),
	}
}
