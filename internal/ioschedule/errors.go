package ioschedule

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// MissingScheduleError is returned when the schedule document does not
// exist.
func MissingScheduleError(path string, err error) error {
	msg := `Schedule document not found

<em>Expected file:</em> %s

<em>How to fix:</em>
  1. Edit the example at <em>~/.config/gomi/schedule.yaml</em>
  2. Or point to another file: <em>gomi seed -s schedule_r7.yaml</em>`

	return &gn.Error{
		Code: errcode.MissingInputError,
		Msg:  msg,
		Vars: []any{path},
		Err:  fmt.Errorf("schedule document %s is missing: %w", path, err),
	}
}
