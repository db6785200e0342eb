package schedule

import (
	"fmt"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// ParseError is returned when the document is not valid YAML or does not
// match the document layout.
func ParseError(err error) error {
	msg := `Cannot parse schedule document

<em>Possible causes:</em>
  - Invalid YAML syntax
  - A field has the wrong type (for example a list instead of a string)`

	return &gn.Error{
		Code: errcode.ScheduleParseError,
		Msg:  msg,
		Err:  fmt.Errorf("cannot parse schedule document: %w", err),
	}
}

// InvalidError is returned for a structurally invalid document field.
func InvalidError(field, reason string) error {
	msg := "Invalid schedule document field <em>%s</em>: %s"
	vars := []any{field, reason}

	return &gn.Error{
		Code: errcode.ScheduleInvalidError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid %s: %s", field, reason),
	}
}
