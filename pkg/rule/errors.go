package rule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
)

// UnknownTypeError is returned for a rule tag that is not one of Kinds.
func UnknownTypeError(tag string) error {
	kinds := make([]string, len(Kinds))
	for i, k := range Kinds {
		kinds[i] = string(k)
	}
	slices.Sort(kinds)

	msg := `Unknown recurrence rule type <em>%s</em>

<em>Supported types:</em>
  %s`
	vars := []any{tag, strings.Join(kinds, ", ")}

	return &gn.Error{
		Code: errcode.RuleUnknownTypeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown rule type %q", tag),
	}
}

// InvalidError is returned when rule parameters are malformed.
func InvalidError(k Kind, reason string) error {
	msg := "Invalid <em>%s</em> rule: %s"
	vars := []any{k, reason}

	return &gn.Error{
		Code: errcode.RuleInvalidError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("invalid %s rule: %s", k, reason),
	}
}
