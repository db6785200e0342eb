package rule

import (
	"fmt"

	"github.com/gnames/gnfmt"
	"gopkg.in/yaml.v3"
)

// Spec wraps a Rule so it can be decoded from a YAML mapping tagged by
// its "type" key:
//
//	rule:
//	  type: monthly_multiple_nth_weekday
//	  weekday: WED
//	  nth: [2, 4]
type Spec struct {
	Rule
}

// UnmarshalYAML implements yaml.Unmarshaler. Unknown kinds and invalid
// parameters are rejected here, at load time.
func (s *Spec) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return InvalidError("", fmt.Sprintf("line %d: rule must be a mapping", n.Line))
	}

	var head struct {
		Type string `yaml:"type"`
	}
	if err := n.Decode(&head); err != nil {
		return InvalidError("", err.Error())
	}

	r, err := New(Kind(head.Type))
	if err != nil {
		return err
	}
	if err = checkKeys(r, yamlKeys(n)); err != nil {
		return err
	}
	if err = n.Decode(r); err != nil {
		return InvalidError(Kind(head.Type), err.Error())
	}
	if err = r.Validate(); err != nil {
		return err
	}

	s.Rule = r
	return nil
}

// Encode returns the kind and the JSON form of a rule for persistence.
func Encode(r Rule) (Kind, string, error) {
	if r == nil {
		return "", "", UnknownTypeError("")
	}
	enc := gnfmt.GNjson{}
	bs, err := enc.Encode(r)
	if err != nil {
		return "", "", InvalidError(r.Kind(), err.Error())
	}
	return r.Kind(), string(bs), nil
}

// Decode restores a rule from its persisted kind and JSON form.
func Decode(k Kind, data string) (Rule, error) {
	r, err := New(k)
	if err != nil {
		return nil, err
	}
	enc := gnfmt.GNjson{}
	var keys map[string]any
	if err = enc.Decode([]byte(data), &keys); err != nil {
		return nil, InvalidError(k, err.Error())
	}
	if err = checkKeys(r, func(key string) bool { return keys[key] != nil }); err != nil {
		return nil, err
	}
	if err = enc.Decode([]byte(data), r); err != nil {
		return nil, InvalidError(k, err.Error())
	}
	if err = r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// keyed is implemented by kinds with parameters whose zero value is a
// valid setting.
type keyed interface {
	requiredKeys() []string
}

// checkKeys fails when a required parameter of r is absent or null.
func checkKeys(r Rule, present func(string) bool) error {
	kr, ok := r.(keyed)
	if !ok {
		return nil
	}
	for _, key := range kr.requiredKeys() {
		if !present(key) {
			return InvalidError(r.Kind(), key+" is required")
		}
	}
	return nil
}

// yamlKeys reports the non-null keys of a mapping node.
func yamlKeys(n *yaml.Node) func(string) bool {
	return func(key string) bool {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == key {
				return n.Content[i+1].ShortTag() != "!!null"
			}
		}
		return false
	}
}
