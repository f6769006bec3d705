package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PredicateKind distinguishes static from computed predicates.
type PredicateKind int

const (
	PredicateStatic PredicateKind = iota
	PredicateComputed
)

// Predicate is a boolean that is either fixed (Static) or computed from the
// current form values (Computed). Computed predicates carry an expression
// string (see pkg/predicate/expr) and/or a Go function. Function predicates
// exist for programmatic callers only and are never serialised.
//
// A nil *Predicate means false.
type Predicate struct {
	kind  PredicateKind
	value bool
	expr  string
	fn    func(values map[string]any) bool
}

// Static returns a fixed predicate.
func Static(value bool) *Predicate {
	return &Predicate{kind: PredicateStatic, value: value}
}

// Computed returns a predicate evaluated from an expression over the current
// values, e.g. `kind != "company"`.
func Computed(expr string) *Predicate {
	return &Predicate{kind: PredicateComputed, expr: strings.TrimSpace(expr)}
}

// When returns a computed predicate backed by fn.
func When(fn func(values map[string]any) bool) *Predicate {
	return &Predicate{kind: PredicateComputed, fn: fn}
}

// Kind reports whether p is static or computed.
func (p *Predicate) Kind() PredicateKind {
	if p == nil {
		return PredicateStatic
	}
	return p.kind
}

// IsStatic is true for nil and Static predicates.
func (p *Predicate) IsStatic() bool { return p.Kind() == PredicateStatic }

// StaticValue returns the fixed value for static predicates.
func (p *Predicate) StaticValue() bool {
	if p == nil {
		return false
	}
	return p.kind == PredicateStatic && p.value
}

// Expression returns the expression of a computed predicate.
func (p *Predicate) Expression() string {
	if p == nil {
		return ""
	}
	return p.expr
}

// Func returns the Go function of a computed predicate, if any.
func (p *Predicate) Func() func(values map[string]any) bool {
	if p == nil {
		return nil
	}
	return p.fn
}

func (p *Predicate) String() string {
	switch {
	case p == nil:
		return "false"
	case p.kind == PredicateStatic:
		return fmt.Sprint(p.value)
	case p.expr != "":
		return p.expr
	default:
		return "<func>"
	}
}

// MarshalJSON encodes static predicates as booleans and computed ones as their
// expression string.
func (p *Predicate) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("false"), nil
	}
	if p.kind == PredicateStatic {
		return json.Marshal(p.value)
	}
	if p.expr == "" {
		return nil, errors.New("model: function predicates cannot be serialised")
	}
	return json.Marshal(p.expr)
}

// UnmarshalJSON accepts a boolean, an expression string or {"when": "expr"}.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*p = Predicate{}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*p = *Static(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return p.fromString(s)
	}
	var obj struct {
		When *string `json:"when"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && obj.When != nil {
		return p.fromString(*obj.When)
	}
	return fmt.Errorf("model: predicate must be a boolean or expression, got %s", trimmed)
}

// MarshalYAML mirrors MarshalJSON.
func (p *Predicate) MarshalYAML() (any, error) {
	if p == nil {
		return false, nil
	}
	if p.kind == PredicateStatic {
		return p.value, nil
	}
	if p.expr == "" {
		return nil, errors.New("model: function predicates cannot be serialised")
	}
	return p.expr, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return err
			}
			*p = *Static(b)
			return nil
		}
		return p.fromString(node.Value)
	case yaml.MappingNode:
		var obj struct {
			When string `yaml:"when"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		return p.fromString(obj.When)
	default:
		return fmt.Errorf("model: predicate must be a boolean or expression (line %d)", node.Line)
	}
}

func (p *Predicate) fromString(s string) error {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true":
		*p = *Static(true)
		return nil
	case "false", "":
		*p = *Static(false)
		return nil
	}
	*p = *Computed(s)
	return nil
}
