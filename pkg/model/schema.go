package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateField reports a repeated field name.
var ErrDuplicateField = errors.New("model: duplicate field name")

// ViewSchema is the persisted description of a form.
type ViewSchema struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldDefinition `json:"fields" yaml:"fields"`
	Layout      *Layout           `json:"layout,omitempty" yaml:"layout,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Field returns the first field named name.
func (s *ViewSchema) Field(name string) (FieldDefinition, bool) {
	if s == nil {
		return FieldDefinition{}, false
	}
	if idx := s.IndexOf(name); idx >= 0 {
		return s.Fields[idx], true
	}
	return FieldDefinition{}, false
}

// IndexOf returns the position of the first field named name, or -1.
func (s *ViewSchema) IndexOf(name string) int {
	if s == nil {
		return -1
	}
	for i, field := range s.Fields {
		if field.Name == name {
			return i
		}
	}
	return -1
}

// FieldNames lists field names in order.
func (s *ViewSchema) FieldNames() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Name)
	}
	return out
}

// DuplicateNames returns each field name that appears more than once.
func (s *ViewSchema) DuplicateNames() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]int, len(s.Fields))
	var dups []string
	for _, field := range s.Fields {
		seen[field.Name]++
		if seen[field.Name] == 2 {
			dups = append(dups, field.Name)
		}
	}
	return dups
}

// Validate checks the structural invariants the renderer relies on.
func (s *ViewSchema) Validate() error {
	if s == nil {
		return errors.New("model: nil schema")
	}
	for i, field := range s.Fields {
		if strings.TrimSpace(field.Name) == "" {
			return fmt.Errorf("model: field %d has no name", i)
		}
	}
	if dups := s.DuplicateNames(); len(dups) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateField, strings.Join(dups, ", "))
	}
	return nil
}

// Dedupe drops later fields whose name was already seen.
func (s *ViewSchema) Dedupe() {
	if s == nil {
		return
	}
	seen := make(map[string]struct{}, len(s.Fields))
	out := s.Fields[:0]
	for _, field := range s.Fields {
		if _, ok := seen[field.Name]; ok {
			continue
		}
		seen[field.Name] = struct{}{}
		out = append(out, field)
	}
	s.Fields = out
}

// Clone returns a deep copy. Predicates are immutable and shared.
func (s *ViewSchema) Clone() *ViewSchema {
	if s == nil {
		return nil
	}
	out := *s
	if s.Fields != nil {
		out.Fields = make([]FieldDefinition, len(s.Fields))
		for i, field := range s.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	if s.Layout != nil {
		layout := cloneLayout(*s.Layout)
		out.Layout = &layout
	}
	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Clone returns a deep copy of the field.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if f.Options != nil {
		out.Options = append([]FieldOption(nil), f.Options...)
	}
	if f.Relation != nil {
		rel := *f.Relation
		if rel.Options != nil {
			rel.Options = make([]RelationOption, len(f.Relation.Options))
			for i, opt := range f.Relation.Options {
				opt.Data = cloneMap(opt.Data)
				rel.Options[i] = opt
			}
		}
		out.Relation = &rel
	}
	out.Props = cloneMap(f.Props)
	return out
}

func cloneLayout(l Layout) Layout {
	out := Layout{}
	if l.Tabs != nil {
		out.Tabs = make([]Tab, len(l.Tabs))
		for i, tab := range l.Tabs {
			out.Tabs[i] = Tab{Title: tab.Title, Sections: cloneSections(tab.Sections)}
		}
	}
	out.Sections = cloneSections(l.Sections)
	return out
}

func cloneSections(sections []FormSection) []FormSection {
	if sections == nil {
		return nil
	}
	out := make([]FormSection, len(sections))
	for i, section := range sections {
		section.Fields = append([]string(nil), section.Fields...)
		out[i] = section
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return v
	}
}

// CloneValues deep copies a form value map.
func CloneValues(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return cloneMap(values)
}
