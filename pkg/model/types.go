package model

import "strings"

// FieldType names the kind of value a field captures. The set is open: any
// string is a legal FieldType and unknown values render with the text input.
type FieldType string

const (
	FieldTypeString      FieldType = "string"
	FieldTypeNumber      FieldType = "number"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeDate        FieldType = "date"
	FieldTypeEnum        FieldType = "enum"
	FieldTypeRelation    FieldType = "relation"
	FieldTypeText        FieldType = "text"
	FieldTypeFile        FieldType = "file"
	FieldTypeRichText    FieldType = "richtext"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeJSON        FieldType = "json"
	FieldTypeColor       FieldType = "color"
	FieldTypePassword    FieldType = "password"
	FieldTypeEmail       FieldType = "email"
	FieldTypeURL         FieldType = "url"
	FieldTypePhone       FieldType = "phone"
	FieldTypeCheckbox    FieldType = "checkbox"
)

var knownFieldTypes = []FieldType{
	FieldTypeString,
	FieldTypeNumber,
	FieldTypeBoolean,
	FieldTypeDate,
	FieldTypeEnum,
	FieldTypeRelation,
	FieldTypeText,
	FieldTypeFile,
	FieldTypeRichText,
	FieldTypeMultiSelect,
	FieldTypeJSON,
	FieldTypeColor,
	FieldTypePassword,
	FieldTypeEmail,
	FieldTypeURL,
	FieldTypePhone,
	FieldTypeCheckbox,
}

// KnownFieldTypes returns the built-in field types in declaration order.
func KnownFieldTypes() []FieldType {
	out := make([]FieldType, len(knownFieldTypes))
	copy(out, knownFieldTypes)
	return out
}

// Known reports whether t is one of the built-in field types.
func (t FieldType) Known() bool {
	for _, known := range knownFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Normalize lower-cases and trims the type name.
func (t FieldType) Normalize() FieldType {
	return FieldType(strings.ToLower(strings.TrimSpace(string(t))))
}

// FieldOption is a selectable choice for enum, checkbox and multiselect fields.
type FieldOption struct {
	Value    string `json:"value" yaml:"value"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// DisplayLabel falls back to the value when no label is set.
func (o FieldOption) DisplayLabel() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// RelationConfig describes how a relation field looks up related records.
type RelationConfig struct {
	// Source names a registered option source (see pkg/relation).
	Source       string           `json:"source,omitempty" yaml:"source,omitempty"`
	Multiple     bool             `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	MaxItems     int              `json:"maxItems,omitempty" yaml:"maxItems,omitempty"`
	AllowCreate  bool             `json:"allowCreate,omitempty" yaml:"allowCreate,omitempty"`
	Placeholder  string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	EmptyMessage string           `json:"emptyMessage,omitempty" yaml:"emptyMessage,omitempty"`
	DebounceMs   int              `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
	Options      []RelationOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// FieldDefinition describes a single form field.
type FieldDefinition struct {
	Name        string          `json:"name" yaml:"name"`
	Type        FieldType       `json:"type" yaml:"type"`
	Label       string          `json:"label,omitempty" yaml:"label,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool            `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly    *Predicate      `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	Hidden      *Predicate      `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Options     []FieldOption   `json:"options,omitempty" yaml:"options,omitempty"`
	Relation    *RelationConfig `json:"relation,omitempty" yaml:"relation,omitempty"`
	// Props carries component specific settings (min, max, step, rows, accept,
	// component override, ...).
	Props map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
}

// DisplayLabel returns the label, or a humanised name when the label is empty.
func (f FieldDefinition) DisplayLabel() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return Humanize(f.Name)
}

// Prop returns a component property.
func (f FieldDefinition) Prop(key string) (any, bool) {
	if f.Props == nil {
		return nil, false
	}
	v, ok := f.Props[key]
	return v, ok
}

// Humanize converts identifiers such as "first_name" or "firstName" into
// "First name".
func Humanize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	prevLower := false
	for i, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteByte(' ')
			prevLower = false
			continue
		case r >= 'A' && r <= 'Z' && prevLower:
			b.WriteByte(' ')
			r = r + ('a' - 'A')
		case i == 0 && r >= 'a' && r <= 'z':
			r = r - ('a' - 'A')
		}
		b.WriteRune(r)
		prevLower = r >= 'a' && r <= 'z'
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
