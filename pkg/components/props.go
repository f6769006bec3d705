package components

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// Props is the uniform contract passed to every component.
type Props struct {
	ID          string
	Name        string
	Type        model.FieldType
	Label       string
	Description string
	Placeholder string
	Value       any
	Disabled    bool
	Required    bool
	Errors      []string
	Options     []model.FieldOption
	// Relation carries resolved options for relation fields.
	Relation       []model.RelationOption
	RelationConfig *model.RelationConfig
	// Extra holds the field's component props (min, max, rows, ...).
	Extra map[string]any
}

// PropsFor builds the default props for field. Callers override Value,
// Disabled and Errors as the form state dictates.
func PropsFor(field model.FieldDefinition) Props {
	props := Props{
		ID:             FieldID(field.Name),
		Name:           field.Name,
		Type:           field.Type.Normalize(),
		Label:          field.DisplayLabel(),
		Description:    field.Description,
		Placeholder:    field.Placeholder,
		Required:       field.Required,
		Options:        field.Options,
		RelationConfig: field.Relation,
		Extra:          field.Props,
	}
	if field.Relation != nil {
		props.Relation = field.Relation.Options
	}
	return props
}

// FieldID returns the DOM id for a field name.
func FieldID(name string) string {
	return "field-" + strings.TrimSpace(name)
}

// Error returns the first error message.
func (p Props) Error() string {
	if len(p.Errors) == 0 {
		return ""
	}
	return p.Errors[0]
}

func (p Props) extra(key string) (any, bool) {
	if p.Extra == nil {
		return nil, false
	}
	v, ok := p.Extra[key]
	return v, ok
}

func (p Props) extraBool(key string) bool {
	v, ok := p.extra(key)
	if !ok {
		return false
	}
	switch typed := v.(type) {
	case bool:
		return typed
	case string:
		return strings.EqualFold(typed, "true")
	default:
		return false
	}
}

func (p Props) extraString(key string) string {
	v, ok := p.extra(key)
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// context returns the template context shared by every component template.
func (p Props) context(component string) map[string]any {
	options := make([]map[string]any, 0, len(p.Options))
	for _, opt := range p.Options {
		options = append(options, map[string]any{
			"value":    opt.Value,
			"label":    opt.DisplayLabel(),
			"disabled": opt.Disabled,
		})
	}
	return map[string]any{
		"component":   component,
		"id":          p.ID,
		"name":        p.Name,
		"label":       p.Label,
		"description": p.Description,
		"placeholder": p.Placeholder,
		"value":       stringValue(p.Value),
		"disabled":    p.Disabled,
		"required":    p.Required,
		"error":       p.Error(),
		"options":     options,
	}
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return formatNumber(typed)
	default:
		return fmt.Sprint(typed)
	}
}
