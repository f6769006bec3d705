package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

const (
	extensionViewBuilder = "x-viewbuilder"
	extensionRelation    = "x-relation"
	extensionOrder       = "x-order"

	// Strings longer than this render as a textarea.
	longTextThreshold = 255
)

func convertRoot(root *openapi3.Schema) (*model.ViewSchema, error) {
	if root == nil {
		return nil, ErrNotObject
	}
	props := mergedProperties(root)
	if len(props) == 0 {
		return nil, ErrNotObject
	}

	required := make(map[string]bool)
	for _, name := range requiredNames(root) {
		required[name] = true
	}

	out := &model.ViewSchema{
		Title:       root.Title,
		Description: root.Description,
		Fields:      make([]model.FieldDefinition, 0, len(props)),
	}
	for _, name := range orderedNames(props) {
		out.Fields = append(out.Fields, convertProperty(name, props[name], required[name]))
	}
	return out, nil
}

// mergedProperties flattens allOf members into the root property set.
func mergedProperties(s *openapi3.Schema) openapi3.Schemas {
	out := openapi3.Schemas{}
	for _, ref := range s.AllOf {
		if ref == nil || ref.Value == nil {
			continue
		}
		for name, prop := range mergedProperties(ref.Value) {
			out[name] = prop
		}
	}
	for name, prop := range s.Properties {
		out[name] = prop
	}
	return out
}

func requiredNames(s *openapi3.Schema) []string {
	names := append([]string(nil), s.Required...)
	for _, ref := range s.AllOf {
		if ref != nil && ref.Value != nil {
			names = append(names, requiredNames(ref.Value)...)
		}
	}
	return names
}

// orderedNames sorts by x-order, then by name.
func orderedNames(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	order := func(name string) float64 {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return 1e9
		}
		if n, ok := toFloat(ref.Value.Extensions[extensionOrder]); ok {
			return n
		}
		return 1e9
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := order(names[i]), order(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

func convertProperty(name string, ref *openapi3.SchemaRef, required bool) model.FieldDefinition {
	field := model.FieldDefinition{Name: name, Required: required, Type: model.FieldTypeString}
	if ref == nil || ref.Value == nil {
		return field
	}
	s := ref.Value
	field.Label = s.Title
	field.Description = s.Description
	if s.ReadOnly {
		field.ReadOnly = model.Static(true)
	}

	field.Type = inferType(s)
	switch field.Type {
	case model.FieldTypeEnum:
		field.Options = enumOptions(s.Enum)
	case model.FieldTypeMultiSelect:
		field.Options = enumOptions(s.Items.Value.Enum)
	case model.FieldTypeNumber:
		setNumberProps(&field, s)
	case model.FieldTypeString, model.FieldTypeText:
		if s.Pattern != "" {
			setProp(&field, "pattern", s.Pattern)
		}
	}

	if rel, ok := relationConfig(s); ok {
		field.Type = model.FieldTypeRelation
		field.Relation = rel
	} else if isArray(s) && s.Items != nil && s.Items.Value != nil {
		if rel, ok := relationConfig(s.Items.Value); ok {
			rel.Multiple = true
			if s.MaxItems != nil {
				rel.MaxItems = int(*s.MaxItems)
			}
			field.Type = model.FieldTypeRelation
			field.Relation = rel
		}
	}

	applyViewBuilderExtension(&field, s.Extensions[extensionViewBuilder])
	return field
}

func inferType(s *openapi3.Schema) model.FieldType {
	switch {
	case s.Type.Is(openapi3.TypeBoolean):
		return model.FieldTypeBoolean
	case s.Type.Is(openapi3.TypeNumber), s.Type.Is(openapi3.TypeInteger):
		return model.FieldTypeNumber
	case s.Type.Is(openapi3.TypeObject):
		return model.FieldTypeJSON
	case isArray(s):
		if s.Items != nil && s.Items.Value != nil && len(s.Items.Value.Enum) > 0 {
			return model.FieldTypeMultiSelect
		}
		return model.FieldTypeJSON
	}
	if len(s.Enum) > 0 {
		return model.FieldTypeEnum
	}
	switch strings.ToLower(s.Format) {
	case "email":
		return model.FieldTypeEmail
	case "uri", "url", "iri":
		return model.FieldTypeURL
	case "password":
		return model.FieldTypePassword
	case "date", "date-time":
		return model.FieldTypeDate
	case "binary", "byte":
		return model.FieldTypeFile
	case "color":
		return model.FieldTypeColor
	case "phone", "tel":
		return model.FieldTypePhone
	case "html", "richtext":
		return model.FieldTypeRichText
	case "textarea":
		return model.FieldTypeText
	}
	if s.MaxLength != nil && *s.MaxLength > longTextThreshold {
		return model.FieldTypeText
	}
	return model.FieldTypeString
}

func isArray(s *openapi3.Schema) bool {
	return s.Type.Is(openapi3.TypeArray)
}

func enumOptions(values []any) []model.FieldOption {
	out := make([]model.FieldOption, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		value := scalarString(v)
		out = append(out, model.FieldOption{Value: value, Label: model.Humanize(value)})
	}
	return out
}

func setNumberProps(field *model.FieldDefinition, s *openapi3.Schema) {
	if s.Min != nil {
		setProp(field, "min", *s.Min)
	}
	if s.Max != nil {
		setProp(field, "max", *s.Max)
	}
	if s.MultipleOf != nil {
		setProp(field, "step", *s.MultipleOf)
	} else if s.Type.Is(openapi3.TypeInteger) {
		setProp(field, "step", float64(1))
	}
}

func setProp(field *model.FieldDefinition, key string, value any) {
	if field.Props == nil {
		field.Props = make(map[string]any)
	}
	field.Props[key] = value
}

// relationConfig reads x-relation, given either as a source name or as an
// object mirroring model.RelationConfig.
func relationConfig(s *openapi3.Schema) (*model.RelationConfig, bool) {
	raw, ok := s.Extensions[extensionRelation]
	if !ok || raw == nil {
		return nil, false
	}
	switch v := raw.(type) {
	case string:
		return &model.RelationConfig{Source: v}, true
	case map[string]any:
		cfg := &model.RelationConfig{}
		cfg.Source, _ = v["source"].(string)
		cfg.Multiple, _ = v["multiple"].(bool)
		cfg.AllowCreate, _ = v["allowCreate"].(bool)
		cfg.Placeholder, _ = v["placeholder"].(string)
		cfg.EmptyMessage, _ = v["emptyMessage"].(string)
		if n, ok := toFloat(v["maxItems"]); ok {
			cfg.MaxItems = int(n)
		}
		if n, ok := toFloat(v["debounceMs"]); ok {
			cfg.DebounceMs = int(n)
		}
		return cfg, true
	default:
		return nil, false
	}
}

// applyViewBuilderExtension applies x-viewbuilder overrides: type, label,
// placeholder, component, hidden, readOnly and extra props.
func applyViewBuilderExtension(field *model.FieldDefinition, raw any) {
	ext, ok := raw.(map[string]any)
	if !ok {
		return
	}
	if t, ok := ext["type"].(string); ok && t != "" {
		field.Type = model.FieldType(t).Normalize()
	}
	if label, ok := ext["label"].(string); ok {
		field.Label = label
	}
	if placeholder, ok := ext["placeholder"].(string); ok {
		field.Placeholder = placeholder
	}
	for _, key := range []string{"component", "widget"} {
		if c, ok := ext[key].(string); ok && c != "" {
			setProp(field, "component", c)
		}
	}
	if p := predicateFrom(ext["hidden"]); p != nil {
		field.Hidden = p
	}
	if p := predicateFrom(ext["readOnly"]); p != nil {
		field.ReadOnly = p
	}
	if props, ok := ext["props"].(map[string]any); ok {
		for k, v := range props {
			setProp(field, k, v)
		}
	}
}

func predicateFrom(v any) *model.Predicate {
	switch p := v.(type) {
	case bool:
		return model.Static(p)
	case string:
		if strings.TrimSpace(p) == "" {
			return nil
		}
		return model.Computed(p)
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
