package components

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// Built-in component names. Each matches the field type it serves.
const (
	ComponentString      = "string"
	ComponentNumber      = "number"
	ComponentBoolean     = "boolean"
	ComponentDate        = "date"
	ComponentEnum        = "enum"
	ComponentRelation    = "relation"
	ComponentText        = "text"
	ComponentFile        = "file"
	ComponentRichText    = "richtext"
	ComponentMultiSelect = "multiselect"
	ComponentJSON        = "json"
	ComponentColor       = "color"
	ComponentPassword    = "password"
	ComponentEmail       = "email"
	ComponentURL         = "url"
	ComponentPhone       = "phone"
	ComponentCheckbox    = "checkbox"
)

const (
	DefaultRelationPlaceholder  = "Select..."
	DefaultRelationEmptyMessage = "No results found"
	DefaultColor                = "#000000"
)

func registerBuiltins(r *Registry) {
	builtins := []Descriptor{
		{Name: ComponentString, Renderer: inputRenderer(ComponentString, "text", nil), Normalize: normalizeString},
		{Name: ComponentNumber, Renderer: numberRenderer, Normalize: normalizeNumber},
		{Name: ComponentBoolean, Renderer: booleanRenderer, Normalize: normalizeBool},
		{Name: ComponentDate, Renderer: inputRenderer(ComponentDate, "date", nil), Normalize: normalizeDate},
		{Name: ComponentEnum, Renderer: templateRenderer("radio", ComponentEnum, nil), Normalize: normalizeEnum},
		{Name: ComponentRelation, Renderer: relationRenderer, Normalize: normalizeRelation},
		{Name: ComponentText, Renderer: textareaRenderer(ComponentText, 4), Normalize: normalizeString},
		{Name: ComponentFile, Renderer: fileRenderer, Normalize: normalizeFile},
		{Name: ComponentRichText, Renderer: richTextRenderer, Normalize: normalizeRichText},
		{Name: ComponentMultiSelect, Renderer: multiSelectRenderer, Normalize: normalizeMulti},
		{Name: ComponentJSON, Renderer: jsonRenderer, Normalize: normalizeJSON},
		{Name: ComponentColor, Renderer: inputRenderer(ComponentColor, "color", colorContext), Normalize: normalizeColor},
		{Name: ComponentPassword, Renderer: passwordRenderer, Normalize: normalizeString},
		{Name: ComponentEmail, Renderer: inputRenderer(ComponentEmail, "email", autocomplete("email")), Normalize: normalizeEmail},
		{Name: ComponentURL, Renderer: inputRenderer(ComponentURL, "url", autocomplete("url")), Normalize: normalizeURL},
		{Name: ComponentPhone, Renderer: inputRenderer(ComponentPhone, "tel", phoneContext), Normalize: normalizePhone},
		{Name: ComponentCheckbox, Renderer: templateRenderer("checkbox-group", ComponentCheckbox, selectedContext), Normalize: normalizeMulti},
	}
	for _, d := range builtins {
		r.MustRegister(d.Name, d)
		r.MapType(model.FieldType(d.Name), d.Name)
	}
}

type contextFunc func(ctx map[string]any, props Props)

func templateRenderer(name, component string, extend contextFunc) Renderer {
	return func(buf *bytes.Buffer, props Props, data RenderData) error {
		if data.Template == nil {
			return errors.New("template renderer not configured")
		}
		ctx := props.context(component)
		if extend != nil {
			extend(ctx, props)
		}
		_, err := data.Template.RenderTemplate(name, ctx, buf)
		return err
	}
}

func inputRenderer(component, inputType string, extend contextFunc) Renderer {
	return templateRenderer("input", component, func(ctx map[string]any, props Props) {
		ctx["input_type"] = inputType
		if extend != nil {
			extend(ctx, props)
		}
	})
}

func autocomplete(value string) contextFunc {
	return func(ctx map[string]any, _ Props) {
		ctx["autocomplete"] = value
	}
}

func colorContext(ctx map[string]any, props Props) {
	if s, _ := props.Value.(string); s == "" {
		ctx["value"] = DefaultColor
	}
}

func phoneContext(ctx map[string]any, props Props) {
	ctx["autocomplete"] = "tel"
	ctx["value"] = FormatPhone(stringValue(props.Value))
}

func selectedContext(ctx map[string]any, props Props) {
	ctx["selected"] = StringList(props.Value)
}

var numberRenderer = templateRenderer("input", ComponentNumber, func(ctx map[string]any, props Props) {
	ctx["input_type"] = "number"
	slider := props.extraBool("slider")
	if slider {
		ctx["input_type"] = "range"
		ctx["has_min"], ctx["min"] = true, "0"
		ctx["has_max"], ctx["max"] = true, "100"
		ctx["has_step"], ctx["step"] = true, "1"
	}
	for _, key := range []string{"min", "max", "step"} {
		if v, ok := props.extra(key); ok {
			if f, ok := toFloat(v); ok {
				ctx["has_"+key] = true
				ctx[key] = formatNumber(f)
			}
		}
	}
	if slider && stringValue(props.Value) == "" {
		ctx["value"] = stringValue(ctx["min"])
	}
})

var booleanRenderer = templateRenderer("boolean", ComponentBoolean, func(ctx map[string]any, props Props) {
	b, _ := toBool(props.Value)
	ctx["checked"] = b
})

func textareaRenderer(component string, rows int) Renderer {
	return templateRenderer("textarea", component, func(ctx map[string]any, props Props) {
		ctx["rows"] = rows
		if v, ok := props.extra("rows"); ok {
			if f, ok := toFloat(v); ok && f > 0 {
				ctx["rows"] = int(f)
			}
		}
	})
}

var jsonRenderer = templateRenderer("textarea", ComponentJSON, func(ctx map[string]any, props Props) {
	ctx["rows"] = 8
	switch v := props.Value.(type) {
	case nil, string:
	default:
		if raw, err := json.MarshalIndent(v, "", "  "); err == nil {
			ctx["value"] = string(raw)
		}
	}
})

var passwordRenderer = templateRenderer("password", ComponentPassword, func(ctx map[string]any, props Props) {
	ctx["reveal"] = props.extraBool("reveal")
})

var richTextRenderer = templateRenderer("richtext", ComponentRichText, func(ctx map[string]any, props Props) {
	ctx["html"] = SanitizeHTML(stringValue(props.Value))
})

var fileRenderer = templateRenderer("file", ComponentFile, func(ctx map[string]any, props Props) {
	ctx["accept"] = props.extraString("accept")
	ctx["multiple"] = props.extraBool("multiple")
	ctx["files"] = StringList(props.Value)
})

var multiSelectRenderer = templateRenderer("multiselect", ComponentMultiSelect, func(ctx map[string]any, props Props) {
	search := props.extraString("search")
	ctx["search"] = search
	ctx["selected"] = StringList(props.Value)
	filtered := FilterOptions(props.Options, search)
	options := make([]map[string]any, 0, len(filtered))
	for _, opt := range filtered {
		options = append(options, map[string]any{"value": opt.Value, "label": opt.DisplayLabel(), "disabled": opt.Disabled})
	}
	ctx["options"] = options
})

var relationRenderer = templateRenderer("select", ComponentRelation, func(ctx map[string]any, props Props) {
	cfg := props.RelationConfig
	if cfg == nil {
		cfg = &model.RelationConfig{}
	}
	placeholder := props.Placeholder
	if placeholder == "" {
		placeholder = cfg.Placeholder
	}
	if placeholder == "" {
		placeholder = DefaultRelationPlaceholder
	}
	empty := cfg.EmptyMessage
	if empty == "" {
		empty = DefaultRelationEmptyMessage
	}
	options := make([]map[string]any, 0, len(props.Relation))
	for _, opt := range props.Relation {
		options = append(options, map[string]any{
			"id":          opt.ID,
			"label":       opt.Label,
			"description": opt.Description,
			"disabled":    opt.Disabled,
		})
	}
	ctx["placeholder"] = placeholder
	ctx["empty_message"] = empty
	ctx["options"] = options
	ctx["multiple"] = cfg.Multiple
	ctx["max_items"] = cfg.MaxItems
	ctx["source"] = cfg.Source
	ctx["selected"] = StringList(props.Value)
})
