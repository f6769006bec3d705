// Package html renders resolved forms into HTML fragments. Every section and
// field is rendered inside an error boundary so one failing component only
// replaces its own subtree with a fallback panel.
package html

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/boundary"
	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/render/template"
)

//go:embed templates/*.tpl
var chrome embed.FS

// Renderer renders autoform views.
type Renderer struct {
	engine   template.Renderer
	boundary *boundary.Boundary
	action   string
	method   string
	overlays []fs.FS
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithAction sets the form action URL.
func WithAction(action string) Option {
	return func(r *Renderer) {
		r.action = strings.TrimSpace(action)
	}
}

// WithMethod sets the form method. Defaults to POST.
func WithMethod(method string) Option {
	return func(r *Renderer) {
		if m := strings.TrimSpace(method); m != "" {
			r.method = strings.ToUpper(m)
		}
	}
}

// WithBoundary sets the error boundary used for sections and fields.
func WithBoundary(b *boundary.Boundary) Option {
	return func(r *Renderer) {
		if b != nil {
			r.boundary = b
		}
	}
}

// WithTemplates adds templates that shadow the built-in chrome and component
// templates with the same name.
func WithTemplates(files fs.FS) Option {
	return func(r *Renderer) {
		if files != nil {
			r.overlays = append(r.overlays, files)
		}
	}
}

// WithEngine replaces the template engine entirely.
func WithEngine(engine template.Renderer) Option {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// New constructs a Renderer.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{method: "POST"}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.boundary == nil {
		r.boundary = boundary.New()
	}
	if r.engine == nil {
		sub, err := fs.Sub(chrome, "templates")
		if err != nil {
			return nil, fmt.Errorf("html: chrome templates: %w", err)
		}
		var engineOpts []template.Option
		for _, overlay := range r.overlays {
			engineOpts = append(engineOpts, template.WithFS(overlay))
		}
		engineOpts = append(engineOpts, template.WithFS(sub), template.WithFS(components.Templates()))
		engine, err := template.New(engineOpts...)
		if err != nil {
			return nil, fmt.Errorf("html: template engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

// Name identifies the renderer in a registry.
func (r *Renderer) Name() string { return "html" }

// ContentType is the media type of the rendered output.
func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render resolves form and renders it.
func (r *Renderer) Render(ctx context.Context, form *autoform.Form) (string, error) {
	view, err := form.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("html: resolve form: %w", err)
	}
	return r.RenderView(ctx, view, form.Registry())
}

// RenderView renders an already resolved view using registry for components.
func (r *Renderer) RenderView(ctx context.Context, view *autoform.View, registry *components.Registry) (string, error) {
	if view == nil {
		return "", fmt.Errorf("html: nil view")
	}
	if registry == nil {
		registry = components.NewDefault()
	}

	sections := make([]string, 0, len(view.Sections))
	for i, section := range view.Sections {
		name := fmt.Sprintf("section:%d", i)
		if section.Title != "" {
			name = "section:" + section.Title
		}
		out, _ := r.boundary.Guard(ctx, name, func() (string, error) {
			return r.renderSection(ctx, section, registry)
		})
		sections = append(sections, out)
	}

	tabs := make([]map[string]any, 0, len(view.Tabs))
	for _, tab := range view.Tabs {
		tabs = append(tabs, map[string]any{"index": tab.Index, "title": tab.Title, "active": tab.Active})
	}

	return r.engine.RenderTemplate("form", map[string]any{
		"method":       r.method,
		"action":       r.action,
		"submitting":   view.Submitting,
		"read_only":    view.ReadOnly,
		"form_errors":  view.FormErrors,
		"tabs":         tabs,
		"active_tab":   view.ActiveTab,
		"sections":     sections,
		"submit_label": view.SubmitLabel,
		"reset_label":  view.ResetLabel,
		"show_reset":   view.ShowReset,
	})
}

func (r *Renderer) renderSection(ctx context.Context, section autoform.SectionView, registry *components.Registry) (string, error) {
	fields := make([]string, 0, len(section.Fields))
	for _, field := range section.Fields {
		out, _ := r.boundary.Guard(ctx, "field:"+field.Definition.Name, func() (string, error) {
			return r.renderField(field, registry)
		})
		fields = append(fields, out)
	}
	return r.engine.RenderTemplate("section", map[string]any{
		"title":       section.Title,
		"description": section.Description,
		"columns":     section.Columns,
		"fields":      fields,
	})
}

func (r *Renderer) renderField(field autoform.FieldView, registry *components.Registry) (string, error) {
	control, err := registry.Render(field.Definition, field.Props, components.RenderData{Template: r.engine})
	if err != nil {
		return "", err
	}
	return r.engine.RenderTemplate("field", map[string]any{
		"component":   field.Component,
		"id":          field.Props.ID,
		"label":       field.Props.Label,
		"description": field.Props.Description,
		"required":    field.Props.Required,
		"error":       field.Props.Error(),
		"control":     control,
	})
}
