package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// JSON writes the resolved view as a JSON document, for clients that render
// the form themselves.
type JSON struct{}

func (JSON) Name() string        { return "json" }
func (JSON) ContentType() string { return "application/json" }

// Document is the JSON shape of a resolved view.
type Document struct {
	Mode        model.LayoutMode `json:"mode"`
	Tabs        []Tab            `json:"tabs,omitempty"`
	ActiveTab   int              `json:"activeTab"`
	Sections    []Section        `json:"sections"`
	FormErrors  []string         `json:"formErrors,omitempty"`
	Submitting  bool             `json:"submitting"`
	ReadOnly    bool             `json:"readOnly"`
	SubmitLabel string           `json:"submitLabel"`
	ResetLabel  string           `json:"resetLabel,omitempty"`
}

type Tab struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

type Section struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Columns     int     `json:"columns"`
	Fields      []Field `json:"fields"`
}

type Field struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Type      model.FieldType        `json:"type"`
	Component string                 `json:"component"`
	Label     string                 `json:"label"`
	Value     any                    `json:"value,omitempty"`
	Required  bool                   `json:"required"`
	Disabled  bool                   `json:"disabled"`
	Errors    []string               `json:"errors,omitempty"`
	Options   []model.FieldOption    `json:"options,omitempty"`
	Relation  []model.RelationOption `json:"relation,omitempty"`
}

// Render resolves form and encodes it with two-space indentation.
func (j JSON) Render(ctx context.Context, form *autoform.Form) (string, error) {
	view, err := form.Resolve(ctx)
	if err != nil {
		return "", fmt.Errorf("render: resolve form: %w", err)
	}
	data, err := json.MarshalIndent(NewDocument(view), "", "  ")
	if err != nil {
		return "", fmt.Errorf("render: encode view: %w", err)
	}
	return string(data), nil
}

// NewDocument converts view.
func NewDocument(view *autoform.View) Document {
	doc := Document{
		Mode:        view.Mode,
		ActiveTab:   view.ActiveTab,
		Sections:    make([]Section, 0, len(view.Sections)),
		FormErrors:  view.FormErrors,
		Submitting:  view.Submitting,
		ReadOnly:    view.ReadOnly,
		SubmitLabel: view.SubmitLabel,
	}
	if view.ShowReset {
		doc.ResetLabel = view.ResetLabel
	}
	for _, tab := range view.Tabs {
		doc.Tabs = append(doc.Tabs, Tab{Index: tab.Index, Title: tab.Title, Active: tab.Active})
	}
	for _, section := range view.Sections {
		out := Section{
			Title:       section.Title,
			Description: section.Description,
			Columns:     section.Columns,
			Fields:      make([]Field, 0, len(section.Fields)),
		}
		for _, f := range section.Fields {
			out.Fields = append(out.Fields, Field{
				ID:        f.Props.ID,
				Name:      f.Props.Name,
				Type:      f.Props.Type,
				Component: f.Component,
				Label:     f.Props.Label,
				Value:     f.Props.Value,
				Required:  f.Props.Required,
				Disabled:  f.Props.Disabled,
				Errors:    f.Props.Errors,
				Options:   f.Props.Options,
				Relation:  f.Props.Relation,
			})
		}
		doc.Sections = append(doc.Sections, out)
	}
	return doc
}
