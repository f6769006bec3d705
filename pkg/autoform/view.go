package autoform

import (
	"context"

	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/i18n"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// View is a resolved, render-ready snapshot of a form.
type View struct {
	Mode        model.LayoutMode
	Tabs        []TabView
	ActiveTab   int
	Sections    []SectionView
	FormErrors  []string
	Submitting  bool
	ReadOnly    bool
	SubmitLabel string
	ResetLabel  string
	ShowReset   bool
}

// TabView is a tab header.
type TabView struct {
	Index  int
	Title  string
	Active bool
}

// SectionView is a group of visible fields.
type SectionView struct {
	Title       string
	Description string
	Columns     int
	Fields      []FieldView
}

// FieldView is a visible field with its resolved component and props.
type FieldView struct {
	Definition model.FieldDefinition
	Component  string
	Props      components.Props
	ReadOnly   bool
}

// Fields flattens the sections of the view.
func (v *View) Fields() []FieldView {
	if v == nil {
		return nil
	}
	var out []FieldView
	for _, section := range v.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Resolve evaluates predicates against the current values and arranges the
// visible fields. Tabs render only the active tab's sections; sections render
// their listed fields; without a layout all fields form a single section.
// Fields referenced by a section but not declared are skipped.
func (f *Form) Resolve(ctx context.Context) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	submitLabel := f.t(i18n.KeySubmit, f.labels.submit)
	if f.submitting {
		submitLabel = f.t(i18n.KeySubmitting, f.labels.submitting)
	}
	view := &View{
		Mode:        f.layout.Mode(),
		FormErrors:  append([]string(nil), f.formErrs...),
		Submitting:  f.submitting,
		ReadOnly:    f.readOnly,
		SubmitLabel: submitLabel,
		ResetLabel:  f.t(i18n.KeyReset, f.labels.reset),
		ShowReset:   f.showReset,
	}

	switch view.Mode {
	case model.LayoutTabs:
		active := f.activeTab
		if active < 0 || active >= len(f.layout.Tabs) {
			active = 0
		}
		view.ActiveTab = active
		for i, tab := range f.layout.Tabs {
			view.Tabs = append(view.Tabs, TabView{
				Index:  i,
				Title:  f.t(i18n.TabKey(tab.Title), tab.Title),
				Active: i == active,
			})
		}
		for _, section := range f.layout.Tabs[active].Sections {
			view.Sections = append(view.Sections, f.resolveSectionLocked(ctx, section))
		}
	case model.LayoutSections:
		for _, section := range f.layout.Sections {
			view.Sections = append(view.Sections, f.resolveSectionLocked(ctx, section))
		}
	default:
		view.Sections = []SectionView{f.resolveSectionLocked(ctx, model.FormSection{Fields: f.fieldNames()})}
	}
	return view, nil
}

func (f *Form) fieldNames() []string {
	names := make([]string, 0, len(f.fields))
	for _, field := range f.fields {
		names = append(names, field.Name)
	}
	return names
}

func (f *Form) resolveSectionLocked(ctx context.Context, section model.FormSection) SectionView {
	out := SectionView{
		Description: section.Description,
		Columns:     section.ColumnCount(),
	}
	if section.Title != "" {
		out.Title = f.t(i18n.SectionKey(section.Title), section.Title)
	}
	for _, name := range section.Fields {
		field, ok := f.field(name)
		if !ok {
			continue
		}
		state := f.fieldStateLocked(field)
		if state.hidden {
			continue
		}
		out.Fields = append(out.Fields, f.fieldViewLocked(ctx, field, state))
	}
	return out
}

func (f *Form) fieldViewLocked(ctx context.Context, field model.FieldDefinition, state fieldState) FieldView {
	props := components.PropsFor(field)
	props.Label = f.t(i18n.FieldLabelKey(field.Name), props.Label)
	props.Description = f.t(i18n.FieldDescriptionKey(field.Name), props.Description)
	props.Placeholder = f.t(i18n.FieldPlaceholderKey(field.Name), props.Placeholder)
	props.Value = f.values[field.Name]
	props.Disabled = state.disabled
	props.Errors = append([]string(nil), f.errs[field.Name]...)

	if field.Type.Normalize() == model.FieldTypeRelation && f.relations != nil {
		options, err := f.relations.ResolveOptions(ctx, field, "")
		if err != nil {
			f.logger.Error("Error fetching relation options", "field", field.Name, "error", err)
		} else {
			props.Relation = options
		}
	}

	return FieldView{
		Definition: field,
		Component:  f.registry.Resolve(field).Name,
		Props:      props,
		ReadOnly:   state.readOnly,
	}
}
