package html

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/boundary"
	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

func TestRendererRendersFields(t *testing.T) {
	t.Parallel()

	form := autoform.New([]model.FieldDefinition{
		{Name: "title", Type: model.FieldTypeString, Label: "Title", Required: true},
		{Name: "secret", Type: model.FieldTypeString, Hidden: model.Static(true)},
	}, autoform.WithValues(map[string]any{"title": "Hello"}),
		autoform.WithErrors(map[string][]string{"title": {"Too short"}}))

	r, err := New(WithAction("/submit"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{
		`action="/submit"`,
		`method="POST"`,
		`for="field-title"`,
		`id="field-title"`,
		`value="Hello"`,
		`Too short`,
		`type="submit"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "field-secret") {
		t.Fatalf("hidden field rendered:\n%s", out)
	}
}

func TestRendererOnlyRendersActiveTab(t *testing.T) {
	t.Parallel()

	layout := &model.Layout{Tabs: []model.Tab{
		{Title: "General", Sections: []model.FormSection{{Fields: []string{"name"}}}},
		{Title: "Advanced", Sections: []model.FormSection{{Fields: []string{"debug"}, Columns: 2}}},
	}}
	form := autoform.New([]model.FieldDefinition{
		{Name: "name", Type: model.FieldTypeString},
		{Name: "debug", Type: model.FieldTypeBoolean},
	}, autoform.WithLayout(layout))
	form.SelectTab(1)

	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "field-name") {
		t.Fatalf("inactive tab field rendered:\n%s", out)
	}
	if !strings.Contains(out, "field-debug") {
		t.Fatalf("active tab field missing:\n%s", out)
	}
	if !strings.Contains(out, "vb-cols-2") {
		t.Fatalf("section columns missing:\n%s", out)
	}
	if !strings.Contains(out, `aria-selected="true"`) || !strings.Contains(out, "Advanced") {
		t.Fatalf("tab headers missing:\n%s", out)
	}
}

func TestRendererIsolatesFailingField(t *testing.T) {
	t.Parallel()

	reg := components.NewDefault()
	reg.MustRegister("exploding", components.Descriptor{
		Renderer: func(*bytes.Buffer, components.Props, components.RenderData) error {
			panic("kaboom")
		},
	})

	var reported []string
	b := boundary.New(boundary.WithReporter(boundary.ReporterFunc(func(_ context.Context, f boundary.Failure) {
		reported = append(reported, f.Name)
	})))

	form := autoform.New([]model.FieldDefinition{
		{Name: "ok", Type: model.FieldTypeString},
		{Name: "bad", Type: model.FieldTypeString, Props: map[string]any{"component": "exploding"}},
	}, autoform.WithRegistry(reg))

	r, err := New(WithBoundary(b))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "field-ok") {
		t.Fatalf("healthy field missing:\n%s", out)
	}
	if !strings.Contains(out, "View Rendering Error") || !strings.Contains(out, "kaboom") {
		t.Fatalf("fallback panel missing:\n%s", out)
	}
	if len(reported) != 1 || reported[0] != "field:bad" {
		t.Fatalf("unexpected reports: %v", reported)
	}
}

func TestRendererReadOnlyHidesSubmit(t *testing.T) {
	t.Parallel()

	form := autoform.New([]model.FieldDefinition{{Name: "a", Type: model.FieldTypeString}},
		autoform.WithReadOnly(true))
	r, err := New(WithMethod("get"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := r.Render(context.Background(), form)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, `type="submit"`) {
		t.Fatalf("read-only form rendered a submit button:\n%s", out)
	}
	if !strings.Contains(out, `method="GET"`) || !strings.Contains(out, "disabled") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
