package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-viewbuilder/internal/watch"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/tui"
)

const contactJSON = `{
  "title": "Contact",
  "fields": [
    {"name": "email", "type": "email", "required": true},
    {"name": "kind", "type": "enum", "options": [{"value": "person"}, {"value": "company"}]},
    {"name": "company", "type": "string", "hidden": "kind != \"company\""}
  ]
}`

type harness struct {
	t       *testing.T
	dir     string
	storage string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{t: t, dir: dir, storage: filepath.Join(dir, "views")}
}

func (h *harness) write(name, body string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		h.t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	full := append([]string{"viewctl", "--log-level", "error", "--storage", "file", "--storage-path", h.storage}, args...)
	err := run(context.Background(), full, &out, "test")
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("viewctl %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestSaveListShowDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := h.write("contact.json", contactJSON)

	if out := h.mustRun("save", "contact", path); !strings.Contains(out, "saved contact") {
		t.Fatalf("save output %q", out)
	}
	if out := h.mustRun("save", "contact", path); !strings.Contains(out, "overwritten contact") {
		t.Fatalf("second save output %q", out)
	}
	if out := h.mustRun("list"); strings.TrimSpace(out) != "contact" {
		t.Fatalf("list output %q", out)
	}

	var view model.ViewSchema
	if err := json.Unmarshal([]byte(h.mustRun("show", "contact")), &view); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if view.ID != "contact" || len(view.Fields) != 3 {
		t.Fatalf("unexpected view %+v", view)
	}
	if out := h.mustRun("show", "--yaml", "contact"); !strings.Contains(out, "title: Contact") {
		t.Fatalf("yaml output %q", out)
	}

	h.mustRun("delete", "contact")
	if _, err := h.run("show", "contact"); err == nil {
		t.Fatalf("expected show to fail after delete")
	}
}

func TestValidateReportsEveryFile(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	good := h.write("good.json", contactJSON)
	bad := h.write("bad.yaml", "fields:\n  - name: a\n    type: string\n  - name: a\n    type: string\n")

	out, err := h.run("validate", good, bad)
	if err == nil {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(out, "ok   "+good) || !strings.Contains(out, "FAIL "+bad) {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := h.run("validate", good); err != nil {
		t.Fatalf("valid file failed: %v", err)
	}
}

func TestEditAndAddField(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.mustRun("save", "contact", h.write("contact.json", contactJSON))

	invalid := h.write("invalid.json", `{"fields":[{"name":"a","type":"string"},{"name":"a","type":"string"}]}`)
	if _, err := h.run("edit", "--from", invalid, "contact"); err == nil {
		t.Fatalf("expected invalid edit to fail")
	}

	edited := h.write("edited.json", `{"title":"Edited","fields":[{"name":"name","type":"string"}]}`)
	if out := h.mustRun("edit", "--from", edited, "contact"); !strings.Contains(out, "overwritten contact") {
		t.Fatalf("edit output %q", out)
	}

	if _, err := h.run("edit", "--from", edited, "fresh"); err == nil {
		t.Fatalf("expected edit of missing view to fail without --create")
	}
	h.mustRun("edit", "--create", "--from", edited, "fresh")

	name := strings.TrimSpace(h.mustRun("add-field", "contact", "email"))
	if !strings.HasPrefix(name, "email-") {
		t.Fatalf("add-field output %q", name)
	}
	var view model.ViewSchema
	if err := json.Unmarshal([]byte(h.mustRun("show", "contact")), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.Title != "Edited" || len(view.Fields) != 2 || view.Fields[1].Name != name {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestRenderFromFile(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := h.write("contact.json", contactJSON)

	out := h.mustRun("render", "--file", path, "--values", `{"kind":"company"}`)
	if !strings.Contains(out, "field-email") || !strings.Contains(out, "field-company") {
		t.Fatalf("unexpected html:\n%s", out)
	}
	out = h.mustRun("render", "--file", path)
	if strings.Contains(out, "field-company") {
		t.Fatalf("hidden field rendered:\n%s", out)
	}
	if _, err := h.run("render", "--file", path, "--values", "[1]"); err == nil {
		t.Fatalf("expected bad --values to fail")
	}

	out = h.mustRun("render", "--file", path, "--format", "json")
	if !strings.Contains(out, `"id": "field-email"`) || strings.Contains(out, "field-company") {
		t.Fatalf("unexpected json:\n%s", out)
	}
	if _, err := h.run("render", "--file", path, "--format", "jsx"); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestImportJSONSchema(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := h.write("person.json", `{
  "type": "object",
  "required": ["email"],
  "properties": {
    "email": {"type": "string", "format": "email"},
    "age": {"type": "integer"}
  }
}`)

	out := h.mustRun("import", "--json-schema", "--save", "person", path)
	var view model.ViewSchema
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(view.Fields) != 2 {
		t.Fatalf("unexpected fields %+v", view.Fields)
	}
	if list := h.mustRun("list"); strings.TrimSpace(list) != "person" {
		t.Fatalf("imported view not stored: %q", list)
	}
	if _, err := h.run("import", path); err == nil {
		t.Fatalf("expected import without mode to fail")
	}
}

type scriptedDriver struct {
	inputs  []string
	selects []int
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	v := d.inputs[0]
	d.inputs = d.inputs[1:]
	return v, nil
}
func (d *scriptedDriver) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}
func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) { return false, nil }
func (d *scriptedDriver) Select(context.Context, tui.SelectConfig) (int, error) {
	v := d.selects[0]
	d.selects = d.selects[1:]
	return v, nil
}
func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return nil, nil
}
func (d *scriptedDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.Input(ctx, tui.InputConfig{})
}
func (d *scriptedDriver) Info(context.Context, string) error { return nil }

// Not parallel: swaps the package prompt driver.
func TestFillPrintsVisibleValues(t *testing.T) {
	h := newHarness(t)
	path := h.write("contact.json", contactJSON)

	prev := newDriver
	t.Cleanup(func() { newDriver = prev })
	newDriver = func() tui.PromptDriver {
		return &scriptedDriver{inputs: []string{"a@example.com", "Acme"}, selects: []int{1}}
	}

	out := h.mustRun("fill", "--file", path)
	var values map[string]any
	if err := json.Unmarshal([]byte(out), &values); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if values["email"] != "a@example.com" || values["kind"] != "company" || values["company"] != "Acme" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestWatchSyncRefusesStorageDirectory(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	path := h.write("contact.json", contactJSON)
	h.mustRun("save", "contact", path)

	if _, err := h.run("watch", "--sync", h.storage); !errors.Is(err, watch.ErrWatchingStorage) {
		t.Fatalf("watch --sync on storage dir error = %v", err)
	}
	if out := h.mustRun("list"); strings.TrimSpace(out) != "contact" {
		t.Fatalf("list output %q", out)
	}
}
