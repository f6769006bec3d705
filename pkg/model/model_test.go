package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestPredicateJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    string
		kind     PredicateKind
		static   bool
		expr     string
		encoding string
	}{
		{name: "true", input: `true`, kind: PredicateStatic, static: true, encoding: `true`},
		{name: "false", input: `false`, kind: PredicateStatic, encoding: `false`},
		{name: "expression", input: `"kind == \"company\""`, kind: PredicateComputed, expr: `kind == "company"`, encoding: `"kind == \"company\""`},
		{name: "when object", input: `{"when":"!enabled"}`, kind: PredicateComputed, expr: "!enabled", encoding: `"!enabled"`},
		{name: "string bool", input: `"true"`, kind: PredicateStatic, static: true, encoding: `true`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var p Predicate
			if err := json.Unmarshal([]byte(tc.input), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Kind() != tc.kind || p.StaticValue() != tc.static || p.Expression() != tc.expr {
				t.Fatalf("unexpected predicate %+v", p)
			}
			out, err := json.Marshal(&p)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tc.encoding {
				t.Fatalf("marshal = %s, want %s", out, tc.encoding)
			}
		})
	}
}

func TestPredicateRejectsGarbage(t *testing.T) {
	t.Parallel()

	var p Predicate
	if err := json.Unmarshal([]byte(`[1,2]`), &p); err == nil {
		t.Fatalf("expected error for array predicate")
	}
	if _, err := json.Marshal(When(func(map[string]any) bool { return true })); err == nil {
		t.Fatalf("expected error marshalling function predicate")
	}
}

func TestPredicateYAML(t *testing.T) {
	t.Parallel()

	doc := `
name: vat
type: string
hidden: kind != "company"
readOnly: true
`
	var field FieldDefinition
	if err := yaml.Unmarshal([]byte(doc), &field); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if field.Hidden.Expression() != `kind != "company"` {
		t.Fatalf("hidden = %q", field.Hidden.Expression())
	}
	if !field.ReadOnly.IsStatic() || !field.ReadOnly.StaticValue() {
		t.Fatalf("readOnly should be static true")
	}
}

func TestRelationOptionNumericID(t *testing.T) {
	t.Parallel()

	var opts []RelationOption
	payload := `[{"id":42,"label":"Answer"},{"id":"abc","label":"Letters","data":{"k":1}},{"id":1.5,"label":"Float"}]`
	if err := json.Unmarshal([]byte(payload), &opts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := []string{opts[0].ID, opts[1].ID, opts[2].ID}
	if diff := cmp.Diff([]string{"42", "abc", "1.5"}, got); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if opts[1].Label != "Letters" || opts[1].Data["k"] != float64(1) {
		t.Fatalf("embedded fields lost: %+v", opts[1])
	}
	if _, ok := FindOption(opts, "42"); !ok {
		t.Fatalf("FindOption failed")
	}
}

func TestSchemaValidateDuplicates(t *testing.T) {
	t.Parallel()

	schema := &ViewSchema{Fields: []FieldDefinition{
		{Name: "a", Type: FieldTypeString},
		{Name: "b", Type: FieldTypeString},
		{Name: "a", Type: FieldTypeNumber},
	}}
	if err := schema.Validate(); !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
	schema.Dedupe()
	if diff := cmp.Diff([]string{"a", "b"}, schema.FieldNames()); diff != "" {
		t.Fatalf("dedupe mismatch (-want +got):\n%s", diff)
	}
	if schema.Fields[0].Type != FieldTypeString {
		t.Fatalf("dedupe should keep first occurrence")
	}
}

func TestSchemaCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := &ViewSchema{
		Fields: []FieldDefinition{{
			Name:    "tags",
			Type:    FieldTypeMultiSelect,
			Options: []FieldOption{{Value: "a"}},
			Props:   map[string]any{"nested": map[string]any{"x": 1}},
		}},
		Layout:   &Layout{Sections: []FormSection{{Fields: []string{"tags"}}}},
		Metadata: map[string]string{"owner": "ops"},
	}
	clone := orig.Clone()
	clone.Fields[0].Options[0].Value = "changed"
	clone.Fields[0].Props["nested"].(map[string]any)["x"] = 2
	clone.Layout.Sections[0].Fields[0] = "other"
	clone.Metadata["owner"] = "dev"

	if orig.Fields[0].Options[0].Value != "a" ||
		orig.Fields[0].Props["nested"].(map[string]any)["x"] != 1 ||
		orig.Layout.Sections[0].Fields[0] != "tags" ||
		orig.Metadata["owner"] != "ops" {
		t.Fatalf("clone shares state with original: %+v", orig)
	}
}

func TestLayoutMode(t *testing.T) {
	t.Parallel()

	var nilLayout *Layout
	if nilLayout.Mode() != LayoutSingle {
		t.Fatalf("nil layout should be single")
	}
	both := &Layout{
		Tabs:     []Tab{{Title: "Main", Sections: []FormSection{{Fields: []string{"a"}}}}},
		Sections: []FormSection{{Fields: []string{"b"}}},
	}
	if both.Mode() != LayoutTabs {
		t.Fatalf("tabs should win over sections")
	}
	if diff := cmp.Diff([]string{"a", "b"}, both.FieldRefs()); diff != "" {
		t.Fatalf("refs mismatch (-want +got):\n%s", diff)
	}
	if got := (FormSection{Columns: 9}).ColumnCount(); got != 4 {
		t.Fatalf("columns clamp = %d", got)
	}
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"first_name": "First name",
		"firstName":  "First name",
		"email":      "Email",
		"":           "",
	}
	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Fatalf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
