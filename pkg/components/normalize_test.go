package components

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	reg := NewDefault()
	options := []model.FieldOption{{Value: "a"}, {Value: "b"}}

	cases := []struct {
		name     string
		field    model.FieldDefinition
		input    any
		want     any
		wantCode string
	}{
		{name: "string from number", field: model.FieldDefinition{Type: model.FieldTypeString}, input: 12.5, want: "12.5"},
		{name: "number from string", field: model.FieldDefinition{Type: model.FieldTypeNumber}, input: "42", want: 42.0},
		{name: "number empty", field: model.FieldDefinition{Type: model.FieldTypeNumber}, input: "", want: nil},
		{name: "number invalid", field: model.FieldDefinition{Type: model.FieldTypeNumber}, input: "abc", wantCode: CodeInvalidNumber},
		{name: "number clamps to max", field: model.FieldDefinition{Type: model.FieldTypeNumber, Props: map[string]any{"min": 0, "max": 10}}, input: 50, want: 10.0},
		{name: "number clamps to min", field: model.FieldDefinition{Type: model.FieldTypeNumber, Props: map[string]any{"min": 5}}, input: "-3", want: 5.0},
		{name: "number unbounded", field: model.FieldDefinition{Type: model.FieldTypeNumber}, input: 1e6, want: 1e6},
		{name: "slider default range", field: model.FieldDefinition{Type: model.FieldTypeNumber, Props: map[string]any{"slider": true}}, input: 250, want: 100.0},
		{name: "slider below zero", field: model.FieldDefinition{Type: model.FieldTypeNumber, Props: map[string]any{"slider": true}}, input: -1, want: 0.0},
		{name: "slider custom max", field: model.FieldDefinition{Type: model.FieldTypeNumber, Props: map[string]any{"slider": true, "max": 10}}, input: 50, want: 10.0},
		{name: "boolean on", field: model.FieldDefinition{Type: model.FieldTypeBoolean}, input: "on", want: true},
		{name: "date rfc3339", field: model.FieldDefinition{Type: model.FieldTypeDate}, input: "2024-03-01T10:00:00Z", want: "2024-03-01"},
		{name: "date invalid", field: model.FieldDefinition{Type: model.FieldTypeDate}, input: "yesterday", wantCode: CodeInvalidDate},
		{name: "enum valid", field: model.FieldDefinition{Type: model.FieldTypeEnum, Options: options}, input: "b", want: "b"},
		{name: "enum invalid", field: model.FieldDefinition{Type: model.FieldTypeEnum, Options: options}, input: "z", wantCode: CodeInvalidOption},
		{name: "multiselect", field: model.FieldDefinition{Type: model.FieldTypeMultiSelect, Options: options}, input: []any{"a", "b"}, want: []string{"a", "b"}},
		{name: "checkbox invalid", field: model.FieldDefinition{Type: model.FieldTypeCheckbox, Options: options}, input: []string{"c"}, wantCode: CodeInvalidOption},
		{name: "json valid", field: model.FieldDefinition{Type: model.FieldTypeJSON}, input: `{"a":[1]}`, want: map[string]any{"a": []any{1.0}}},
		{name: "json invalid", field: model.FieldDefinition{Type: model.FieldTypeJSON}, input: `{"a":`, wantCode: CodeInvalidJSON},
		{name: "json structured passthrough", field: model.FieldDefinition{Type: model.FieldTypeJSON}, input: []any{"x"}, want: []any{"x"}},
		{name: "color", field: model.FieldDefinition{Type: model.FieldTypeColor}, input: "#FFAA00", want: "#ffaa00"},
		{name: "color invalid", field: model.FieldDefinition{Type: model.FieldTypeColor}, input: "red", wantCode: CodeInvalidColor},
		{name: "email", field: model.FieldDefinition{Type: model.FieldTypeEmail}, input: " ada@example.com ", want: "ada@example.com"},
		{name: "email invalid", field: model.FieldDefinition{Type: model.FieldTypeEmail}, input: "ada@", wantCode: CodeInvalidEmail},
		{name: "url", field: model.FieldDefinition{Type: model.FieldTypeURL}, input: "https://example.com/x", want: "https://example.com/x"},
		{name: "url invalid", field: model.FieldDefinition{Type: model.FieldTypeURL}, input: "example", wantCode: CodeInvalidURL},
		{name: "phone", field: model.FieldDefinition{Type: model.FieldTypePhone}, input: "555.123.4567", want: "(555) 123-4567"},
		{name: "phone partial", field: model.FieldDefinition{Type: model.FieldTypePhone}, input: "555", want: "(555) "},
		{name: "phone two digits", field: model.FieldDefinition{Type: model.FieldTypePhone}, input: "55", want: "55"},
		{name: "phone empty", field: model.FieldDefinition{Type: model.FieldTypePhone}, input: "", want: ""},
		{name: "richtext", field: model.FieldDefinition{Type: model.FieldTypeRichText}, input: `<b>x</b><script>y</script>`, want: "<b>x</b>"},
		{name: "relation single", field: model.FieldDefinition{Type: model.FieldTypeRelation}, input: 7, want: "7"},
		{name: "relation too many", field: model.FieldDefinition{Type: model.FieldTypeRelation, Relation: &model.RelationConfig{Multiple: true, MaxItems: 1}}, input: []string{"a", "b"}, wantCode: CodeTooMany},
		{name: "file single", field: model.FieldDefinition{Type: model.FieldTypeFile}, input: []string{"a.pdf"}, want: "a.pdf"},
		{name: "unknown type", field: model.FieldDefinition{Type: "hologram"}, input: true, want: "true"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := reg.Normalize(tc.field, tc.input)
			if tc.wantCode != "" {
				var fe *FieldError
				if !errors.As(err, &fe) {
					t.Fatalf("expected FieldError, got %v", err)
				}
				if fe.Code != tc.wantCode {
					t.Fatalf("code = %q, want %q", fe.Code, tc.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatPhoneProgressive(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":              "",
		"5":             "5",
		"555":           "(555) ",
		"5551":          "(555) 1",
		"555123":        "(555) 123-",
		"5551234":       "(555) 123-4",
		"555123456789":  "(555) 123-4567",
		"(555) 123-45a": "(555) 123-45",
	}
	for in, want := range cases {
		if got := FormatPhone(in); got != want {
			t.Fatalf("FormatPhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToggleOption(t *testing.T) {
	t.Parallel()

	got := ToggleOption([]string{"a", "b"}, "c")
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Fatalf("add mismatch (-want +got):\n%s", diff)
	}
	got = ToggleOption(got, "a")
	if diff := cmp.Diff([]string{"b", "c"}, got); diff != "" {
		t.Fatalf("remove mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterOptions(t *testing.T) {
	t.Parallel()

	options := []model.FieldOption{{Value: "go", Label: "Golang"}, {Value: "rs", Label: "Rust"}, {Value: "ts"}}
	got := FilterOptions(options, "RU")
	if len(got) != 1 || got[0].Value != "rs" {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if len(FilterOptions(options, " ")) != 3 {
		t.Fatalf("empty term should return every option")
	}
}
