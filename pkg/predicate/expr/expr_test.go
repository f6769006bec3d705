package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProgramEval(t *testing.T) {
	t.Parallel()

	values := map[string]any{
		"enabled":  true,
		"status":   "draft",
		"count":    3,
		"price":    "12.5",
		"tags":     []any{},
		"address":  map[string]any{"city": "Lisbon"},
		"cta.head": "Hello",
	}

	cases := []struct {
		name   string
		source string
		want   bool
	}{
		{name: "truthy", source: "enabled", want: true},
		{name: "negated", source: "!enabled", want: false},
		{name: "missing is falsy", source: "unknown", want: false},
		{name: "string equality", source: `status == "draft"`, want: true},
		{name: "single quoted", source: `status != 'published'`, want: true},
		{name: "bare word literal", source: `status == draft`, want: true},
		{name: "number greater", source: "count > 2", want: true},
		{name: "number lte", source: "count <= 2", want: false},
		{name: "numeric string", source: "price >= 12.5", want: true},
		{name: "missing number", source: "absent == 0", want: false},
		{name: "missing number neq", source: "absent != 0", want: true},
		{name: "null check", source: "absent == null", want: true},
		{name: "not null", source: "status != null", want: true},
		{name: "bool literal", source: "enabled == true", want: true},
		{name: "empty slice", source: "tags", want: false},
		{name: "nested path", source: `address.city == "Lisbon"`, want: true},
		{name: "flattened key", source: `cta.head == "Hello"`, want: true},
		{name: "composition", source: `enabled && (status == "published" || count == 3)`, want: true},
		{name: "precedence", source: `!enabled || count == 3 && status == "x"`, want: false},
		{name: "extras", source: `extras.role == "admin"`, want: true},
	}

	scope := Scope{Values: values, Extras: map[string]any{"role": "admin"}}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			prog, err := Compile(tc.source)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tc.source, err)
			}
			got, err := prog.Eval(scope)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tc.source, err)
			}
			if got != tc.want {
				t.Fatalf("Eval(%q) = %v, want %v", tc.source, got, tc.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	cases := []string{
		"a = 1",
		"a & b",
		"a | b",
		`a == "open`,
		"(a && b",
		"a ==",
		"a > true",
		"&& a",
	}
	for _, source := range cases {
		if _, err := Compile(source); err == nil {
			t.Fatalf("Compile(%q) expected error", source)
		}
	}

	if _, err := Compile("   "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestProgramIdentifiers(t *testing.T) {
	t.Parallel()

	prog := MustCompile(`kind == "company" && (vat || kind == "other") && !extras.guest`)
	want := []string{"kind", "vat", "extras.guest"}
	if diff := cmp.Diff(want, prog.Identifiers()); diff != "" {
		t.Fatalf("identifiers mismatch (-want +got):\n%s", diff)
	}
	if prog.Source() == "" {
		t.Fatalf("expected source to be retained")
	}
}

func TestNilProgramIsFalse(t *testing.T) {
	t.Parallel()

	var prog *Program
	ok, err := prog.Eval(Scope{})
	if err != nil || ok {
		t.Fatalf("nil program: got %v, %v", ok, err)
	}
}
