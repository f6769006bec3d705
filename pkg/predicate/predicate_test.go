package predicate

import (
	"testing"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

func TestEvaluatorEval(t *testing.T) {
	t.Parallel()

	values := map[string]any{"kind": "company", "employees": 12}
	cases := []struct {
		name string
		pred *model.Predicate
		want bool
	}{
		{name: "nil", pred: nil, want: false},
		{name: "static true", pred: model.Static(true), want: true},
		{name: "static false", pred: model.Static(false), want: false},
		{name: "expression", pred: model.Computed(`kind == "company"`), want: true},
		{name: "expression false", pred: model.Computed(`employees < 10`), want: false},
		{name: "func", pred: model.When(func(v map[string]any) bool { return v["kind"] == "person" }), want: false},
		{name: "extras", pred: model.Computed(`extras.admin`), want: true},
	}

	eval := New(WithExtras(map[string]any{"admin": true}))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.Eval(tc.pred, values)
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Eval = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluatorCachesPrograms(t *testing.T) {
	t.Parallel()

	eval := New()
	if eval.Cached("a && b") {
		t.Fatalf("expected empty cache")
	}
	first, err := eval.Compile("a && b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := eval.Compile("a && b")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first != second || !eval.Cached("a && b") {
		t.Fatalf("expected cached program to be reused")
	}
	if New().Cached("a && b") {
		t.Fatalf("evaluators must not share a cache")
	}
}

func TestEvaluatorCheck(t *testing.T) {
	t.Parallel()

	eval := New()
	if err := eval.Check(model.Computed("a = 1")); err == nil {
		t.Fatalf("expected compile error")
	}
	if err := eval.Check(model.Static(true)); err != nil {
		t.Fatalf("static predicates should not fail: %v", err)
	}
	if _, err := eval.Eval(model.Computed("(a"), nil); err == nil {
		t.Fatalf("expected eval error for invalid expression")
	}
}
