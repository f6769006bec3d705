package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

func sampleSchema() *model.ViewSchema {
	return &model.ViewSchema{
		ID:    "contact",
		Title: "Contact",
		Fields: []model.FieldDefinition{
			{Name: "email", Type: model.FieldTypeEmail, Label: "Email", Required: true},
			{Name: "newsletter", Type: model.FieldTypeBoolean},
			{Name: "topics", Type: model.FieldTypeMultiSelect, Hidden: model.Computed("newsletter != true"),
				Options: []model.FieldOption{{Value: "go"}, {Value: "rust"}}},
		},
		Layout: &model.Layout{Sections: []model.FormSection{{Title: "Main", Fields: []string{"email", "newsletter", "topics"}, Columns: 2}}},
		Metadata: map[string]string{"owner": "ops"},
	}
}

func providers(t *testing.T) map[string]Provider {
	t.Helper()
	file, err := NewFile(filepath.Join(t.TempDir(), "views"))
	if err != nil {
		t.Fatalf("new file provider: %v", err)
	}
	sqlite, err := NewSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("new sqlite provider: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Provider{
		"local":  NewLocal(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestProviderRoundTrip(t *testing.T) {
	t.Parallel()

	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := p.Load(ctx, "missing")
			if err != nil || got != nil {
				t.Fatalf("expected (nil, nil) for missing id, got %v, %v", got, err)
			}

			want := sampleSchema()
			if err := p.Save(ctx, "contact", want); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := p.Save(ctx, "another", &model.ViewSchema{Title: "Another"}); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err = p.Load(ctx, "contact")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if diff := cmp.Diff(want, got, cmp.Comparer(samePredicate)); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}

			ids, err := p.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if diff := cmp.Diff([]string{"another", "contact"}, ids); diff != "" {
				t.Fatalf("unexpected ids (-want +got):\n%s", diff)
			}

			want.Title = "Contact v2"
			if err := p.Save(ctx, "contact", want); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, _ = p.Load(ctx, "contact")
			if got.Title != "Contact v2" {
				t.Fatalf("expected last write to win, got %q", got.Title)
			}

			if err := p.Delete(ctx, "contact"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := p.Delete(ctx, "contact"); err != nil {
				t.Fatalf("deleting a missing id should succeed: %v", err)
			}
			got, err = p.Load(ctx, "contact")
			if err != nil || got != nil {
				t.Fatalf("expected deleted view to be gone, got %v, %v", got, err)
			}
		})
	}
}

func samePredicate(a, b *model.Predicate) bool {
	return a.String() == b.String()
}

func TestProviderRejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	for name, p := range providers(t) {
		for _, id := range []string{"", " padded", "../escape", "a/b", `a\b`} {
			if err := p.Save(context.Background(), id, sampleSchema()); !errors.Is(err, ErrInvalidID) {
				t.Fatalf("%s: expected ErrInvalidID for %q, got %v", name, id, err)
			}
			if _, err := p.Load(context.Background(), id); !errors.Is(err, ErrInvalidID) {
				t.Fatalf("%s: expected ErrInvalidID on load for %q, got %v", name, id, err)
			}
		}
		if err := p.Save(context.Background(), "nil", nil); !errors.Is(err, ErrNilSchema) {
			t.Fatalf("%s: expected ErrNilSchema, got %v", name, err)
		}
	}
}

func TestLocalPrefixIsolation(t *testing.T) {
	t.Parallel()

	shared := map[string][]byte{"other_key": []byte("x")}
	l := NewLocal(WithItems(shared), WithPrefix("views:"))
	if err := l.Save(context.Background(), "a", sampleSchema()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := shared["views:a"]; !ok {
		t.Fatalf("expected prefixed key in shared map, got %v", shared)
	}
	ids, _ := l.List(context.Background())
	if diff := cmp.Diff([]string{"a"}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
}

func TestFileReadsYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlDoc := `title: Survey
fields:
  - name: rating
    type: number
    required: true
  - name: comment
    type: text
    hidden: "rating > 3"
`
	if err := os.WriteFile(filepath.Join(dir, "survey.yaml"), []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	p, err := NewFile(dir)
	if err != nil {
		t.Fatalf("new file provider: %v", err)
	}

	got, err := p.Load(context.Background(), "survey")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || len(got.Fields) != 2 || got.Fields[1].Hidden.Expression() != "rating > 3" {
		t.Fatalf("unexpected schema %#v", got)
	}

	if err := p.Save(context.Background(), "survey", got); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "survey.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected yaml copy to be replaced by json, stat err=%v", err)
	}
	ids, _ := p.List(context.Background())
	if diff := cmp.Diff([]string{"survey"}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	p, err := New(context.Background(), Config{Type: TypeLocal, Prefix: "x_"})
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, ok := p.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", p)
	}
	if err := Close(p); err != nil {
		t.Fatalf("close local: %v", err)
	}

	p, err = New(context.Background(), Config{Type: TypeFile, BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	if _, ok := p.(*File); !ok {
		t.Fatalf("expected *File, got %T", p)
	}

	if _, err := New(context.Background(), Config{Type: "redis"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	if _, err := New(context.Background(), Config{Type: TypeGCS}); err == nil {
		t.Fatalf("expected error for gcs without bucket")
	}
}
