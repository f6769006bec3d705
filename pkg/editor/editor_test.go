package editor

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
)

func seeded() *schema.Store {
	return schema.NewStore(schema.WithSchema(&model.ViewSchema{
		Title: "Profile",
		Fields: []model.FieldDefinition{
			{Name: "name", Type: model.FieldTypeString, Required: true},
			{Name: "bio", Type: model.FieldTypeText, Hidden: model.Computed("name == ''")},
		},
	}))
}

func TestEditorStartsInSync(t *testing.T) {
	t.Parallel()

	store := seeded()
	e := New(store)
	defer e.Close()

	want, _ := Serialize(store.Schema())
	if e.Text() != want {
		t.Fatalf("unexpected buffer:\n%s", e.Text())
	}
	if !strings.Contains(e.Text(), "\n  \"title\": \"Profile\"") {
		t.Fatalf("expected two-space indentation:\n%s", e.Text())
	}
	if e.Dirty() || e.Err() != nil {
		t.Fatalf("fresh editor should be clean")
	}
}

func TestEditorEditSurfacesSyntaxErrors(t *testing.T) {
	t.Parallel()

	store := seeded()
	e := New(store)
	defer e.Close()
	before := store.Schema()

	var syntaxErr *json.SyntaxError
	if err := e.Edit(`{"fields": [`); !errors.As(err, &syntaxErr) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if !e.Dirty() || e.Err() == nil {
		t.Fatalf("expected dirty buffer with error")
	}
	if err := e.Apply(); err == nil {
		t.Fatalf("apply should fail on invalid JSON")
	}
	if diff := cmp.Diff(before.FieldNames(), store.Schema().FieldNames()); diff != "" {
		t.Fatalf("store changed on failed apply (-want +got):\n%s", diff)
	}

	if err := e.Edit("   "); err != nil {
		t.Fatalf("empty buffer should parse as an empty object: %v", err)
	}
}

func TestEditorApplyValidationFailure(t *testing.T) {
	t.Parallel()

	store := seeded()
	e := New(store)
	defer e.Close()

	_ = e.Edit(`{"fields":[{"name":"a"}]}`)
	err := e.Apply()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "Schema validation failed: ") {
		t.Fatalf("unexpected message %q", err)
	}
	if len(vErr.Issues) != 1 || vErr.Issues[0].Path != "/fields/0/type" {
		t.Fatalf("unexpected issues %v", vErr.Issues)
	}
	if !e.Dirty() || e.Err() == nil {
		t.Fatalf("failed apply must keep the buffer dirty with an error")
	}
	if store.Schema().Title != "Profile" {
		t.Fatalf("store changed on failed apply")
	}
}

func TestEditorApplyCommits(t *testing.T) {
	t.Parallel()

	store := seeded()
	e := New(store)
	defer e.Close()

	_ = e.Edit(`{"title":"Renamed","fields":[{"name":"x","type":"number"}]}`)
	if err := e.Apply(); err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := store.Schema()
	if got.Title != "Renamed" || len(got.Fields) != 1 || got.Fields[0].Name != "x" {
		t.Fatalf("unexpected store schema %#v", got)
	}
	if e.Dirty() || e.Err() != nil {
		t.Fatalf("apply should clear dirty and error")
	}
	want, _ := Serialize(got)
	if e.Text() != want {
		t.Fatalf("buffer not re-synced:\n%s", e.Text())
	}
}

func TestEditorFollowsStoreAndReset(t *testing.T) {
	t.Parallel()

	store := seeded()
	e := New(store)
	defer e.Close()

	_ = e.Edit(`{"oops"`)
	if err := store.AddField(model.FieldDefinition{Name: "age", Type: model.FieldTypeNumber}); err != nil {
		t.Fatalf("add field: %v", err)
	}
	if e.Dirty() || e.Err() != nil || !strings.Contains(e.Text(), `"age"`) {
		t.Fatalf("external change should re-sync the buffer:\n%s", e.Text())
	}

	_ = e.Edit(`{}`)
	e.Reset()
	if e.Dirty() || !strings.Contains(e.Text(), `"age"`) {
		t.Fatalf("reset should restore the store text")
	}

	e.Close()
	_ = store.AddField(model.FieldDefinition{Name: "late"})
	if strings.Contains(e.Text(), "late") {
		t.Fatalf("closed editor should not follow the store")
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	t.Parallel()

	original := &model.ViewSchema{
		ID:    "orders",
		Title: "Orders",
		Fields: []model.FieldDefinition{
			{Name: "status", Type: model.FieldTypeEnum, Options: []model.FieldOption{{Value: "open", Label: "Open"}, {Value: "closed", Disabled: true}}},
			{Name: "note", Type: model.FieldTypeText, ReadOnly: model.Static(true), Hidden: model.Computed("status != 'open'")},
			{Name: "owner", Type: model.FieldTypeRelation, Relation: &model.RelationConfig{Source: "users", Multiple: true, MaxItems: 3}},
			{Name: "color", Type: model.FieldTypeColor, Props: map[string]any{"component": "color"}},
		},
		Layout: &model.Layout{Tabs: []model.Tab{{Title: "Main", Sections: []model.FormSection{{Title: "A", Fields: []string{"status", "note"}, Columns: 2}}}}},
		Metadata: map[string]string{"version": "2"},
	}

	text, err := Serialize(original)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cmpPredicate := cmp.Comparer(func(a, b *model.Predicate) bool { return a.String() == b.String() && a.Kind() == b.Kind() })
	if diff := cmp.Diff(original, parsed, cmpPredicate); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
