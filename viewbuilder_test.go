package viewbuilder

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

func TestRenderHTMLFromValidatedSchema(t *testing.T) {
	t.Parallel()

	res := Validate(`{"title":"Signup","fields":[{"name":"email","type":"email","required":true},{"name":"plan","type":"enum","options":[{"value":"free"},{"value":"pro"}]}]}`)
	if !res.Success {
		t.Fatalf("validate: %v", res.Error)
	}
	out, err := RenderHTML(context.Background(), res.Data, map[string]any{"plan": "pro"})
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, want := range []string{"field-email", "field-plan", `value="pro"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
}

func TestStoreRoundTripThroughStorage(t *testing.T) {
	t.Parallel()

	provider, err := NewStorage(context.Background(), StorageConfig{Type: storage.TypeLocal})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	store := NewStore(provider)
	if err := store.AddField(model.FieldDefinition{Name: "title", Type: model.FieldTypeString}); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	id, err := store.Persist(context.Background(), "draft")
	if err != nil || id != "draft" {
		t.Fatalf("Persist() = %q, %v", id, err)
	}

	loaded, err := provider.Load(context.Background(), "draft")
	if err != nil || loaded == nil || len(loaded.Fields) != 1 {
		t.Fatalf("Load() = %+v, %v", loaded, err)
	}
	if form := NewForm(loaded); len(form.Fields()) != 1 {
		t.Fatalf("unexpected form fields %v", form.Fields())
	}
}

func TestEmbeddedTemplatesReadable(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(EmbeddedTemplates(), ".")
	if err != nil || len(entries) == 0 {
		t.Fatalf("ReadDir() = %v, %v", entries, err)
	}
}
