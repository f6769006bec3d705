package importer

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

func loadPetstore(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/petstore.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return raw
}

func TestFromOpenAPI(t *testing.T) {
	t.Parallel()

	schema, err := FromOpenAPI(context.Background(), loadPetstore(t), "createPet", WithValidation(true))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if schema.ID != "createPet" || schema.Title != "Create pet" {
		t.Fatalf("unexpected schema header %q %q", schema.ID, schema.Title)
	}

	wantOrder := []string{"name", "species", "age", "birthday", "chip", "contact", "id", "meta", "notes", "owner", "photo", "tags", "vaccinated", "website"}
	if diff := cmp.Diff(wantOrder, schema.FieldNames()); diff != "" {
		t.Fatalf("unexpected field order (-want +got):\n%s", diff)
	}

	wantTypes := map[string]model.FieldType{
		"name":       model.FieldTypeString,
		"species":    model.FieldTypeEnum,
		"age":        model.FieldTypeNumber,
		"contact":    model.FieldTypeEmail,
		"website":    model.FieldTypeURL,
		"birthday":   model.FieldTypeDate,
		"photo":      model.FieldTypeFile,
		"notes":      model.FieldTypeText,
		"vaccinated": model.FieldTypeBoolean,
		"tags":       model.FieldTypeMultiSelect,
		"owner":      model.FieldTypeRelation,
		"id":         model.FieldTypeString,
		"meta":       model.FieldTypeJSON,
		"chip":       model.FieldTypePhone,
	}
	for name, want := range wantTypes {
		field, ok := schema.Field(name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		if field.Type != want {
			t.Fatalf("field %s: expected type %s, got %s", name, want, field.Type)
		}
	}

	name, _ := schema.Field("name")
	if !name.Required || name.Label != "Name" {
		t.Fatalf("unexpected name field %#v", name)
	}
	species, _ := schema.Field("species")
	if diff := cmp.Diff([]model.FieldOption{{Value: "dog", Label: "Dog"}, {Value: "cat", Label: "Cat"}}, species.Options); diff != "" {
		t.Fatalf("unexpected enum options (-want +got):\n%s", diff)
	}
	age, _ := schema.Field("age")
	if diff := cmp.Diff(map[string]any{"min": float64(0), "max": float64(40), "step": float64(1)}, age.Props); diff != "" {
		t.Fatalf("unexpected number props (-want +got):\n%s", diff)
	}
	owner, _ := schema.Field("owner")
	if owner.Relation == nil || owner.Relation.Source != "people" || !owner.Relation.AllowCreate {
		t.Fatalf("unexpected relation config %#v", owner.Relation)
	}
	id, _ := schema.Field("id")
	if !id.ReadOnly.StaticValue() {
		t.Fatalf("expected readOnly id field")
	}
	chip, _ := schema.Field("chip")
	if chip.Hidden.Expression() != "vaccinated != true" || chip.Props["component"] != "phone" {
		t.Fatalf("unexpected x-viewbuilder overrides %#v", chip)
	}
}

func TestFromOpenAPIErrors(t *testing.T) {
	t.Parallel()

	raw := loadPetstore(t)
	if _, err := FromOpenAPI(context.Background(), raw, "missing"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := FromOpenAPI(context.Background(), raw, "get:/pets"); !errors.Is(err, ErrNoRequestSchema) {
		t.Fatalf("expected ErrNoRequestSchema, got %v", err)
	}
	if _, err := FromOpenAPI(context.Background(), nil, "x"); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestOperations(t *testing.T) {
	t.Parallel()

	ops, err := Operations(context.Background(), loadPetstore(t))
	if err != nil {
		t.Fatalf("operations: %v", err)
	}
	var ids []string
	for _, op := range ops {
		ids = append(ids, op.ID)
	}
	if diff := cmp.Diff([]string{"createPet", "get:/pets"}, ids); diff != "" {
		t.Fatalf("unexpected operations (-want +got):\n%s", diff)
	}
}

func TestFromJSONSchema(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"title": "Signup",
		"type": "object",
		"required": ["email"],
		"properties": {
			"email": {"type": "string", "format": "email"},
			"password": {"type": "string", "format": "password"},
			"favorite": {"type": "string", "format": "color"},
			"mentors": {"type": "array", "maxItems": 2, "items": {"type": "string", "x-relation": "people"}}
		}
	}`)
	schema, err := FromJSONSchema(raw)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if schema.Title != "Signup" {
		t.Fatalf("unexpected title %q", schema.Title)
	}
	email, _ := schema.Field("email")
	if email.Type != model.FieldTypeEmail || !email.Required {
		t.Fatalf("unexpected email field %#v", email)
	}
	mentors, _ := schema.Field("mentors")
	want := &model.RelationConfig{Source: "people", Multiple: true, MaxItems: 2}
	if diff := cmp.Diff(want, mentors.Relation); diff != "" {
		t.Fatalf("unexpected relation (-want +got):\n%s", diff)
	}

	if _, err := FromJSONSchema([]byte(`{"type":"string"}`)); !errors.Is(err, ErrNotObject) {
		t.Fatalf("expected ErrNotObject, got %v", err)
	}
}
