// Package viewbuilder turns view schemas into forms. It re-exports the core
// types and wires the common pipeline: validate a schema, build an AutoForm,
// render it to HTML, and persist schemas through a storage provider.
package viewbuilder

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/render/html"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

// ViewSchema aliases model.ViewSchema.
type ViewSchema = model.ViewSchema

// FieldDefinition aliases model.FieldDefinition.
type FieldDefinition = model.FieldDefinition

// Form aliases autoform.Form.
type Form = autoform.Form

// StorageConfig aliases storage.Config.
type StorageConfig = storage.Config

// ValidationResult aliases schema.Result.
type ValidationResult = schema.Result

// NewForm builds an AutoForm over s.
func NewForm(s *ViewSchema, options ...autoform.Option) *Form {
	return autoform.FromSchema(s, options...)
}

// NewStore returns a schema store persisting through provider.
func NewStore(provider storage.Provider, options ...schema.StoreOption) *schema.Store {
	return schema.NewStore(append([]schema.StoreOption{schema.WithProvider(provider)}, options...)...)
}

// NewStorage builds the storage provider described by cfg.
func NewStorage(ctx context.Context, cfg StorageConfig) (storage.Provider, error) {
	return storage.New(ctx, cfg)
}

// Validate checks candidate (JSON text, decoded value or ViewSchema) without
// side effects.
func Validate(candidate any) ValidationResult {
	return schema.SafeValidate(candidate)
}

// RenderHTML renders s with the given initial values using the default
// renderer.
func RenderHTML(ctx context.Context, s *ViewSchema, values map[string]any, options ...autoform.Option) (string, error) {
	renderer, err := html.New()
	if err != nil {
		return "", fmt.Errorf("viewbuilder: renderer: %w", err)
	}
	form := NewForm(s, append([]autoform.Option{autoform.WithValues(values)}, options...)...)
	return renderer.Render(ctx, form)
}

// EmbeddedTemplates exposes the built-in component templates so callers can
// copy or override them.
func EmbeddedTemplates() fs.FS {
	return components.Templates()
}
