// Package importer derives view schemas from OpenAPI request bodies and bare
// JSON Schema documents.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

var (
	// ErrOperationNotFound is returned when operationID is not in the document.
	ErrOperationNotFound = errors.New("importer: operation not found")
	// ErrNoRequestSchema is returned when the operation has no request body schema.
	ErrNoRequestSchema = errors.New("importer: operation has no request body schema")
	// ErrNotObject is returned when the root schema has no properties.
	ErrNotObject = errors.New("importer: schema is not an object with properties")
)

// Option configures an import.
type Option func(*options)

type options struct {
	validate bool
	external bool
	media    []string
}

// WithValidation validates the OpenAPI document before importing.
func WithValidation(enabled bool) Option {
	return func(o *options) { o.validate = enabled }
}

// WithExternalRefs allows resolving $refs outside the document.
func WithExternalRefs(enabled bool) Option {
	return func(o *options) { o.external = enabled }
}

func newOptions(opts []Option) options {
	o := options{media: []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Operation summarises an importable operation.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

func load(ctx context.Context, raw []byte, o options) (*openapi3.T, error) {
	if len(raw) == 0 {
		return nil, errors.New("importer: document payload is empty")
	}
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: o.external}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("importer: load document: %w", err)
	}
	if o.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("importer: validate document: %w", err)
		}
	}
	return doc, nil
}

func operations(doc *openapi3.T) []Operation {
	var out []Operation
	if doc.Paths == nil {
		return out
	}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out = append(out, Operation{ID: id, Method: method, Path: path, Summary: op.Summary})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Operations lists the operations in an OpenAPI document. Operations without
// an operationId are named "<method>:<path>".
func Operations(ctx context.Context, raw []byte, opts ...Option) ([]Operation, error) {
	doc, err := load(ctx, raw, newOptions(opts))
	if err != nil {
		return nil, err
	}
	return operations(doc), nil
}

// FromOpenAPI converts the request body schema of operationID into a view
// schema. The schema id is the operation id and its title the summary.
func FromOpenAPI(ctx context.Context, raw []byte, operationID string, opts ...Option) (*model.ViewSchema, error) {
	o := newOptions(opts)
	doc, err := load(ctx, raw, o)
	if err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}

	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if id != operationID {
				continue
			}
			root := requestSchema(op.RequestBody, o.media)
			if root == nil {
				return nil, fmt.Errorf("%w: %s", ErrNoRequestSchema, operationID)
			}
			out, err := convertRoot(root)
			if err != nil {
				return nil, fmt.Errorf("importer: %s: %w", operationID, err)
			}
			out.ID = operationID
			if op.Summary != "" {
				out.Title = op.Summary
			}
			if op.Description != "" {
				out.Description = op.Description
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
}

// FromJSONSchema converts a JSON Schema object into a view schema.
func FromJSONSchema(raw []byte) (*model.ViewSchema, error) {
	var root openapi3.Schema
	if err := root.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("importer: decode json schema: %w", err)
	}
	out, err := convertRoot(&root)
	if err != nil {
		return nil, fmt.Errorf("importer: %w", err)
	}
	return out, nil
}

func requestSchema(body *openapi3.RequestBodyRef, media []string) *openapi3.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mt := range media {
		if entry, ok := content[mt]; ok && entry.Schema != nil {
			return entry.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if entry := content[k]; entry != nil && entry.Schema != nil {
			return entry.Schema.Value
		}
	}
	return nil
}
