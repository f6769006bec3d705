// Package editor keeps a JSON text buffer in sync with a schema store. Edits
// are parsed speculatively and only reach the store through Apply, after the
// text both parses and validates.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
)

// ValidationError is returned by Apply when the buffer parses but is not a
// valid schema.
type ValidationError struct {
	Issues []schema.Issue
	err    error
}

func (e *ValidationError) Error() string {
	return "Schema validation failed: " + e.err.Error()
}

func (e *ValidationError) Unwrap() error { return e.err }

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Editor is the JSON view of a schema store.
type Editor struct {
	mu          sync.Mutex
	store       *schema.Store
	text        string
	dirty       bool
	err         error
	unsubscribe func()
	logger      *slog.Logger
}

// New binds an editor to store. Store changes made elsewhere replace the
// buffer and clear the dirty flag.
func New(store *schema.Store, options ...Option) *Editor {
	e := &Editor{store: store, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	e.sync(store.Schema())
	e.unsubscribe = store.Subscribe(e.sync)
	return e
}

// Close stops following the store.
func (e *Editor) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}

func (e *Editor) sync(s *model.ViewSchema) {
	text, err := Serialize(s)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.logger.Error("failed to serialise schema", "error", err)
		e.err = err
		return
	}
	e.text = text
	e.dirty = false
	e.err = nil
}

// Text returns the buffer.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text
}

// Dirty reports whether the buffer differs from the last sync.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Err returns the current parse or validation error, if any.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Edit replaces the buffer and marks it dirty. The text is parsed
// speculatively so syntax errors surface immediately; the store is not
// touched.
func (e *Editor) Edit(text string) error {
	_, err := parse(text)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text = text
	e.dirty = true
	e.err = err
	return err
}

// Apply parses and validates the buffer and, on success, replaces the store.
// On failure the store is left untouched and the error is kept on the editor.
func (e *Editor) Apply() error {
	e.mu.Lock()
	text := e.text
	e.mu.Unlock()

	value, err := parse(text)
	if err == nil {
		res := schema.SafeValidate(value)
		if res.Success {
			// Replace re-syncs the buffer through the subscription.
			if err = e.store.Replace(res.Data); err == nil {
				return nil
			}
		} else {
			err = &ValidationError{Issues: res.Issues, err: res.Error}
		}
	}

	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	return err
}

// Reset discards the buffer and re-serialises the store.
func (e *Editor) Reset() {
	e.sync(e.store.Schema())
}

// Serialize renders s as two-space indented JSON.
func Serialize(s *model.ViewSchema) (string, error) {
	if s == nil {
		return "", errors.New("editor: nil schema")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("editor: serialise schema: %w", err)
	}
	return string(data), nil
}

// Parse decodes text into a schema without validating it.
func Parse(text string) (*model.ViewSchema, error) {
	if _, err := parse(text); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		text = "{}"
	}
	var s model.ViewSchema
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	return &s, nil
}

// parse checks JSON syntax. An empty buffer is treated as an empty object.
func parse(text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return json.RawMessage("{}"), nil
	}
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	return raw, nil
}
