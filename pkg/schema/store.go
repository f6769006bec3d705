package schema

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

var (
	// ErrViewNotFound is returned by Load when the provider has no such view.
	ErrViewNotFound = errors.New("schema: view not found")
	// ErrNoProvider is returned by persistence methods on a store without storage.
	ErrNoProvider = errors.New("schema: storage provider not configured")
	// ErrFieldNotFound is returned when a field name is not in the schema.
	ErrFieldNotFound = errors.New("schema: field not found")
)

// State is the lifecycle of the schema held by a Store.
type State string

const (
	StateNone        State = "none"
	StateDraft       State = "draft"
	StateSaved       State = "saved"
	StateReloaded    State = "reloaded"
	StateOverwritten State = "overwritten"
)

// Listener observes schema replacements. It receives a copy.
type Listener func(schema *model.ViewSchema)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithProvider sets the storage provider used by Persist, Load, List and Delete.
func WithProvider(p storage.Provider) StoreOption {
	return func(s *Store) {
		s.provider = p
	}
}

// WithSchema seeds the store. The seeded schema starts as a draft.
func WithSchema(schema *model.ViewSchema) StoreOption {
	return func(s *Store) {
		if schema != nil {
			s.schema = schema.Clone()
			s.state = StateDraft
		}
	}
}

// WithIDGenerator overrides the id generator used when persisting without an id.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store holds the schema being edited. All mutations replace the schema
// wholesale and notify subscribers.
type Store struct {
	mu        sync.RWMutex
	schema    *model.ViewSchema
	state     State
	id        string
	provider  storage.Provider
	listeners map[int]Listener
	nextID    int
	newID     func() string
	logger    *slog.Logger
}

// NewStore returns an empty store.
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		schema:    &model.ViewSchema{Fields: []model.FieldDefinition{}},
		state:     StateNone,
		listeners: make(map[int]Listener),
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Schema returns a copy of the current schema.
func (s *Store) Schema() *model.ViewSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema.Clone()
}

// State reports the lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// ID returns the id the schema was last saved or loaded under.
func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Subscribe registers fn for schema changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	key := s.nextID
	s.nextID++
	s.listeners[key] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, key)
			s.mu.Unlock()
		})
	}
}

// Replace swaps the schema. Callers validate beforehand; Replace only
// rejects nil.
func (s *Store) Replace(schema *model.ViewSchema) error {
	if schema == nil {
		return errors.New("schema: nil schema")
	}
	next := schema.Clone()
	if next.Fields == nil {
		next.Fields = []model.FieldDefinition{}
	}
	s.commit(next, StateDraft, nil)
	return nil
}

// AddField appends field. Names must be unique.
func (s *Store) AddField(field model.FieldDefinition) error {
	if strings.TrimSpace(field.Name) == "" {
		return errors.New("schema: field name is required")
	}
	return s.mutate(func(next *model.ViewSchema) error {
		if next.IndexOf(field.Name) >= 0 {
			return fmt.Errorf("%w: %s", model.ErrDuplicateField, field.Name)
		}
		next.Fields = append(next.Fields, field.Clone())
		return nil
	})
}

// RemoveField deletes a field and its layout references.
func (s *Store) RemoveField(name string) error {
	return s.mutate(func(next *model.ViewSchema) error {
		i := next.IndexOf(name)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrFieldNotFound, name)
		}
		next.Fields = slices.Delete(next.Fields, i, i+1)
		if next.Layout != nil {
			for t := range next.Layout.Tabs {
				dropRefs(next.Layout.Tabs[t].Sections, name)
			}
			dropRefs(next.Layout.Sections, name)
		}
		return nil
	})
}

func dropRefs(sections []model.FormSection, name string) {
	for i := range sections {
		sections[i].Fields = slices.DeleteFunc(sections[i].Fields, func(ref string) bool { return ref == name })
	}
}

// MoveField moves the field at from to index to.
func (s *Store) MoveField(from, to int) error {
	return s.mutate(func(next *model.ViewSchema) error {
		n := len(next.Fields)
		if from < 0 || from >= n || to < 0 || to >= n {
			return fmt.Errorf("schema: move %d -> %d out of range (fields: %d)", from, to, n)
		}
		field := next.Fields[from]
		next.Fields = slices.Delete(next.Fields, from, from+1)
		next.Fields = slices.Insert(next.Fields, to, field)
		return nil
	})
}

func (s *Store) mutate(fn func(next *model.ViewSchema) error) error {
	s.mu.Lock()
	next := s.schema.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.commit(next, StateDraft, nil)
	return nil
}

func (s *Store) commit(schema *model.ViewSchema, state State, id *string) {
	s.mu.Lock()
	s.schema = schema
	s.state = state
	if id != nil {
		s.id = *id
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, key := range sortedKeys(s.listeners) {
		listeners = append(listeners, s.listeners[key])
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(schema.Clone())
	}
}

func sortedKeys(m map[int]Listener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Persist saves the current schema under id. An empty id reuses the id the
// schema was loaded or saved under, or generates a new one. The stored
// schema's ID is always the id used, which is returned. Saving over an existing view moves the store to StateOverwritten.
func (s *Store) Persist(ctx context.Context, id string) (string, error) {
	if s.provider == nil {
		return "", ErrNoProvider
	}
	s.mu.RLock()
	current := s.schema.Clone()
	if id == "" {
		id = s.id
	}
	s.mu.RUnlock()
	if id == "" {
		id = s.newID()
	}

	existing, err := s.provider.Load(ctx, id)
	if err != nil {
		return "", fmt.Errorf("schema: check view %s: %w", id, err)
	}
	current.ID = id
	if err := s.provider.Save(ctx, id, current); err != nil {
		return "", fmt.Errorf("schema: save view %s: %w", id, err)
	}

	state := StateSaved
	if existing != nil {
		state = StateOverwritten
	}
	s.logger.Info("view saved", "id", id, "state", state)

	s.mu.Lock()
	s.state = state
	s.id = id
	s.schema.ID = current.ID
	s.mu.Unlock()
	return id, nil
}

// Load replaces the schema with the stored view id.
func (s *Store) Load(ctx context.Context, id string) error {
	if s.provider == nil {
		return ErrNoProvider
	}
	schema, err := s.provider.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("schema: load view %s: %w", id, err)
	}
	if schema == nil {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}
	if schema.Fields == nil {
		schema.Fields = []model.FieldDefinition{}
	}
	s.commit(schema, StateReloaded, &id)
	return nil
}

// List returns the stored view ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	ids, err := s.provider.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema: list views: %w", err)
	}
	return ids, nil
}

// Delete removes a stored view. The in-memory schema is left untouched.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.provider == nil {
		return ErrNoProvider
	}
	if err := s.provider.Delete(ctx, id); err != nil {
		return fmt.Errorf("schema: delete view %s: %w", id, err)
	}
	return nil
}
