package relation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// DefaultLimit bounds searches that do not specify a limit.
const DefaultLimit = 50

var _ autoform.OptionsResolver = (*Registry)(nil)

// Registry maps source names to sources. It resolves options for relation
// fields during form rendering.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
	limit   int
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source), limit: DefaultLimit}
}

// Register adds or replaces a named source.
func (r *Registry) Register(name string, src Source) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("relation: source name is required")
	}
	if src == nil {
		return fmt.Errorf("relation: source %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
	return nil
}

// Source returns a registered source.
func (r *Registry) Source(name string) (Source, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[strings.TrimSpace(name)]
	return src, ok
}

// Names returns registered source names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SourceFor returns the source backing field: the named source when the
// relation config references one, otherwise its inline options.
func (r *Registry) SourceFor(field model.FieldDefinition) (Source, error) {
	cfg := field.Relation
	if cfg == nil {
		return StaticSource(nil), nil
	}
	if strings.TrimSpace(cfg.Source) == "" {
		return StaticSource(cfg.Options), nil
	}
	src, ok := r.Source(cfg.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, cfg.Source)
	}
	return src, nil
}

// ResolveOptions searches the field's source.
func (r *Registry) ResolveOptions(ctx context.Context, field model.FieldDefinition, query string) ([]model.RelationOption, error) {
	src, err := r.SourceFor(field)
	if err != nil {
		return nil, err
	}
	limit := DefaultLimit
	if r != nil && r.limit > 0 {
		limit = r.limit
	}
	return src.Search(ctx, query, limit)
}
