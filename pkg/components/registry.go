package components

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/render/template"
)

// FallbackComponent renders fields whose type has no registered component.
const FallbackComponent = "string"

// Renderer writes a component's markup into buf.
type Renderer func(buf *bytes.Buffer, props Props, data RenderData) error

// Normalizer coerces a raw value into the component's canonical value. A
// *FieldError reports user-facing validation failures.
type Normalizer func(field model.FieldDefinition, value any) (any, error)

// RenderData carries shared helpers for component renderers.
type RenderData struct {
	Template template.Renderer
}

// Descriptor bundles a component's renderer and normaliser.
type Descriptor struct {
	Name      string
	Renderer  Renderer
	Normalize Normalizer
}

// Matcher decides whether a component should handle field regardless of its
// declared type.
type Matcher func(field model.FieldDefinition) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry maps field types to components. Resolution order:
//  1. an explicit "component" (or "widget") prop naming a registered component
//  2. matchers, higher priority first, ties by registration order
//  3. the type table
//  4. the fallback component
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
	types      map[model.FieldType]string
	rules      []rule
	fallback   string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
		types:      make(map[model.FieldType]string),
		fallback:   FallbackComponent,
	}
}

// NewDefault creates a registry with the built-in components and type table.
func NewDefault() *Registry {
	r := New()
	registerBuiltins(r)
	return r
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := New()
	for name, d := range r.components {
		out.components[name] = d
	}
	for t, name := range r.types {
		out.types[t] = name
	}
	out.rules = append(out.rules, r.rules...)
	out.fallback = r.fallback
	return out
}

// Register adds or replaces a component.
func (r *Registry) Register(name string, d Descriptor) error {
	if name = normalize(name); name == "" {
		return fmt.Errorf("components: component name is required")
	}
	if d.Renderer == nil {
		return fmt.Errorf("components: renderer for %q is nil", name)
	}
	if d.Normalize == nil {
		d.Normalize = normalizeString
	}
	d.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = d
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(name string, d Descriptor) {
	if err := r.Register(name, d); err != nil {
		panic(err)
	}
}

// MapType routes a field type to a registered component name.
func (r *Registry) MapType(t model.FieldType, component string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Normalize()] = normalize(component)
}

// SetFallback changes the component used for unknown types.
func (r *Registry) SetFallback(component string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name := normalize(component); name != "" {
		r.fallback = name
	}
}

// Match registers a matcher. Higher priority values take precedence.
func (r *Registry) Match(component string, priority int, matcher Matcher) {
	name := normalize(component)
	if matcher == nil || name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{name: name, priority: priority, match: matcher, order: len(r.rules)})
}

// Descriptor fetches a component by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.components[normalize(name)]
	return d, ok
}

// Names returns sorted component names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolve returns the component for field. It never fails: unknown types use
// the fallback component.
func (r *Registry) Resolve(field model.FieldDefinition) Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name := explicitComponent(field); name != "" {
		if d, ok := r.components[name]; ok {
			return d
		}
	}

	if len(r.rules) > 0 {
		rules := make([]rule, len(r.rules))
		copy(rules, r.rules)
		sort.SliceStable(rules, func(i, j int) bool {
			if rules[i].priority == rules[j].priority {
				return rules[i].order < rules[j].order
			}
			return rules[i].priority > rules[j].priority
		})
		for _, candidate := range rules {
			if d, ok := r.components[candidate.name]; ok && candidate.match(field) {
				return d
			}
		}
	}

	if name, ok := r.types[field.Type.Normalize()]; ok {
		if d, ok := r.components[name]; ok {
			return d
		}
	}
	return r.components[r.fallback]
}

// Render resolves and renders field's component with props.
func (r *Registry) Render(field model.FieldDefinition, props Props, data RenderData) (string, error) {
	d := r.Resolve(field)
	if d.Renderer == nil {
		return "", fmt.Errorf("components: no component for field %q", field.Name)
	}
	var buf bytes.Buffer
	if err := d.Renderer(&buf, props, data); err != nil {
		return "", fmt.Errorf("components: render %s (%s): %w", field.Name, d.Name, err)
	}
	return buf.String(), nil
}

// Normalize resolves field's component and normalises value through it.
func (r *Registry) Normalize(field model.FieldDefinition, value any) (any, error) {
	d := r.Resolve(field)
	if d.Normalize == nil {
		return value, nil
	}
	return d.Normalize(field, value)
}

func explicitComponent(field model.FieldDefinition) string {
	for _, key := range []string{"component", "widget"} {
		if v, ok := field.Prop(key); ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return normalize(s)
			}
		}
	}
	return ""
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
