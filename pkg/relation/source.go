// Package relation implements the relation field: a debounced, searchable
// selector over an option source, plus the sources themselves and an HTTP
// handler that exposes a source as a JSON search endpoint.
package relation

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/google/uuid"
)

var (
	// ErrUnknownSource is returned when a field references an unregistered source.
	ErrUnknownSource = errors.New("relation: unknown source")
	// ErrCreateDisabled is returned by Create when the field cannot create options.
	ErrCreateDisabled = errors.New("relation: create not allowed")
	// ErrEmptyLabel is returned when creating an option without a label.
	ErrEmptyLabel = errors.New("relation: label is required")
	// ErrNotSelected is returned with a created option that could not be
	// selected, e.g. because MaxItems is reached or the option is disabled.
	ErrNotSelected = errors.New("relation: created option not selected")
)

// Source searches related records. Implementations must honour ctx
// cancellation; a cancelled search's results are discarded anyway.
type Source interface {
	Search(ctx context.Context, query string, limit int) ([]model.RelationOption, error)
}

// Creator creates a related record from a free-text label.
type Creator interface {
	Create(ctx context.Context, label string) (model.RelationOption, error)
}

// SourceFunc adapts a function into a Source.
type SourceFunc func(ctx context.Context, query string, limit int) ([]model.RelationOption, error)

func (fn SourceFunc) Search(ctx context.Context, query string, limit int) ([]model.RelationOption, error) {
	return fn(ctx, query, limit)
}

// CreatorFunc adapts a function into a Creator.
type CreatorFunc func(ctx context.Context, label string) (model.RelationOption, error)

func (fn CreatorFunc) Create(ctx context.Context, label string) (model.RelationOption, error) {
	return fn(ctx, label)
}

// StaticSource searches a fixed option list.
type StaticSource []model.RelationOption

func (s StaticSource) Search(ctx context.Context, query string, limit int) ([]model.RelationOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Filter(s, query, limit), nil
}

// MemorySource is a searchable, creatable in-process source. Created options
// receive a random UUID.
type MemorySource struct {
	mu      sync.RWMutex
	options []model.RelationOption
}

// NewMemorySource seeds a memory source.
func NewMemorySource(options ...model.RelationOption) *MemorySource {
	return &MemorySource{options: append([]model.RelationOption(nil), options...)}
}

func (m *MemorySource) Search(ctx context.Context, query string, limit int) ([]model.RelationOption, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Filter(m.options, query, limit), nil
}

func (m *MemorySource) Create(ctx context.Context, label string) (model.RelationOption, error) {
	if err := ctx.Err(); err != nil {
		return model.RelationOption{}, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return model.RelationOption{}, ErrEmptyLabel
	}
	opt := model.RelationOption{ID: uuid.NewString(), Label: label}
	m.mu.Lock()
	m.options = append(m.options, opt)
	m.mu.Unlock()
	return opt, nil
}

// Len returns the number of stored options.
func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.options)
}

// Filter returns options whose label or id contains query, case-insensitively.
// Prefix matches sort first and the original order breaks ties. An empty
// query returns the first limit options. limit <= 0 means no limit.
func Filter(options []model.RelationOption, query string, limit int) []model.RelationOption {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		out := append([]model.RelationOption{}, options...)
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	type match struct {
		opt      model.RelationOption
		isPrefix bool
	}
	matches := make([]match, 0, len(options))
	for _, opt := range options {
		label := strings.ToLower(opt.Label)
		id := strings.ToLower(opt.ID)
		if !strings.Contains(label, q) && !strings.Contains(id, q) {
			continue
		}
		matches = append(matches, match{opt: opt, isPrefix: strings.HasPrefix(label, q)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]model.RelationOption, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.opt)
	}
	return out
}
