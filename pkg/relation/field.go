package relation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// DefaultDebounce is the delay between the last keystroke and the fetch.
const DefaultDebounce = 300 * time.Millisecond

// State is the search state of a relation field.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StatePopulated State = "populated"
	StateEmpty     State = "empty"
)

// ChangeFunc receives the new field value: a string id (or nil) for single
// selection, a []string for multiple selection.
type ChangeFunc func(value any)

// FieldOption configures a Field.
type FieldOption func(*Field)

// WithDebounce overrides the search debounce. Zero or negative values keep
// the configured default.
func WithDebounce(d time.Duration) FieldOption {
	return func(f *Field) {
		if d > 0 {
			f.debounce = d
		}
	}
}

// WithLimit bounds the number of options requested per search.
func WithLimit(limit int) FieldOption {
	return func(f *Field) {
		if limit > 0 {
			f.limit = limit
		}
	}
}

// WithCreator enables Create when the relation config allows it.
func WithCreator(c Creator) FieldOption {
	return func(f *Field) {
		f.creator = c
	}
}

// WithChangeHandler registers the value change callback.
func WithChangeHandler(fn ChangeFunc) FieldOption {
	return func(f *Field) {
		f.onChange = fn
	}
}

// WithDisabled disables selection.
func WithDisabled(disabled bool) FieldOption {
	return func(f *Field) {
		f.disabled = disabled
	}
}

// WithLogger sets the logger for fetch failures.
func WithLogger(logger *slog.Logger) FieldOption {
	return func(f *Field) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// Field is the controlled state of one relation input. Searches are debounced;
// when the timer fires any in-flight fetch is cancelled and a new one starts,
// and responses from superseded fetches are dropped.
type Field struct {
	mu sync.Mutex

	def      model.FieldDefinition
	cfg      model.RelationConfig
	source   Source
	creator  Creator
	onChange ChangeFunc
	logger   *slog.Logger
	debounce time.Duration
	limit    int
	disabled bool

	state   State
	query   string
	options []model.RelationOption
	value   []string
	open    bool

	timer  *time.Timer
	cancel context.CancelFunc
	gen    uint64
	closed bool
	ctx    context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
}

// NewField builds the state for field, searching source.
func NewField(field model.FieldDefinition, source Source, options ...FieldOption) *Field {
	cfg := model.RelationConfig{}
	if field.Relation != nil {
		cfg = *field.Relation
	}
	if source == nil {
		source = StaticSource(cfg.Options)
	}
	ctx, stop := context.WithCancel(context.Background())
	f := &Field{
		def:      field,
		cfg:      cfg,
		source:   source,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
		limit:    DefaultLimit,
		state:    StateIdle,
		options:  append([]model.RelationOption(nil), cfg.Options...),
		ctx:      ctx,
		stop:     stop,
	}
	if cfg.DebounceMs > 0 {
		f.debounce = time.Duration(cfg.DebounceMs) * time.Millisecond
	}
	if c, ok := source.(Creator); ok {
		f.creator = c
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Search records the query and re-arms the debounce timer.
func (f *Field) Search(query string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.query = query
	f.open = true
	f.disarmLocked()
	f.wg.Add(1)
	f.timer = time.AfterFunc(f.debounce, f.fire)
}

// Refresh fetches immediately with the current query, bypassing the debounce.
func (f *Field) Refresh() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.disarmLocked()
	f.wg.Add(1)
	f.mu.Unlock()
	f.fire()
}

func (f *Field) disarmLocked() {
	if f.timer != nil && f.timer.Stop() {
		f.wg.Done()
	}
	f.timer = nil
}

func (f *Field) fire() {
	defer f.wg.Done()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	ctx, cancel := context.WithCancel(f.ctx)
	f.cancel = cancel
	f.state = StateSearching
	query, limit, source := f.query, f.limit, f.source
	f.mu.Unlock()

	results, err := source.Search(ctx, query, limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	cancel()
	if gen != f.gen || f.closed {
		return
	}
	f.cancel = nil
	if err != nil {
		f.logger.Error("Error fetching relation options", "field", f.def.Name, "query", query, "error", err)
	} else {
		f.options = results
	}
	f.state = StateEmpty
	if len(f.options) > 0 {
		f.state = StatePopulated
	}
}

// Wait blocks until pending searches have run.
func (f *Field) Wait() {
	f.wg.Wait()
}

// Close stops the debounce timer, cancels the in-flight fetch and waits for
// it to return.
func (f *Field) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.disarmLocked()
	f.stop()
	f.mu.Unlock()
	f.wg.Wait()
}

// State reports the search state.
func (f *Field) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Query returns the current search text.
func (f *Field) Query() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

// Options returns the current option list.
func (f *Field) Options() []model.RelationOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RelationOption(nil), f.options...)
}

// IsOpen reports whether the dropdown is open.
func (f *Field) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// SetOpen opens or closes the dropdown.
func (f *Field) SetOpen(open bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = open && !f.disabled
}

// Placeholder returns the configured placeholder or the default one.
func (f *Field) Placeholder() string {
	if p := strings.TrimSpace(f.cfg.Placeholder); p != "" {
		return p
	}
	if p := strings.TrimSpace(f.def.Placeholder); p != "" {
		return p
	}
	return components.DefaultRelationPlaceholder
}

// EmptyMessage returns the message shown when a search has no results.
func (f *Field) EmptyMessage() string {
	if m := strings.TrimSpace(f.cfg.EmptyMessage); m != "" {
		return m
	}
	return components.DefaultRelationEmptyMessage
}

// Value returns the selection: a string id or nil for single selection, a
// []string for multiple selection.
func (f *Field) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.valueLocked()
}

func (f *Field) valueLocked() any {
	if f.cfg.Multiple {
		return append([]string{}, f.value...)
	}
	if len(f.value) == 0 {
		return nil
	}
	return f.value[0]
}

// Selected returns the selected options that are present in the option list.
func (f *Field) Selected() []model.RelationOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.RelationOption, 0, len(f.value))
	for _, id := range f.value {
		if opt, ok := model.FindOption(f.options, id); ok {
			out = append(out, opt)
		}
	}
	return out
}

// SetValue replaces the selection from a controlled value. Accepts nil, a
// string id, []string or []any.
func (f *Field) SetValue(v any) {
	ids := components.StringList(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.cfg.Multiple && len(ids) > 1 {
		ids = ids[:1]
	}
	f.value = ids
}

// Select applies option to the selection. Single selection replaces the value
// and closes the dropdown; multiple selection toggles membership. Selecting a
// new option beyond MaxItems, a disabled option, or any option on a disabled
// field does nothing. It reports whether the value changed.
func (f *Field) Select(option model.RelationOption) bool {
	f.mu.Lock()
	if f.disabled || option.Disabled || option.ID == "" {
		f.mu.Unlock()
		return false
	}
	if f.cfg.Multiple {
		if i := slices.Index(f.value, option.ID); i >= 0 {
			f.value = slices.Delete(slices.Clone(f.value), i, i+1)
		} else {
			if f.cfg.MaxItems > 0 && len(f.value) >= f.cfg.MaxItems {
				f.mu.Unlock()
				return false
			}
			f.value = append(slices.Clone(f.value), option.ID)
		}
	} else {
		f.value = []string{option.ID}
		f.open = false
	}
	value := f.valueLocked()
	f.mu.Unlock()

	f.notify(value)
	return true
}

// Remove drops id from the selection.
func (f *Field) Remove(id string) bool {
	f.mu.Lock()
	i := slices.Index(f.value, id)
	if f.disabled || i < 0 {
		f.mu.Unlock()
		return false
	}
	f.value = slices.Delete(slices.Clone(f.value), i, i+1)
	value := f.valueLocked()
	f.mu.Unlock()

	f.notify(value)
	return true
}

// Create asks the creator for a new option labelled label, appends it to the
// option list and selects it. When the option cannot be selected it is still
// returned, together with ErrNotSelected.
func (f *Field) Create(ctx context.Context, label string) (model.RelationOption, error) {
	f.mu.Lock()
	creator, allowed, disabled := f.creator, f.cfg.AllowCreate, f.disabled
	f.mu.Unlock()
	if !allowed || creator == nil || disabled {
		return model.RelationOption{}, ErrCreateDisabled
	}

	opt, err := creator.Create(ctx, label)
	if err != nil {
		f.logger.Error("Error creating relation option", "field", f.def.Name, "label", label, "error", err)
		return model.RelationOption{}, fmt.Errorf("relation: create %q: %w", label, err)
	}

	f.mu.Lock()
	f.options = append(f.options, opt)
	f.state = StatePopulated
	f.mu.Unlock()

	if !f.Select(opt) {
		return opt, ErrNotSelected
	}
	return opt, nil
}

func (f *Field) notify(value any) {
	if f.onChange != nil {
		f.onChange(value)
	}
}
