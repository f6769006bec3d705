// Package autoform orchestrates a form: it walks the field list, applies
// hidden and read-only predicates against the current value map, resolves
// components through the field component map and arranges the result into
// tabs or sections. Form state (values, errors, submitting, active tab) lives
// on the Form and every mutation goes through its methods.
package autoform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/i18n"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/predicate"
)

var (
	// ErrSubmitting is returned by Submit while a submission is in flight.
	ErrSubmitting = errors.New("autoform: submission in progress")
	// ErrUnknownField is returned when changing a field the form does not declare.
	ErrUnknownField = errors.New("autoform: unknown field")
	// ErrFieldDisabled is returned when changing a hidden or read-only field.
	ErrFieldDisabled = errors.New("autoform: field is not editable")
	// ErrInvalid is returned by Submit when validation blocks submission.
	ErrInvalid = errors.New("autoform: form has validation errors")
)

// FieldErrors is a submit error carrying messages keyed by field path.
type FieldErrors map[string][]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "autoform: field errors: " + strings.Join(keys, ", ")
}

type labels struct {
	submit     string
	submitting string
	reset      string
}

// Form holds the state of one rendered form.
type Form struct {
	mu sync.RWMutex

	fields     []model.FieldDefinition
	layout     *model.Layout
	values     map[string]any
	errs       map[string][]string
	formErrs   []string
	submitting bool
	readOnly   bool
	activeTab  int

	registry         *components.Registry
	evaluator        *predicate.Evaluator
	translator       i18n.Translator
	locale           string
	onMissing        i18n.MissingHandler
	onSubmit         SubmitFunc
	onChange         ChangeFunc
	relations        OptionsResolver
	validateOnSubmit bool
	labels           labels
	showReset        bool
	logger           *slog.Logger
}

// New constructs a form over fields.
func New(fields []model.FieldDefinition, options ...Option) *Form {
	f := &Form{
		fields:    append([]model.FieldDefinition(nil), fields...),
		values:    map[string]any{},
		errs:      map[string][]string{},
		registry:  components.NewDefault(),
		evaluator: predicate.Default(),
		labels:    labels{submit: "Submit", submitting: "Submitting...", reset: "Reset"},
		showReset: true,
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// FromSchema constructs a form from a view schema's fields and layout.
func FromSchema(schema *model.ViewSchema, options ...Option) *Form {
	if schema == nil {
		return New(nil, options...)
	}
	return New(schema.Fields, append([]Option{WithLayout(schema.Layout)}, options...)...)
}

// Fields returns the field definitions.
func (f *Form) Fields() []model.FieldDefinition {
	return append([]model.FieldDefinition(nil), f.fields...)
}

// Registry returns the component registry in use.
func (f *Form) Registry() *components.Registry { return f.registry }

// Values returns a copy of the value map.
func (f *Form) Values() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return model.CloneValues(f.values)
}

// Value returns a single value.
func (f *Form) Value(name string) (any, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[name]
	return v, ok
}

// SetValues replaces the whole value map.
func (f *Form) SetValues(values map[string]any) {
	f.mu.Lock()
	f.values = model.CloneValues(values)
	snapshot := model.CloneValues(f.values)
	f.mu.Unlock()
	f.notify(snapshot)
}

// Change writes value under name after normalising it through the field's
// component. Normalisation failures keep the raw value, record the message as
// the field error and return the *components.FieldError.
func (f *Form) Change(name string, value any) error {
	field, ok := f.field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	f.mu.Lock()
	state := f.fieldStateLocked(field)
	if state.hidden || state.disabled {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrFieldDisabled, name)
	}

	normalized, err := f.registry.Normalize(field, value)
	var fieldErr *components.FieldError
	switch {
	case err == nil:
		f.values[name] = normalized
		delete(f.errs, name)
	case errors.As(err, &fieldErr):
		f.values[name] = value
		f.errs[name] = []string{f.errorMessage(field, fieldErr)}
	default:
		f.mu.Unlock()
		return err
	}
	snapshot := model.CloneValues(f.values)
	f.mu.Unlock()

	f.notify(snapshot)
	return err
}

// Reset clears the entire value map.
func (f *Form) Reset() {
	f.SetValues(map[string]any{})
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.submitting
}

// SetSubmitting sets the submitting flag, e.g. when the caller drives the
// submission itself.
func (f *Form) SetSubmitting(submitting bool) {
	f.mu.Lock()
	f.submitting = submitting
	f.mu.Unlock()
}

// Submit hands the visible values to the submit handler. It is a no-op
// returning ErrSubmitting while another submission is running.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	if f.validateOnSubmit {
		if errs := f.validateLocked(); len(errs) > 0 {
			f.setErrorsLocked(errs)
			f.mu.Unlock()
			return ErrInvalid
		}
	}
	f.submitting = true
	values := f.visibleValuesLocked()
	handler := f.onSubmit
	f.mu.Unlock()

	var err error
	if handler != nil {
		err = handler(ctx, values)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		mapping := MapErrors(f.fields, fieldErrs)
		f.setErrorsLocked(mapping.Fields)
		f.formErrs = mapping.Form
	}
	return err
}

// ActiveTab returns the active tab index.
func (f *Form) ActiveTab() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.activeTab
}

// SelectTab activates tab i. Out of range indexes are ignored.
func (f *Form) SelectTab(i int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.layout.Mode() != model.LayoutTabs || i < 0 || i >= len(f.layout.Tabs) {
		return false
	}
	f.activeTab = i
	return true
}

// Errors returns a copy of the per-field errors.
func (f *Form) Errors() map[string][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string][]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// FormErrors returns form-level error messages.
func (f *Form) FormErrors() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.formErrs...)
}

// SetErrors replaces the per-field errors. Keys that do not match a field
// become form-level errors.
func (f *Form) SetErrors(errs map[string][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	mapping := MapErrors(f.fields, errs)
	f.setErrorsLocked(mapping.Fields)
	f.formErrs = mapping.Form
}

// VisibleValues returns the entries of the value map whose field is declared
// and currently visible.
func (f *Form) VisibleValues() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.visibleValuesLocked()
}

// Validate checks required fields and component normalisation for every
// visible, editable field. It does not modify form state.
func (f *Form) Validate() map[string][]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() map[string][]string {
	out := map[string][]string{}
	for _, field := range f.fields {
		state := f.fieldStateLocked(field)
		if state.hidden || state.readOnly {
			continue
		}
		value, present := f.values[field.Name]
		if !present || components.IsEmpty(value) {
			if field.Required {
				out[field.Name] = []string{f.errorMessage(field, &components.FieldError{
					Code:    components.CodeRequired,
					Message: "This field is required",
				})}
			}
			continue
		}
		if _, err := f.registry.Normalize(field, value); err != nil {
			var fieldErr *components.FieldError
			if !errors.As(err, &fieldErr) {
				fieldErr = &components.FieldError{Code: "invalid", Message: err.Error()}
			}
			out[field.Name] = []string{f.errorMessage(field, fieldErr)}
		}
	}
	return out
}

func (f *Form) visibleValuesLocked() map[string]any {
	out := make(map[string]any)
	for _, field := range f.fields {
		if f.fieldStateLocked(field).hidden {
			continue
		}
		if v, ok := f.values[field.Name]; ok {
			out[field.Name] = v
		}
	}
	return model.CloneValues(out)
}

func (f *Form) setErrorsLocked(errs map[string][]string) {
	f.errs = make(map[string][]string, len(errs))
	for k, v := range errs {
		if msgs := normalizeMessages(v); len(msgs) > 0 {
			f.errs[k] = msgs
		}
	}
}

func (f *Form) field(name string) (model.FieldDefinition, bool) {
	for _, field := range f.fields {
		if field.Name == name {
			return field, true
		}
	}
	return model.FieldDefinition{}, false
}

func (f *Form) notify(values map[string]any) {
	if f.onChange != nil {
		f.onChange(values)
	}
}

func (f *Form) errorMessage(field model.FieldDefinition, fe *components.FieldError) string {
	return f.t(i18n.FieldErrorKey(field.Name, fe.Code), fe.Message)
}

func (f *Form) t(key, fallback string) string {
	if f.translator == nil && f.onMissing == nil {
		return fallback
	}
	out := i18n.T(f.translator, f.locale, key, fallback, f.onMissing)
	if out == key && fallback == "" {
		return ""
	}
	return out
}

type fieldState struct {
	hidden   bool
	readOnly bool
	disabled bool
}

// fieldStateLocked evaluates predicates against the current values. Evaluation
// errors are logged and treated as false so a broken expression never hides
// data or locks a field.
func (f *Form) fieldStateLocked(field model.FieldDefinition) fieldState {
	hidden, err := f.evaluator.Eval(field.Hidden, f.values)
	if err != nil {
		f.logger.Warn("hidden predicate failed", "field", field.Name, "error", err)
		hidden = false
	}
	readOnly, err := f.evaluator.Eval(field.ReadOnly, f.values)
	if err != nil {
		f.logger.Warn("readOnly predicate failed", "field", field.Name, "error", err)
		readOnly = false
	}
	return fieldState{
		hidden:   hidden,
		readOnly: readOnly,
		disabled: readOnly || f.readOnly || f.submitting,
	}
}
