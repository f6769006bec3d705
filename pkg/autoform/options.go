package autoform

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/i18n"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/predicate"
)

// SubmitFunc receives the visible values when the form is submitted. Returning
// FieldErrors attaches the messages to the form.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// ChangeFunc observes every value map replacement.
type ChangeFunc func(values map[string]any)

// OptionsResolver supplies relation options for a field. Implementations live
// in pkg/relation.
type OptionsResolver interface {
	ResolveOptions(ctx context.Context, field model.FieldDefinition, query string) ([]model.RelationOption, error)
}

// Option configures a Form.
type Option func(*Form)

// WithLayout arranges fields into tabs or sections.
func WithLayout(layout *model.Layout) Option {
	return func(f *Form) {
		f.layout = layout
	}
}

// WithValues seeds the value map.
func WithValues(values map[string]any) Option {
	return func(f *Form) {
		f.values = model.CloneValues(values)
	}
}

// WithErrors seeds per-field errors.
func WithErrors(errs map[string][]string) Option {
	return func(f *Form) {
		f.setErrorsLocked(errs)
	}
}

// WithReadOnly disables every field.
func WithReadOnly(readOnly bool) Option {
	return func(f *Form) {
		f.readOnly = readOnly
	}
}

// WithSubmitting marks the form as submitting.
func WithSubmitting(submitting bool) Option {
	return func(f *Form) {
		f.submitting = submitting
	}
}

// WithRegistry overrides the component registry.
func WithRegistry(reg *components.Registry) Option {
	return func(f *Form) {
		if reg != nil {
			f.registry = reg
		}
	}
}

// WithEvaluator overrides the predicate evaluator.
func WithEvaluator(eval *predicate.Evaluator) Option {
	return func(f *Form) {
		if eval != nil {
			f.evaluator = eval
		}
	}
}

// WithTranslator enables translated labels for locale.
func WithTranslator(t i18n.Translator, locale string) Option {
	return func(f *Form) {
		f.translator = t
		f.locale = locale
	}
}

// WithMissingTranslation customises missing key handling.
func WithMissingTranslation(handler i18n.MissingHandler) Option {
	return func(f *Form) {
		f.onMissing = handler
	}
}

// WithSubmitHandler sets the submit callback.
func WithSubmitHandler(fn SubmitFunc) Option {
	return func(f *Form) {
		f.onSubmit = fn
	}
}

// WithChangeHandler sets the change callback.
func WithChangeHandler(fn ChangeFunc) Option {
	return func(f *Form) {
		f.onChange = fn
	}
}

// WithRelations sets the resolver used for relation field options.
func WithRelations(resolver OptionsResolver) Option {
	return func(f *Form) {
		f.relations = resolver
	}
}

// WithValidateOnSubmit runs Validate before calling the submit handler and
// blocks submission when it reports errors.
func WithValidateOnSubmit(enabled bool) Option {
	return func(f *Form) {
		f.validateOnSubmit = enabled
	}
}

// WithLabels overrides the default button labels.
func WithLabels(submit, submitting, reset string) Option {
	return func(f *Form) {
		if submit != "" {
			f.labels.submit = submit
		}
		if submitting != "" {
			f.labels.submitting = submitting
		}
		if reset != "" {
			f.labels.reset = reset
		}
	}
}

// WithShowReset toggles the reset button.
func WithShowReset(show bool) Option {
	return func(f *Form) {
		f.showReset = show
	}
}

// WithLogger sets the logger used for predicate and relation failures.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}
