package i18n

import "strings"

// Form chrome keys.
const (
	KeySubmit     = "form.submit"
	KeySubmitting = "form.submitting"
	KeyReset      = "form.reset"
)

func FieldLabelKey(name string) string       { return "fields." + name + ".label" }
func FieldDescriptionKey(name string) string { return "fields." + name + ".description" }
func FieldPlaceholderKey(name string) string { return "fields." + name + ".placeholder" }

// FieldErrorKey builds fields.<name>.errors.<code>.
func FieldErrorKey(name, code string) string { return "fields." + name + ".errors." + code }

// SectionKey builds form.sections.<title>.
func SectionKey(title string) string { return "form.sections." + strings.TrimSpace(title) }

// TabKey builds form.tabs.<title>.
func TabKey(title string) string { return "form.tabs." + strings.TrimSpace(title) }
