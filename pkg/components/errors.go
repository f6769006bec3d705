package components

import "fmt"

// Error codes reported by built-in normalisers. Codes double as translation
// keys: fields.<name>.errors.<code>.
const (
	CodeRequired      = "required"
	CodeInvalidNumber = "invalid_number"
	CodeInvalidDate   = "invalid_date"
	CodeInvalidOption = "invalid_option"
	CodeInvalidJSON   = "invalid_json"
	CodeInvalidColor  = "invalid_color"
	CodeInvalidEmail  = "invalid_email"
	CodeInvalidURL    = "invalid_url"
	CodeTooMany       = "too_many"
)

// FieldError is a user-facing validation failure for a single value.
type FieldError struct {
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func fieldErr(code, format string, args ...any) *FieldError {
	return &FieldError{Code: code, Message: fmt.Sprintf(format, args...)}
}
