package components

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// IsEmpty reports whether a value counts as missing for required checks.
func IsEmpty(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	default:
		return false
	}
}

func normalizeString(_ model.FieldDefinition, value any) (any, error) {
	return stringValue(value), nil
}

func normalizeNumber(field model.FieldDefinition, value any) (any, error) {
	if IsEmpty(value) {
		return nil, nil
	}
	f, ok := toFloat(value)
	if !ok {
		return nil, fieldErr(CodeInvalidNumber, "Must be a number")
	}
	min, hasMin, max, hasMax := numberBounds(field)
	if hasMin && f < min {
		f = min
	}
	if hasMax && f > max {
		f = max
	}
	return f, nil
}

// numberBounds returns the min and max props. Sliders default to 0..100.
func numberBounds(field model.FieldDefinition) (min float64, hasMin bool, max float64, hasMax bool) {
	if v, ok := field.Prop("slider"); ok {
		if slider, _ := toBool(v); slider {
			min, hasMin, max, hasMax = 0, true, 100, true
		}
	}
	if v, ok := field.Prop("min"); ok {
		if f, ok := toFloat(v); ok {
			min, hasMin = f, true
		}
	}
	if v, ok := field.Prop("max"); ok {
		if f, ok := toFloat(v); ok {
			max, hasMax = f, true
		}
	}
	return min, hasMin, max, hasMax
}

func normalizeBool(_ model.FieldDefinition, value any) (any, error) {
	b, _ := toBool(value)
	return b, nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"}

func normalizeDate(_ model.FieldDefinition, value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v.Format("2006-01-02"), nil
	case nil:
		return nil, nil
	}
	raw := strings.TrimSpace(stringValue(value))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return nil, fieldErr(CodeInvalidDate, "Invalid date")
}

func normalizeEnum(field model.FieldDefinition, value any) (any, error) {
	raw := strings.TrimSpace(stringValue(value))
	if raw == "" {
		return nil, nil
	}
	if len(field.Options) > 0 && !hasOption(field.Options, raw) {
		return nil, fieldErr(CodeInvalidOption, "Invalid option %q", raw)
	}
	return raw, nil
}

func normalizeMulti(field model.FieldDefinition, value any) (any, error) {
	values := StringList(value)
	for _, v := range values {
		if len(field.Options) > 0 && !hasOption(field.Options, v) {
			return nil, fieldErr(CodeInvalidOption, "Invalid option %q", v)
		}
	}
	return values, nil
}

func normalizeRelation(field model.FieldDefinition, value any) (any, error) {
	if field.Relation != nil && field.Relation.Multiple {
		ids := StringList(value)
		if max := field.Relation.MaxItems; max > 0 && len(ids) > max {
			return nil, fieldErr(CodeTooMany, "Select at most %d items", max)
		}
		return ids, nil
	}
	raw := strings.TrimSpace(stringValue(value))
	if raw == "" {
		return nil, nil
	}
	return raw, nil
}

func normalizeFile(field model.FieldDefinition, value any) (any, error) {
	names := StringList(value)
	if len(names) == 0 {
		return nil, nil
	}
	if v, ok := field.Prop("multiple"); ok && v == true {
		return names, nil
	}
	return names[0], nil
}

func normalizeRichText(_ model.FieldDefinition, value any) (any, error) {
	return SanitizeHTML(stringValue(value)), nil
}

func normalizeJSON(_ model.FieldDefinition, value any) (any, error) {
	raw, ok := value.(string)
	if !ok {
		return value, nil
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fieldErr(CodeInvalidJSON, "Invalid JSON format")
	}
	return out, nil
}

func normalizeColor(_ model.FieldDefinition, value any) (any, error) {
	raw := strings.TrimSpace(stringValue(value))
	if raw == "" {
		return nil, nil
	}
	if !colorPattern.MatchString(raw) {
		return nil, fieldErr(CodeInvalidColor, "Invalid color, expected #rrggbb")
	}
	return strings.ToLower(raw), nil
}

func normalizeEmail(_ model.FieldDefinition, value any) (any, error) {
	raw := strings.TrimSpace(stringValue(value))
	if raw == "" {
		return "", nil
	}
	if !emailPattern.MatchString(raw) {
		return nil, fieldErr(CodeInvalidEmail, "Invalid email address")
	}
	return raw, nil
}

func normalizeURL(_ model.FieldDefinition, value any) (any, error) {
	raw := strings.TrimSpace(stringValue(value))
	if raw == "" {
		return "", nil
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fieldErr(CodeInvalidURL, "Invalid URL")
	}
	return raw, nil
}

func normalizePhone(_ model.FieldDefinition, value any) (any, error) {
	return FormatPhone(stringValue(value)), nil
}

// FormatPhone formats the digits of raw as (XXX) XXX-XXXX. Partial input is
// formatted progressively: fewer than three digits are returned as is, and
// digits past the tenth are dropped.
func FormatPhone(raw string) string {
	digits := digitsOnly(raw)
	switch n := len(digits); {
	case n >= 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:10]
	case n >= 6:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case n >= 3:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		return digits
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StringList coerces a single value or list into a slice of strings. Empty
// strings are dropped.
func StringList(v any) []string {
	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	switch typed := v.(type) {
	case nil:
	case []string:
		for _, s := range typed {
			add(s)
		}
	case []any:
		for _, item := range typed {
			if item != nil {
				add(stringValue(item))
			}
		}
	default:
		add(stringValue(typed))
	}
	return out
}

// ToggleOption adds value to selected, or removes it when already present.
func ToggleOption(selected []string, value string) []string {
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == value {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, value)
	}
	return out
}

// FilterOptions returns options whose label or value contains term,
// case-insensitively. An empty term returns every option.
func FilterOptions(options []model.FieldOption, term string) []model.FieldOption {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return options
	}
	var out []model.FieldOption
	for _, opt := range options {
		if strings.Contains(strings.ToLower(opt.DisplayLabel()), term) ||
			strings.Contains(strings.ToLower(opt.Value), term) {
			out = append(out, opt)
		}
	}
	return out
}

var (
	richTextPolicy     *bluemonday.Policy
	richTextPolicyOnce sync.Once
)

// SanitizeHTML strips unsafe markup from rich text values.
func SanitizeHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	richTextPolicyOnce.Do(func() {
		richTextPolicy = bluemonday.UGCPolicy()
	})
	return richTextPolicy.Sanitize(raw)
}

func hasOption(options []model.FieldOption, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch typed := v.(type) {
	case bool:
		return typed, true
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true", "on", "1", "yes":
			return true, true
		case "false", "off", "0", "no", "":
			return false, true
		}
	case float64:
		return typed != 0, true
	case int:
		return typed != 0, true
	}
	return false, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

