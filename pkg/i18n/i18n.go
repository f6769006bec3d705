// Package i18n provides message lookup for form chrome and field text. Keys
// follow the dotted convention fields.<name>.label, form.submit, and so on;
// every lookup carries a default so a missing catalog never blanks the UI.
package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingTranslation is returned when no locale in the chain has key.
	ErrMissingTranslation = errors.New("i18n: missing translation")
	// ErrNoTranslator is reported to missing handlers when no translator is set.
	ErrNoTranslator = errors.New("i18n: no translator configured")
)

// Translator resolves keys for a locale. Args may contain a single
// map[string]any whose entries replace {name} placeholders.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate calls fn.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// MissingHandler decides what to show when a lookup fails.
type MissingHandler func(locale, key, fallback string, err error) string

// Catalog is an in-memory Translator loaded from maps or files.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]map[string]string
	fallback string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallbackLocale sets the locale consulted when the requested locale lacks
// a key. Defaults to "en".
func WithFallbackLocale(locale string) Option {
	return func(c *Catalog) {
		c.fallback = normalizeLocale(locale)
	}
}

// NewCatalog constructs an empty catalog.
func NewCatalog(options ...Option) *Catalog {
	c := &Catalog{messages: make(map[string]map[string]string), fallback: "en"}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Add merges messages for locale. Nested maps are flattened with dots.
func (c *Catalog) Add(locale string, messages map[string]any) {
	locale = normalizeLocale(locale)
	flat := make(map[string]string)
	flatten("", messages, flat)

	c.mu.Lock()
	defer c.mu.Unlock()
	bucket := c.messages[locale]
	if bucket == nil {
		bucket = make(map[string]string, len(flat))
		c.messages[locale] = bucket
	}
	for k, v := range flat {
		bucket[k] = v
	}
}

// LoadFS reads every <locale>.json, <locale>.yaml and <locale>.yml file at the
// root of fsys.
func (c *Catalog) LoadFS(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("i18n: read catalog dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(path.Ext(name))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		messages := map[string]any{}
		if ext == ".json" {
			err = json.Unmarshal(raw, &messages)
		} else {
			err = yaml.Unmarshal(raw, &messages)
		}
		if err != nil {
			return fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		c.Add(strings.TrimSuffix(name, path.Ext(name)), messages)
	}
	return nil
}

// Locales returns the loaded locales, sorted.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	slices.Sort(out)
	return out
}

// Translate looks key up in locale, then its base language ("pt" for "pt-br"),
// then the fallback locale.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, candidate := range localeChain(normalizeLocale(locale), c.fallback) {
		if msg, ok := c.messages[candidate][key]; ok {
			return interpolate(msg, args), nil
		}
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
}

// T translates key, falling back to fallback (or the key itself when fallback
// is empty) on any failure.
func T(t Translator, locale, key, fallback string, onMissing MissingHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	var err error
	if t != nil {
		var msg string
		msg, err = t.Translate(locale, key, map[string]any{"default": fallback})
		if err == nil && msg != "" {
			return msg
		}
	} else {
		err = ErrNoTranslator
	}
	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	if fallback != "" {
		return fallback
	}
	return key
}

func localeChain(locale, fallback string) []string {
	chain := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok {
		chain = append(chain, base)
	}
	if fallback != "" && fallback != locale {
		chain = append(chain, fallback)
	}
	return chain
}

func normalizeLocale(locale string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(locale)), "_", "-")
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch typed := v.(type) {
		case map[string]any:
			flatten(key, typed, out)
		case string:
			out[key] = typed
		case nil:
		default:
			out[key] = fmt.Sprint(typed)
		}
	}
}

func interpolate(msg string, args []any) string {
	if len(args) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	params, ok := args[0].(map[string]any)
	if !ok {
		return msg
	}
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprint(v))
	}
	return msg
}
