package i18n

import (
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	if err := c.LoadFS(os.DirFS("testdata")); err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	return c
}

func TestCatalogLoadFS(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	if diff := cmp.Diff([]string{"en", "pt"}, c.Locales()); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}

	cases := []struct {
		locale, key, want string
	}{
		{"en", KeySubmit, "Save"},
		{"pt", KeySubmit, "Guardar"},
		{"pt-BR", KeySubmit, "Guardar"},
		{"pt", KeyReset, "Clear"},
		{"pt", FieldLabelKey("email"), "Correio"},
		{"EN", FieldLabelKey("email"), "Email address"},
	}
	for _, tc := range cases {
		got, err := c.Translate(tc.locale, tc.key)
		if err != nil {
			t.Fatalf("Translate(%s, %s): %v", tc.locale, tc.key, err)
		}
		if got != tc.want {
			t.Fatalf("Translate(%s, %s) = %q, want %q", tc.locale, tc.key, got, tc.want)
		}
	}
}

func TestCatalogMissing(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	if _, err := c.Translate("en", "nope"); !errors.Is(err, ErrMissingTranslation) {
		t.Fatalf("expected ErrMissingTranslation, got %v", err)
	}
}

func TestTFallbacks(t *testing.T) {
	t.Parallel()

	c := loadCatalog(t)
	if got := T(c, "en", FieldErrorKey("email", "invalid_email"), "Invalid email address", nil); got != "Invalid email address!" {
		t.Fatalf("interpolated default = %q", got)
	}
	if got := T(c, "en", FieldLabelKey("name"), "Name", nil); got != "Name" {
		t.Fatalf("default fallback = %q", got)
	}
	if got := T(nil, "en", KeySubmit, "", nil); got != KeySubmit {
		t.Fatalf("key fallback = %q", got)
	}
	var seen error
	got := T(nil, "en", KeySubmit, "Submit", func(_, _, fallback string, err error) string {
		seen = err
		return "[" + fallback + "]"
	})
	if got != "[Submit]" || !errors.Is(seen, ErrNoTranslator) {
		t.Fatalf("missing handler got %q, err %v", got, seen)
	}
}
