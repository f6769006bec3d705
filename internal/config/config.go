// Package config holds command line flags and the TOML application file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/relation"
)

// AppConfig is the optional TOML file. Flags override the values it sets.
type AppConfig struct {
	Storage   StorageFile      `toml:"storage"`
	Server    ServerFile       `toml:"server"`
	I18n      I18nFile         `toml:"i18n"`
	Relations []RelationSource `toml:"relation"`
}

// StorageFile mirrors the storage flags.
type StorageFile struct {
	Type       string `toml:"type"`
	Prefix     string `toml:"prefix"`
	Path       string `toml:"path"`
	DSN        string `toml:"dsn"`
	ProjectID  string `toml:"project_id"`
	DatabaseID string `toml:"database_id"`
	Bucket     string `toml:"bucket"`
}

// ServerFile mirrors the server flags.
type ServerFile struct {
	Addr string `toml:"addr"`
}

// I18nFile points at a directory of <locale>.json|yaml catalogs.
type I18nFile struct {
	Dir    string `toml:"dir"`
	Locale string `toml:"locale"`
}

// RelationSource declares an option source for relation fields. Exactly one
// of URL (remote JSON endpoint), Options (static list) or Builtin must be set.
type RelationSource struct {
	Name       string                 `toml:"name"`
	Builtin    string                 `toml:"builtin"`
	URL        string                 `toml:"url"`
	ValueField string                 `toml:"value_field"`
	LabelField string                 `toml:"label_field"`
	Options    []model.RelationOption `toml:"options"`
}

// BuiltinTimezones selects the embedded IANA time zone list.
const BuiltinTimezones = "timezones"

// Validate checks a relation source declaration.
func (r *RelationSource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return goerr.Wrap(ErrMissingName, "relation source")
	}
	set := 0
	for _, ok := range []bool{r.URL != "", len(r.Options) > 0, r.Builtin != ""} {
		if ok {
			set++
		}
	}
	switch {
	case set == 0:
		return goerr.Wrap(ErrInvalidRelation, "url, options or builtin required", goerr.V("name", r.Name))
	case set > 1:
		return goerr.Wrap(ErrInvalidRelation, "url, options and builtin are mutually exclusive", goerr.V("name", r.Name))
	case r.Builtin != "" && r.Builtin != BuiltinTimezones:
		return goerr.Wrap(ErrInvalidRelation, "unknown builtin source", goerr.V("name", r.Name), goerr.V("builtin", r.Builtin))
	}
	return nil
}

// Validate checks the whole file.
func (a *AppConfig) Validate() error {
	seen := make(map[string]struct{}, len(a.Relations))
	for i := range a.Relations {
		rel := &a.Relations[i]
		if err := rel.Validate(); err != nil {
			return goerr.Wrap(err, "invalid relation", goerr.V("index", i))
		}
		if _, dup := seen[rel.Name]; dup {
			return goerr.Wrap(ErrDuplicateName, "invalid relation", goerr.V("name", rel.Name))
		}
		seen[rel.Name] = struct{}{}
	}
	return nil
}

// RelationRegistry builds a registry with one source per declaration.
func (a *AppConfig) RelationRegistry() (*relation.Registry, error) {
	reg := relation.NewRegistry()
	if a == nil {
		return reg, nil
	}
	for _, rel := range a.Relations {
		var src relation.Source
		switch {
		case rel.URL != "":
			src = &relation.HTTPSource{URL: rel.URL, ValueField: rel.ValueField, LabelField: rel.LabelField}
		case rel.Builtin == BuiltinTimezones:
			tz, err := relation.NewTimezoneSource()
			if err != nil {
				return nil, goerr.Wrap(err, "failed to load time zones", goerr.V("name", rel.Name))
			}
			src = tz
		default:
			src = relation.NewMemorySource(rel.Options...)
		}
		if err := reg.Register(rel.Name, src); err != nil {
			return nil, goerr.Wrap(err, "failed to register relation source", goerr.V("name", rel.Name))
		}
	}
	return reg, nil
}

// LoadAppConfiguration reads and validates a TOML file.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "failed to read config", goerr.V("config_path", path))
		}
		return nil, goerr.Wrap(err, "failed to read config", goerr.V("config_path", path))
	}

	var cfg AppConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML", goerr.V("config_path", path), goerr.V("error", err.Error()))
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration", goerr.V("config_path", path))
	}
	return &cfg, nil
}

// App holds the --config flag.
type App struct {
	path string
}

// Flags returns CLI flags for the application file.
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML configuration file",
			Sources:     cli.EnvVars("VIEWBUILDER_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Path returns the configured file path.
func (a *App) Path() string { return a.path }

// Configure loads the file, or returns an empty configuration when no path
// was given.
func (a *App) Configure() (*AppConfig, error) {
	if a.path == "" {
		return &AppConfig{}, nil
	}
	return LoadAppConfiguration(a.path)
}
