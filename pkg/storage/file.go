package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// DefaultBasePath is where the file provider stores schemas by default.
const DefaultBasePath = "./data/views"

// File stores each schema as <id>.json under a directory. Hand-written
// <id>.yaml and <id>.yml files are read as well; saving always writes JSON
// and removes any YAML copy so one id maps to one file.
type File struct {
	base string
}

// NewFile returns a file provider rooted at base. The directory is created on
// first save.
func NewFile(base string) (*File, error) {
	if strings.TrimSpace(base) == "" {
		base = DefaultBasePath
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve base path", goerr.V("base", base))
	}
	return &File{base: abs}, nil
}

// BasePath returns the storage directory.
func (f *File) BasePath() string { return f.base }

var yamlExtensions = []string{".yaml", ".yml"}

func (f *File) Save(ctx context.Context, id string, schema *model.ViewSchema) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encode(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to encode view", goerr.V("id", id))
	}
	if err := os.MkdirAll(f.base, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create storage directory", goerr.V("path", f.base))
	}

	path := filepath.Join(f.base, id+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return goerr.Wrap(err, "failed to write view", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return goerr.Wrap(err, "failed to replace view", goerr.V("path", path))
	}
	for _, ext := range yamlExtensions {
		if err := os.Remove(filepath.Join(f.base, id+ext)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(err, "failed to remove stale yaml view", goerr.V("id", id))
		}
	}
	return nil
}

func (f *File) Load(ctx context.Context, id string) (*model.ViewSchema, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	path := filepath.Join(f.base, id+".json")
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		schema, err := decode(data)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to decode view", goerr.V("path", path))
		}
		return schema, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, goerr.Wrap(err, "failed to read view", goerr.V("path", path))
	}

	for _, ext := range yamlExtensions {
		path = filepath.Join(f.base, id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read view", goerr.V("path", path))
		}
		var schema model.ViewSchema
		if err := yaml.Unmarshal(data, &schema); err != nil {
			return nil, goerr.Wrap(err, "failed to decode yaml view", goerr.V("path", path))
		}
		return &schema, nil
	}
	return nil, nil
}

func (f *File) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.base)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list views", goerr.V("path", f.base))
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		switch ext {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}
		id := strings.TrimSuffix(name, ext)
		if _, dup := seen[id]; dup || ValidateID(id) != nil {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *File) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(f.base, id+ext)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return goerr.Wrap(err, "failed to delete view", goerr.V("path", path))
		}
	}
	return nil
}
