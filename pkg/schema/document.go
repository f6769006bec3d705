// Package schema holds the schema store, the toolbox of predefined fields,
// the schema validation function and helpers for reading schema documents
// from disk or an fs.FS.
package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor infers the format from a file name. Anything that is not
// .yaml/.yml is treated as JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is a raw schema payload and where it came from.
type Document struct {
	location string
	format   Format
	raw      []byte
}

// NewDocument wraps raw. The format is inferred from location.
func NewDocument(location string, raw []byte) (Document, error) {
	if len(raw) == 0 {
		return Document{}, errors.New("schema: raw document is empty")
	}
	return Document{
		location: location,
		format:   FormatFor(location),
		raw:      append([]byte(nil), raw...),
	}, nil
}

// ReadFile loads a document from disk.
func ReadFile(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return NewDocument(filepath.Clean(path), raw)
}

// ReadFS loads a document from fsys.
func ReadFS(fsys fs.FS, name string) (Document, error) {
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", name, err)
	}
	return NewDocument(name, raw)
}

// Location returns the path or name the document was read from.
func (d Document) Location() string { return d.location }

// Format returns the document encoding.
func (d Document) Format() Format { return d.format }

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return append([]byte(nil), d.raw...)
}

// Validate runs SafeValidate over the document. YAML documents are decoded
// into generic values first.
func (d Document) Validate() Result {
	if d.format != FormatYAML {
		return SafeValidate(d.raw)
	}
	var generic any
	if err := yaml.Unmarshal(d.raw, &generic); err != nil {
		return failed(Issue{Message: "invalid YAML: " + err.Error()})
	}
	return SafeValidate(generic)
}
