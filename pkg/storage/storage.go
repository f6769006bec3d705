// Package storage persists named view schemas. Every backend implements
// Provider; callers choose one explicitly through Config.Type.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

var (
	// ErrInvalidID is returned for empty ids and ids containing path elements.
	ErrInvalidID = errors.New("storage: invalid view id")
	// ErrNilSchema is returned when saving a nil schema.
	ErrNilSchema = errors.New("storage: schema is nil")
	// ErrUnknownType is returned by New for unsupported backends.
	ErrUnknownType = errors.New("storage: unknown provider type")
)

// Provider stores view schemas by id. Load returns (nil, nil) when the id
// does not exist. Writes are last-write-wins.
type Provider interface {
	Save(ctx context.Context, id string, schema *model.ViewSchema) error
	Load(ctx context.Context, id string) (*model.ViewSchema, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// Type names a storage backend.
type Type string

const (
	TypeLocal     Type = "local"
	TypeFile      Type = "file"
	TypeSQLite    Type = "sqlite"
	TypeFirestore Type = "firestore"
	TypeGCS       Type = "gcs"
)

// Config selects and configures a backend.
type Config struct {
	Type Type
	// Prefix namespaces keys (local), collections (firestore) and object
	// names (gcs).
	Prefix string
	// BasePath is the directory for the file backend.
	BasePath string
	// DSN is the sqlite database path or DSN.
	DSN string
	// ProjectID and DatabaseID select the firestore database.
	ProjectID  string
	DatabaseID string
	// Bucket is the gcs bucket name.
	Bucket string
}

// New builds the provider described by cfg. Providers holding external
// resources also implement io.Closer; use Close to release them.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch Type(strings.ToLower(string(cfg.Type))) {
	case TypeLocal, "":
		return NewLocal(WithPrefix(cfg.Prefix)), nil
	case TypeFile:
		return NewFile(cfg.BasePath)
	case TypeSQLite:
		return NewSQLite(ctx, cfg.DSN)
	case TypeFirestore:
		return NewFirestore(ctx, cfg.ProjectID, cfg.DatabaseID, cfg.Prefix)
	case TypeGCS:
		return NewGCS(ctx, cfg.Bucket, cfg.Prefix)
	default:
		return nil, goerr.Wrap(ErrUnknownType, "failed to create storage provider", goerr.V("type", cfg.Type))
	}
}

// Close releases p when it holds resources.
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// ValidateID rejects ids that are empty or could escape a namespace.
func ValidateID(id string) error {
	trimmed := strings.TrimSpace(id)
	switch {
	case trimmed == "", trimmed != id:
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`), strings.Contains(id, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func encode(schema *model.ViewSchema) ([]byte, error) {
	if schema == nil {
		return nil, ErrNilSchema
	}
	return json.MarshalIndent(schema, "", "  ")
}

func decode(data []byte) (*model.ViewSchema, error) {
	var schema model.ViewSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}
