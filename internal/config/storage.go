package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

// Storage holds CLI flags for the storage backend.
type Storage struct {
	backend    string
	prefix     string
	path       string
	dsn        string
	projectID  string
	databaseID string
	bucket     string
}

// Flags returns CLI flags for storage configuration.
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage",
			Usage:       "Storage backend (file, local, sqlite, firestore, gcs)",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_STORAGE"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Usage:       "Key, collection or object prefix",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_STORAGE_PREFIX"),
			Destination: &s.prefix,
		},
		&cli.StringFlag{
			Name:        "storage-path",
			Usage:       "Directory for the file backend",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_STORAGE_PATH"),
			Destination: &s.path,
		},
		&cli.StringFlag{
			Name:        "sqlite-dsn",
			Usage:       "SQLite database path",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_SQLITE_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_FIRESTORE_PROJECT_ID"),
			Destination: &s.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_FIRESTORE_DATABASE_ID"),
			Destination: &s.databaseID,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Cloud Storage bucket (required when using gcs backend)",
			Category:    "Storage",
			Sources:     cli.EnvVars("VIEWBUILDER_GCS_BUCKET"),
			Destination: &s.bucket,
		},
	}
}

// Resolve merges flags over the file section. Unset flags keep file values.
func (s *Storage) Resolve(file StorageFile) storage.Config {
	return storage.Config{
		Type:       storage.Type(pick(s.backend, file.Type, string(storage.TypeFile))),
		Prefix:     pick(s.prefix, file.Prefix),
		BasePath:   pick(s.path, file.Path, "views"),
		DSN:        pick(s.dsn, file.DSN, "views.db"),
		ProjectID:  pick(s.projectID, file.ProjectID),
		DatabaseID: pick(s.databaseID, file.DatabaseID),
		Bucket:     pick(s.bucket, file.Bucket),
	}
}

// Configure builds the provider. The caller closes it with storage.Close.
func (s *Storage) Configure(ctx context.Context, file StorageFile) (storage.Provider, error) {
	cfg := s.Resolve(file)
	switch cfg.Type {
	case storage.TypeFirestore:
		if cfg.ProjectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
	case storage.TypeGCS:
		if cfg.Bucket == "" {
			return nil, goerr.New("gcs-bucket is required when using gcs backend")
		}
	}

	provider, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize storage", goerr.V("backend", cfg.Type))
	}
	logging.Default().Info("Using storage backend", "backend", cfg.Type, "prefix", cfg.Prefix)
	return provider, nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
