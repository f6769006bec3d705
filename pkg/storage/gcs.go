package storage

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// GCS stores each schema as the object <prefix><id>.json in a bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates a client using application default credentials.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gcs client", goerr.V("bucket", bucket))
	}
	return &GCS{client: client, bucket: bucket, prefix: prefix}, nil
}

func (g *GCS) object(id string) *storage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(g.prefix + id + ".json")
}

func (g *GCS) Save(ctx context.Context, id string, schema *model.ViewSchema) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encode(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to encode view", goerr.V("id", id))
	}
	w := g.object(id).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write view object", goerr.V("id", id), goerr.V("bucket", g.bucket))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize view object", goerr.V("id", id), goerr.V("bucket", g.bucket))
	}
	return nil
}

func (g *GCS) Load(ctx context.Context, id string) (*model.ViewSchema, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	r, err := g.object(id).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open view object", goerr.V("id", id), goerr.V("bucket", g.bucket))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read view object", goerr.V("id", id))
	}
	schema, err := decode(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode view", goerr.V("id", id))
	}
	return schema, nil
}

func (g *GCS) List(ctx context.Context) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: g.prefix})
	ids := []string{}
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate view objects", goerr.V("bucket", g.bucket))
		}
		name := strings.TrimPrefix(attrs.Name, g.prefix)
		id, ok := strings.CutSuffix(name, ".json")
		if !ok || ValidateID(id) != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (g *GCS) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	err := g.object(id).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete view object", goerr.V("id", id), goerr.V("bucket", g.bucket))
	}
	return nil
}

// Close closes the gcs client.
func (g *GCS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
