package storage

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

type viewDocument struct {
	ID        string    `firestore:"id"`
	Body      string    `firestore:"body"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// Firestore stores one document per schema. The body is kept as JSON text so
// predicates and props round-trip without firestore type coercion.
type Firestore struct {
	client           *firestore.Client
	collectionPrefix string
}

// NewFirestore connects to projectID. databaseID selects a named database;
// empty uses the default one.
func NewFirestore(ctx context.Context, projectID, databaseID, prefix string) (*Firestore, error) {
	if projectID == "" {
		return nil, goerr.New("firestore project id is required")
	}
	var (
		client *firestore.Client
		err    error
	)
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}
	return &Firestore{client: client, collectionPrefix: prefix}, nil
}

func (f *Firestore) collection() string {
	if f.collectionPrefix != "" {
		return f.collectionPrefix + "_views"
	}
	return "views"
}

func (f *Firestore) Save(ctx context.Context, id string, schema *model.ViewSchema) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encode(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to encode view", goerr.V("id", id))
	}
	doc := &viewDocument{ID: id, Body: string(data), UpdatedAt: time.Now().UTC()}
	if _, err := f.client.Collection(f.collection()).Doc(id).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save view", goerr.V("id", id))
	}
	return nil
}

func (f *Firestore) Load(ctx context.Context, id string) (*model.ViewSchema, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	snap, err := f.client.Collection(f.collection()).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get view", goerr.V("id", id))
	}
	var doc viewDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal view", goerr.V("id", id))
	}
	schema, err := decode([]byte(doc.Body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode view", goerr.V("id", id))
	}
	return schema, nil
}

func (f *Firestore) List(ctx context.Context) ([]string, error) {
	iter := f.client.Collection(f.collection()).DocumentRefs(ctx)
	ids := []string{}
	for {
		ref, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate views")
		}
		ids = append(ids, ref.ID)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *Firestore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := f.client.Collection(f.collection()).Doc(id).Delete(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return goerr.Wrap(err, "failed to delete view", goerr.V("id", id))
	}
	return nil
}

// Close closes the firestore client.
func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
