package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// DefaultLocalPrefix prefixes every key in the local store.
const DefaultLocalPrefix = "view_"

// Local is an in-process key/value provider. Schemas are stored as JSON under
// prefixed keys so a Local can share its map with other key spaces.
type Local struct {
	mu     sync.RWMutex
	prefix string
	items  map[string][]byte
}

// LocalOption configures a Local provider.
type LocalOption func(*Local)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) LocalOption {
	return func(l *Local) {
		if prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithItems shares an existing key/value map.
func WithItems(items map[string][]byte) LocalOption {
	return func(l *Local) {
		if items != nil {
			l.items = items
		}
	}
}

// NewLocal constructs an empty local provider.
func NewLocal(options ...LocalOption) *Local {
	l := &Local{prefix: DefaultLocalPrefix, items: make(map[string][]byte)}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

func (l *Local) Save(ctx context.Context, id string, schema *model.ViewSchema) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := encode(schema)
	if err != nil {
		return goerr.Wrap(err, "failed to encode view", goerr.V("id", id))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items[l.prefix+id] = data
	return nil
}

func (l *Local) Load(ctx context.Context, id string) (*model.ViewSchema, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	l.mu.RLock()
	data, ok := l.items[l.prefix+id]
	l.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	schema, err := decode(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode view", goerr.V("id", id))
	}
	return schema, nil
}

func (l *Local) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.items))
	for key := range l.items {
		if id, ok := strings.CutPrefix(key, l.prefix); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (l *Local) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.items, l.prefix+id)
	return nil
}
