// Package watch re-validates schema files in a directory as they change and
// optionally mirrors valid ones into a storage provider.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

// DefaultDebounce is how long a file must stay quiet before it is validated.
const DefaultDebounce = 300 * time.Millisecond

// ErrWatchingStorage is returned by New when the provider stores its files in
// the watched directory. Syncing would feed the provider's own writes back
// into it, and its YAML cleanup would be seen as a removal.
var ErrWatchingStorage = goerr.New("watch directory is the storage directory")

// Event is the outcome of validating one file.
type Event struct {
	Path    string
	ID      string
	Removed bool
	Result  schema.Result
	Err     error
}

// Handler observes events.
type Handler func(ctx context.Context, event Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithHandler sets the event handler.
func WithHandler(h Handler) Option {
	return func(w *Watcher) {
		w.handler = h
	}
}

// WithProvider saves valid schemas under their file stem and deletes the id
// when the file goes away.
func WithProvider(p storage.Provider) Option {
	return func(w *Watcher) {
		w.provider = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher watches a directory of .json, .yaml and .yml schema files.
type Watcher struct {
	mu       sync.Mutex
	dir      string
	watcher  *fsnotify.Watcher
	pending  map[string]time.Time
	debounce time.Duration
	handler  Handler
	provider storage.Provider
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// New creates a watcher for dir.
func New(dir string, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		dir:      dir,
		pending:  make(map[string]time.Time),
		debounce: DefaultDebounce,
		logger:   logging.Default(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if sameDir(dir, w.provider) {
		return nil, goerr.Wrap(ErrWatchingStorage, "cannot sync into the watched directory", goerr.V("dir", dir))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create fsnotify watcher")
	}
	w.watcher = fw
	return w, nil
}

// sameDir reports whether p keeps its files in dir.
func sameDir(dir string, p storage.Provider) bool {
	based, ok := p.(interface{ BasePath() string })
	if !ok {
		return false
	}
	return resolve(dir) == resolve(based.BasePath())
}

func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// IsSchemaFile reports whether path has a schema extension.
func IsSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// IDFor derives the view id from a file name.
func IDFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Start begins watching. It is non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		return goerr.Wrap(err, "failed to watch directory", goerr.V("dir", w.dir))
	}
	w.logger.Info("watching schema directory", "dir", w.dir)

	go w.run(ctx)
	return nil
}

// Stop ends the event loop and releases the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("failed to close watcher", "error", err)
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.record(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) record(event fsnotify.Event) {
	if !IsSchemaFile(event.Name) {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.Process(ctx, path)
	}
}

// Process validates path immediately and dispatches the event.
func (w *Watcher) Process(ctx context.Context, path string) Event {
	event := Event{Path: path, ID: IDFor(path)}

	doc, err := schema.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		event.Removed = true
		if w.provider != nil {
			event.Err = w.provider.Delete(ctx, event.ID)
		}
	case err != nil:
		event.Err = err
	default:
		event.Result = doc.Validate()
		if event.Result.Success && w.provider != nil {
			view := event.Result.Data
			view.ID = event.ID
			event.Err = w.provider.Save(ctx, event.ID, view)
		}
	}

	switch {
	case event.Err != nil:
		w.logger.Error("schema file failed", "path", path, "error", event.Err)
	case event.Removed:
		w.logger.Info("schema file removed", "path", path)
	case event.Result.Success:
		w.logger.Info("schema file valid", "path", path, "fields", len(event.Result.Data.Fields))
	default:
		issues := make([]string, 0, len(event.Result.Issues))
		for _, issue := range event.Result.Issues {
			issues = append(issues, issue.String())
		}
		w.logger.Warn("schema file invalid", "path", path, "issues", issues)
	}

	if w.handler != nil {
		w.handler(ctx, event)
	}
	return event
}
