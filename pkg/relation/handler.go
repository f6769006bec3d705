package relation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// HTTPError is an error carrying an HTTP status, returned by guards.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError is a simple HTTPError.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// EmptySearchMode controls what an empty query returns.
type EmptySearchMode string

const (
	EmptySearchNone EmptySearchMode = "none"
	EmptySearchTop  EmptySearchMode = "top"
)

// GuardFunc authorises a request before searching.
type GuardFunc func(r *http.Request) error

// HandlerOptions configures a search handler.
type HandlerOptions struct {
	SearchParam     string
	LimitParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc
	Logger          *slog.Logger
}

// HandlerOption mutates HandlerOptions.
type HandlerOption func(*HandlerOptions)

// DefaultHandlerOptions returns the handler defaults.
func DefaultHandlerOptions() HandlerOptions {
	return HandlerOptions{
		SearchParam:     "q",
		LimitParam:      "limit",
		DefaultLimit:    DefaultLimit,
		MaxLimit:        200,
		EmptySearchMode: EmptySearchTop,
	}
}

// NewHandlerOptions applies fns over the defaults and fills invalid values.
func NewHandlerOptions(fns ...HandlerOption) HandlerOptions {
	opts := DefaultHandlerOptions()
	for _, fn := range fns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 200
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchTop
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

func WithSearchParam(name string) HandlerOption {
	return func(o *HandlerOptions) { o.SearchParam = name }
}

func WithLimitParam(name string) HandlerOption {
	return func(o *HandlerOptions) { o.LimitParam = name }
}

func WithDefaultLimit(limit int) HandlerOption {
	return func(o *HandlerOptions) { o.DefaultLimit = limit }
}

func WithMaxLimit(limit int) HandlerOption {
	return func(o *HandlerOptions) { o.MaxLimit = limit }
}

func WithEmptySearchMode(mode EmptySearchMode) HandlerOption {
	return func(o *HandlerOptions) { o.EmptySearchMode = mode }
}

func WithGuard(guard GuardFunc) HandlerOption {
	return func(o *HandlerOptions) { o.Guard = guard }
}

func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(o *HandlerOptions) { o.Logger = logger }
}

type optionsResponse struct {
	Data []model.RelationOption `json:"data"`
}

// NewHandler serves source as GET ?q=&limit= returning {"data": [...]}.
func NewHandler(source Source, fns ...HandlerOption) http.Handler {
	opts := NewHandlerOptions(fns...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		query := r.URL.Query().Get(opts.SearchParam)
		limit := clampLimit(parseInt(r.URL.Query().Get(opts.LimitParam)), opts)

		var results []model.RelationOption
		if limit > 0 && (query != "" || opts.EmptySearchMode == EmptySearchTop) {
			found, err := source.Search(r.Context(), query, limit)
			if err != nil {
				opts.Logger.Error("relation search failed", "query", query, "error", err)
				http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
				return
			}
			results = found
		}
		if len(results) > limit {
			results = results[:limit]
		}
		if results == nil {
			results = []model.RelationOption{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(optionsResponse{Data: results})
	})
}

func writeGuardError(w http.ResponseWriter, err error) {
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		if c := httpErr.StatusCode(); c > 0 {
			code = c
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func clampLimit(limit int, opts HandlerOptions) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
