// Package server exposes stored views over HTTP: CRUD on schemas, schema
// validation, server-rendered forms, submission validation and relation
// option search.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/i18n"
	"github.com/goliatone/go-viewbuilder/pkg/relation"
	"github.com/goliatone/go-viewbuilder/pkg/render"
	"github.com/goliatone/go-viewbuilder/pkg/render/html"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type Server struct {
	router     *chi.Mux
	provider   storage.Provider
	relations  *relation.Registry
	renderer   *html.Renderer
	renderers  *render.Registry
	components *components.Registry
	translator i18n.Translator
	locale     string
	onSubmit   autoform.SubmitFunc
	handlers   map[string]http.Handler
}

type Options func(*Server)

// WithRelations registers the relation sources used by forms and the
// /api/relations endpoint.
func WithRelations(reg *relation.Registry) Options {
	return func(s *Server) {
		s.relations = reg
	}
}

// WithRenderer overrides the HTML renderer.
func WithRenderer(r *html.Renderer) Options {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithComponents overrides the field component map.
func WithComponents(reg *components.Registry) Options {
	return func(s *Server) {
		s.components = reg
	}
}

// WithTranslator sets the translator and default locale. Requests select
// another locale with ?locale=.
func WithTranslator(t i18n.Translator, locale string) Options {
	return func(s *Server) {
		s.translator = t
		s.locale = locale
	}
}

// WithSubmitHandler receives accepted submissions.
func WithSubmitHandler(fn autoform.SubmitFunc) Options {
	return func(s *Server) {
		s.onSubmit = fn
	}
}

// New builds the router over provider.
func New(provider storage.Provider, opts ...Options) (*Server, error) {
	if provider == nil {
		return nil, goerr.New("storage provider is required")
	}
	r := chi.NewRouter()
	s := &Server{
		router:   r,
		provider: provider,
		locale:   "en",
		handlers: make(map[string]http.Handler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		renderer, err := html.New()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create html renderer")
		}
		s.renderer = renderer
	}
	s.renderers = render.NewRegistry()
	if err := s.renderers.Register(s.renderer); err != nil {
		return nil, goerr.Wrap(err, "failed to register html renderer")
	}
	if err := s.renderers.Register(render.JSON{}); err != nil {
		return nil, goerr.Wrap(err, "failed to register json renderer")
	}
	if s.components == nil {
		s.components = components.NewDefault()
	}
	if s.relations == nil {
		s.relations = relation.NewRegistry()
	}
	for _, name := range s.relations.Names() {
		src, _ := s.relations.Source(name)
		s.handlers[name] = relation.NewHandler(src, relation.WithHandlerLogger(logging.Default()))
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/views", s.listViews)
		r.Route("/views/{id}", func(r chi.Router) {
			r.Get("/", s.getView)
			r.Put("/", s.putView)
			r.Delete("/", s.deleteView)
			r.Get("/form", s.renderForm)
			r.Post("/submit", s.submitForm)
		})
		r.Post("/validate", s.validate)
		r.Get("/relations/{name}", s.searchRelation)
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r.WithContext(logging.With(r.Context(), logger)))
	})
}
