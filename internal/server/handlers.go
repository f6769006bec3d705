package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-viewbuilder/internal/errutil"
	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/predicate"
	"github.com/goliatone/go-viewbuilder/pkg/schema"
	"github.com/goliatone/go-viewbuilder/pkg/storage"
)

var errViewNotFound = errors.New("view not found")

func (s *Server) listViews(w http.ResponseWriter, r *http.Request) {
	ids, err := s.provider.List(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to list views"), http.StatusInternalServerError)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	errutil.WriteJSON(r.Context(), w, http.StatusOK, map[string]any{"views": ids})
}

// load reads the view named by the {id} parameter, writing the error response
// itself when it returns nil.
func (s *Server) load(w http.ResponseWriter, r *http.Request) *model.ViewSchema {
	id := chi.URLParam(r, "id")
	view, err := s.provider.Load(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return nil
	case err != nil:
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to load view", goerr.V("id", id)), http.StatusInternalServerError)
		return nil
	case view == nil:
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(errViewNotFound, "failed to load view", goerr.V("id", id)), http.StatusNotFound)
		return nil
	}
	return view
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	if view := s.load(w, r); view != nil {
		errutil.WriteJSON(r.Context(), w, http.StatusOK, view)
	}
}

func (s *Server) putView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := storage.ValidateID(id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	result := schema.SafeValidate(body)
	if !result.Success {
		errutil.WriteJSON(r.Context(), w, http.StatusUnprocessableEntity, errutil.Response{
			Error:  "invalid view schema",
			Issues: result.Issues,
		})
		return
	}
	view := result.Data
	view.ID = id
	if err := s.provider.Save(r.Context(), id, view); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to save view", goerr.V("id", id)), http.StatusInternalServerError)
		return
	}
	errutil.WriteJSON(r.Context(), w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) deleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.provider.Delete(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrInvalidID):
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
	case err != nil:
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to delete view", goerr.V("id", id)), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	errutil.WriteJSON(r.Context(), w, http.StatusOK, schema.SafeValidate(body))
}

func (s *Server) newForm(view *model.ViewSchema, locale string, values map[string]any) *autoform.Form {
	if locale == "" {
		locale = s.locale
	}
	// Stored views are client-supplied, so their expressions are compiled per
	// request instead of into the shared evaluator.
	opts := []autoform.Option{
		autoform.WithEvaluator(predicate.New()),
		autoform.WithRegistry(s.components),
		autoform.WithRelations(s.relations),
		autoform.WithValues(values),
		autoform.WithValidateOnSubmit(true),
	}
	if s.translator != nil {
		opts = append(opts, autoform.WithTranslator(s.translator, locale))
	}
	if s.onSubmit != nil {
		opts = append(opts, autoform.WithSubmitHandler(s.onSubmit))
	}
	return autoform.FromSchema(view, opts...)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request) {
	view := s.load(w, r)
	if view == nil {
		return
	}
	query := r.URL.Query()
	format := query.Get("format")
	if format == "" {
		format = "html"
	}
	renderer, err := s.renderers.Get(format)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "unsupported format", goerr.V("available", s.renderers.List())), http.StatusBadRequest)
		return
	}
	values := make(map[string]any)
	for key, vals := range query {
		if key == "tab" || key == "locale" || key == "format" || len(vals) == 0 {
			continue
		}
		if len(vals) == 1 {
			values[key] = vals[0]
		} else {
			values[key] = vals
		}
	}

	form := s.newForm(view, query.Get("locale"), values)
	if raw := query.Get("tab"); raw != "" {
		if tab, err := strconv.Atoi(raw); err == nil {
			form.SelectTab(tab)
		}
	}

	out, err := renderer.Render(r.Context(), form)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to render form", goerr.V("id", view.ID)), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	if _, err := io.WriteString(w, out); err != nil {
		errutil.Log(r.Context(), err, "failed to write form")
	}
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	view := s.load(w, r)
	if view == nil {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var submitted map[string]any
	if err := json.Unmarshal(body, &submitted); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "submission must be a JSON object"), http.StatusBadRequest)
		return
	}

	form := s.newForm(view, r.URL.Query().Get("locale"), nil)
	// Declaration order keeps predicates that depend on earlier fields stable.
	for _, field := range view.Fields {
		value, present := submitted[field.Name]
		if !present {
			continue
		}
		if err := form.Change(field.Name, value); errors.Is(err, autoform.ErrFieldDisabled) {
			continue
		}
	}

	err := form.Submit(r.Context())
	var fieldErrs autoform.FieldErrors
	switch {
	case errors.Is(err, autoform.ErrInvalid), errors.As(err, &fieldErrs):
		errutil.WriteJSON(r.Context(), w, http.StatusUnprocessableEntity, errutil.Response{
			Error:  "validation failed",
			Fields: form.Errors(),
			Issues: form.FormErrors(),
		})
	case err != nil:
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to submit form", goerr.V("id", view.ID)), http.StatusInternalServerError)
	default:
		errutil.WriteJSON(r.Context(), w, http.StatusOK, map[string]any{"values": form.VisibleValues()})
	}
}

func (s *Server) searchRelation(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	handler, ok := s.handlers[name]
	if !ok {
		errutil.HandleHTTP(r.Context(), w, goerr.New("unknown relation source", goerr.V("name", name)), http.StatusNotFound)
		return
	}
	handler.ServeHTTP(w, r)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "request body too large"), http.StatusRequestEntityTooLarge)
			return nil, false
		}
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
