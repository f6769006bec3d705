package relation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

type handlerResponse struct {
	Data []model.RelationOption `json:"data"`
}

func serve(t *testing.T, h http.Handler, method, target string) (*http.Response, handlerResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	res := rec.Result()

	var payload handlerResponse
	if res.StatusCode == http.StatusOK && method == http.MethodGet {
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return res, payload
}

func TestHandler_EmptyQueryModes(t *testing.T) {
	t.Parallel()

	res, payload := serve(t, NewHandler(StaticSource(people)), http.MethodGet, "/")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	if len(payload.Data) != len(people) {
		t.Fatalf("expected all options, got %d", len(payload.Data))
	}

	_, payload = serve(t, NewHandler(StaticSource(people), WithEmptySearchMode(EmptySearchNone)), http.MethodGet, "/")
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_SearchAndLimitClamped(t *testing.T) {
	t.Parallel()

	h := NewHandler(StaticSource(people), WithMaxLimit(1))
	_, payload := serve(t, h, http.MethodGet, "/?q=a&limit=10")
	if len(payload.Data) != 1 || payload.Data[0].ID != "1" {
		t.Fatalf("unexpected data %#v", payload.Data)
	}
}

func TestHandler_CustomParams(t *testing.T) {
	t.Parallel()

	h := NewHandler(StaticSource(people), WithSearchParam("search"), WithLimitParam("l"))
	_, payload := serve(t, h, http.MethodGet, "/?search=grace&l=5")
	if len(payload.Data) != 1 || payload.Data[0].Label != "Grace Hopper" {
		t.Fatalf("unexpected data %#v", payload.Data)
	}
}

func TestHandler_Guard(t *testing.T) {
	t.Parallel()

	h := NewHandler(StaticSource(people), WithGuard(func(*http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))
	res, _ := serve(t, h, http.MethodGet, "/")
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	h = NewHandler(StaticSource(people), WithGuard(func(*http.Request) error {
		return errors.New("denied")
	}))
	res, _ = serve(t, h, http.MethodGet, "/")
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.StatusCode)
	}
}

func TestHandler_MethodAndSourceErrors(t *testing.T) {
	t.Parallel()

	res, _ := serve(t, NewHandler(StaticSource(people)), http.MethodPost, "/")
	if res.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", res.StatusCode)
	}
	if allow := res.Header.Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}

	failing := SourceFunc(func(context.Context, string, int) ([]model.RelationOption, error) {
		return nil, errors.New("boom")
	})
	res, _ = serve(t, NewHandler(failing), http.MethodGet, "/?q=x")
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}
}
