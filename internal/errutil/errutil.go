// Package errutil turns errors into logged HTTP responses.
package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"

	"github.com/goliatone/go-viewbuilder/internal/logging"
)

// Response is the JSON error body.
type Response struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
	Issues any                 `json:"issues,omitempty"`
}

// HandleHTTP logs err and writes a JSON error response. 5xx responses hide the
// error text from the client.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}
	Log(ctx, err, "HTTP error", "status", statusCode)

	msg := err.Error()
	if statusCode >= http.StatusInternalServerError {
		msg = http.StatusText(statusCode)
	}
	WriteJSON(ctx, w, statusCode, Response{Error: msg})
}

// Log writes err with its goerr values and stack when available.
func Log(ctx context.Context, err error, msg string, args ...any) {
	logger := logging.From(ctx)
	var ge *goerr.Error
	if errors.As(err, &ge) {
		args = append(args, "error", err.Error(), "values", ge.Values(), "stack", ge.Stacks())
	} else {
		args = append(args, "error", err.Error())
	}
	logger.Error(msg, args...)
}

// WriteJSON encodes body with status.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.From(ctx).Error("failed to write response", "error", err)
	}
}
