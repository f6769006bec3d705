package relation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-viewbuilder/pkg/model"
)

// HTTPSource queries a remote JSON endpoint. The endpoint receives the query
// and limit as URL parameters and answers with either {"data": [...]} or a
// bare array of objects. ValueField and LabelField remap record keys onto
// option ids and labels.
type HTTPSource struct {
	URL         string
	Client      *http.Client
	SearchParam string
	LimitParam  string
	ValueField  string
	LabelField  string
	Header      http.Header
}

func (s *HTTPSource) Search(ctx context.Context, query string, limit int) ([]model.RelationOption, error) {
	if s == nil || strings.TrimSpace(s.URL) == "" {
		return nil, fmt.Errorf("relation: http source url is required")
	}
	endpoint, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("relation: parse url: %w", err)
	}
	params := endpoint.Query()
	params.Set(defaultString(s.SearchParam, "q"), query)
	if limit > 0 {
		params.Set(defaultString(s.LimitParam, "limit"), strconv.Itoa(limit))
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("relation: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range s.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relation: fetch %s: %w", s.URL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("relation: fetch %s: unexpected status %d", s.URL, res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("relation: read response: %w", err)
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, err
	}

	valueField := defaultString(s.ValueField, "id")
	labelField := defaultString(s.LabelField, "label")
	out := make([]model.RelationOption, 0, len(records))
	for _, rec := range records {
		opt := model.RelationOption{
			ID:          scalarString(firstPresent(rec, valueField, "id", "value")),
			Label:       scalarString(firstPresent(rec, labelField, "label", "name")),
			Description: scalarString(rec["description"]),
			Icon:        scalarString(rec["icon"]),
			Data:        rec,
		}
		if disabled, ok := rec["disabled"].(bool); ok {
			opt.Disabled = disabled
		}
		if opt.ID == "" {
			continue
		}
		if opt.Label == "" {
			opt.Label = opt.ID
		}
		out = append(out, opt)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func decodeRecords(body []byte) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var records []map[string]any
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("relation: decode response: %w", err)
		}
		return records, nil
	}
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("relation: decode response: %w", err)
	}
	return envelope.Data, nil
}

func firstPresent(rec map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := rec[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func scalarString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
