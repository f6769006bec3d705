package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RelationOption is a candidate value for a relation field.
type RelationOption struct {
	ID          string         `json:"id" yaml:"id"`
	Label       string         `json:"label" yaml:"label"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Disabled    bool           `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Data        map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// UnmarshalJSON accepts numeric ids and normalises them to strings.
func (o *RelationOption) UnmarshalJSON(data []byte) error {
	type alias RelationOption
	var raw struct {
		alias
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = RelationOption(raw.alias)
	id, err := normalizeID(raw.ID)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func normalizeID(raw json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("model: relation option id must be a string or number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// FindOption returns the option with the given id.
func FindOption(options []RelationOption, id string) (RelationOption, bool) {
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return RelationOption{}, false
}
