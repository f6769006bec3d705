// Package tui fills an autoform.Form from the terminal. Fields are asked in
// layout order; hidden and read-only predicates are re-evaluated after every
// answer so conditional fields appear and disappear as the user types.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/components"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

var (
	// ErrAborted signals the user aborted input (Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoOptions is returned when a choice field has nothing to choose from.
	ErrNoOptions = errors.New("tui: field has no options")
)

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session walks a form's visible, editable fields.
type Session struct {
	form   *autoform.Form
	driver PromptDriver
	logger *slog.Logger
}

// New creates a session over form using the survey driver by default.
func New(form *autoform.Form, options ...Option) *Session {
	s := &Session{form: form, logger: slog.Default()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver()
	}
	return s
}

// Run prompts until every visible, editable field has been asked once and
// returns the visible values.
func (s *Session) Run(ctx context.Context) (map[string]any, error) {
	view, err := s.form.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	tabs := len(view.Tabs)
	if tabs == 0 {
		tabs = 1
	}

	asked := make(map[string]bool)
	for tab := 0; tab < tabs; tab++ {
		if len(view.Tabs) > 0 {
			s.form.SelectTab(tab)
			if err := s.driver.Info(ctx, "== "+view.Tabs[tab].Title+" =="); err != nil {
				return nil, err
			}
		}
		for {
			current, err := s.form.Resolve(ctx)
			if err != nil {
				return nil, err
			}
			next, ok := nextField(current, asked)
			if !ok {
				break
			}
			asked[next.Definition.Name] = true

			value, err := s.ask(ctx, next)
			if err != nil {
				return nil, err
			}
			if value == nil {
				continue
			}
			if err := s.form.Change(next.Definition.Name, value); err != nil {
				s.logger.Warn("answer rejected", "field", next.Definition.Name, "error", err)
			}
		}
	}
	return s.form.VisibleValues(), nil
}

func nextField(view *autoform.View, asked map[string]bool) (autoform.FieldView, bool) {
	for _, field := range view.Fields() {
		if asked[field.Definition.Name] || field.Props.Disabled {
			continue
		}
		return field, true
	}
	return autoform.FieldView{}, false
}

func (s *Session) ask(ctx context.Context, field autoform.FieldView) (any, error) {
	props := field.Props
	message := props.Label
	if props.Required {
		message += " *"
	}
	help := props.Description
	current := stringOf(props.Value)
	validate := s.validator(field)

	switch field.Component {
	case components.ComponentBoolean:
		def, _ := props.Value.(bool)
		return s.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: help, Default: def})

	case components.ComponentPassword:
		return s.driver.Password(ctx, InputConfig{Message: message, Help: help, Validator: validate})

	case components.ComponentText, components.ComponentRichText, components.ComponentJSON:
		return s.driver.TextArea(ctx, TextAreaConfig{Message: message, Help: help, Default: current, Validator: validate})

	case components.ComponentEnum:
		labels, values := fieldOptions(props.Options)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoOptions, props.Name)
		}
		idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Help: help, Options: labels, DefaultIndex: indexOf(values, current)})
		if err != nil || idx < 0 {
			return nil, err
		}
		return values[idx], nil

	case components.ComponentCheckbox, components.ComponentMultiSelect:
		labels, values := fieldOptions(props.Options)
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoOptions, props.Name)
		}
		picked, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message: message, Help: help, Options: labels,
			Defaults: indicesOf(values, components.StringList(props.Value)),
		})
		if err != nil {
			return nil, err
		}
		return pick(values, picked), nil

	case components.ComponentRelation:
		return s.askRelation(ctx, field, message, help)

	default:
		return s.driver.Input(ctx, InputConfig{Message: message, Help: help, Default: current, Validator: validate})
	}
}

func (s *Session) askRelation(ctx context.Context, field autoform.FieldView, message, help string) (any, error) {
	props := field.Props
	options := props.Relation
	if len(options) == 0 && props.RelationConfig != nil {
		options = props.RelationConfig.Options
	}
	var labels, ids []string
	for _, opt := range options {
		if opt.Disabled {
			continue
		}
		labels = append(labels, opt.Label)
		ids = append(ids, opt.ID)
	}
	if len(ids) == 0 {
		empty := components.DefaultRelationEmptyMessage
		if props.RelationConfig != nil && props.RelationConfig.EmptyMessage != "" {
			empty = props.RelationConfig.EmptyMessage
		}
		return nil, s.driver.Info(ctx, props.Label+": "+empty)
	}

	if props.RelationConfig != nil && props.RelationConfig.Multiple {
		picked, err := s.driver.MultiSelect(ctx, SelectConfig{
			Message: message, Help: help, Options: labels,
			Defaults: indicesOf(ids, components.StringList(props.Value)),
		})
		if err != nil {
			return nil, err
		}
		if max := props.RelationConfig.MaxItems; max > 0 && len(picked) > max {
			picked = picked[:max]
		}
		return pick(ids, picked), nil
	}

	idx, err := s.driver.Select(ctx, SelectConfig{Message: message, Help: help, Options: labels, DefaultIndex: indexOf(ids, stringOf(props.Value))})
	if err != nil || idx < 0 {
		return nil, err
	}
	return ids[idx], nil
}

// validator checks required-ness and runs the component normaliser.
func (s *Session) validator(field autoform.FieldView) func(string) error {
	registry := s.form.Registry()
	return func(answer string) error {
		if strings.TrimSpace(answer) == "" {
			if field.Props.Required {
				return errors.New("value is required")
			}
			return nil
		}
		if _, err := registry.Normalize(field.Definition, answer); err != nil {
			return err
		}
		return nil
	}
}

func fieldOptions(options []model.FieldOption) (labels, values []string) {
	for _, opt := range options {
		if opt.Disabled {
			continue
		}
		labels = append(labels, opt.DisplayLabel())
		values = append(values, opt.Value)
	}
	return labels, values
}

func pick(values []string, indices []int) []string {
	out := make([]string, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(values) {
			out = append(out, values[i])
		}
	}
	return out
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		if data, err := json.Marshal(t); err == nil {
			return string(data)
		}
		return fmt.Sprint(t)
	}
}

// Encode renders collected values as indented JSON.
func Encode(values map[string]any) ([]byte, error) {
	if values == nil {
		values = map[string]any{}
	}
	return json.MarshalIndent(values, "", "  ")
}
