package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewbuilder/pkg/autoform"
	"github.com/goliatone/go-viewbuilder/pkg/model"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	messages     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
	err          error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRunAsksConditionalFieldAfterAnswer(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{Name: "kind", Type: model.FieldTypeEnum, Options: []model.FieldOption{{Value: "person"}, {Value: "company"}}},
		{Name: "company_name", Type: model.FieldTypeString, Hidden: model.Computed(`kind != "company"`)},
		{Name: "age", Type: model.FieldTypeNumber},
		{Name: "agree", Type: model.FieldTypeBoolean},
		{Name: "notes", Type: model.FieldTypeText, Hidden: model.Static(true)},
	}
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"Acme", "42"},
		confirm:   []bool{true},
	}

	values, err := New(autoform.New(fields), WithPromptDriver(driver)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := map[string]any{"kind": "company", "company_name": "Acme", "age": float64(42), "agree": true}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if driver.textPos != 0 {
		t.Fatalf("hidden text field was prompted")
	}
}

func TestRunSkipsFieldThatStaysHidden(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{Name: "kind", Type: model.FieldTypeEnum, Options: []model.FieldOption{{Value: "person"}, {Value: "company"}}},
		{Name: "company_name", Type: model.FieldTypeString, Hidden: model.Computed(`kind != "company"`)},
	}
	driver := &stubDriver{selectIdx: []int{0}}

	values, err := New(autoform.New(fields), WithPromptDriver(driver)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"kind": "person"}, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if driver.inputPos != 0 {
		t.Fatalf("hidden field was prompted")
	}
}

func TestRunSkipsReadOnlyFields(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{Name: "id", Type: model.FieldTypeString, ReadOnly: model.Static(true)},
		{Name: "secret", Type: model.FieldTypePassword, Required: true},
	}
	form := autoform.New(fields, autoform.WithValues(map[string]any{"id": "v-1"}))
	driver := &stubDriver{passwords: []string{"hunter2"}}

	values, err := New(form, WithPromptDriver(driver)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"id": "v-1", "secret": "hunter2"}, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Secret *"}, driver.messages); diff != "" {
		t.Fatalf("prompts (-want +got):\n%s", diff)
	}
}

func TestRunMultiSelectAndRelation(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{Name: "tags", Type: model.FieldTypeMultiSelect, Options: []model.FieldOption{{Value: "a"}, {Value: "b"}, {Value: "c"}}},
		{Name: "owner", Type: model.FieldTypeRelation, Relation: &model.RelationConfig{
			Options: []model.RelationOption{{ID: "u1", Label: "Ann"}, {ID: "u2", Label: "Bo"}},
		}},
		{Name: "body", Type: model.FieldTypeText},
	}
	driver := &stubDriver{
		multiIdx:  [][]int{{0, 2}},
		selectIdx: []int{1},
		textAreas: []string{"line one\nline two"},
	}

	values, err := New(autoform.New(fields), WithPromptDriver(driver)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := map[string]any{
		"tags":  []string{"a", "c"},
		"owner": "u2",
		"body":  "line one\nline two",
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
}

func TestRunWalksEveryTab(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{Name: "first", Type: model.FieldTypeString},
		{Name: "second", Type: model.FieldTypeString},
	}
	layout := &model.Layout{Tabs: []model.Tab{
		{Title: "One", Sections: []model.FormSection{{Fields: []string{"first"}}}},
		{Title: "Two", Sections: []model.FormSection{{Fields: []string{"second"}}}},
	}}
	driver := &stubDriver{inputs: []string{"1", "2"}}

	values, err := New(autoform.New(fields, autoform.WithLayout(layout)), WithPromptDriver(driver)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"first": "1", "second": "2"}, values); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"== One ==", "== Two =="}, driver.infoMessages); diff != "" {
		t.Fatalf("tab headers (-want +got):\n%s", diff)
	}
}

func TestRunPropagatesAbort(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{{Name: "name", Type: model.FieldTypeString}}
	driver := &stubDriver{err: ErrAborted}

	_, err := New(autoform.New(fields), WithPromptDriver(driver)).Run(context.Background())
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestValidatorUsesComponentNormaliser(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{Name: "email", Type: model.FieldTypeEmail, Required: true},
	}
	form := autoform.New(fields)
	view, err := form.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	validate := New(form, WithPromptDriver(&stubDriver{})).validator(view.Fields()[0])

	tests := []struct {
		answer  string
		wantErr bool
	}{
		{answer: "", wantErr: true},
		{answer: "not-an-email", wantErr: true},
		{answer: "a@example.com", wantErr: false},
	}
	for _, tc := range tests {
		if err := validate(tc.answer); (err != nil) != tc.wantErr {
			t.Fatalf("validate(%q) err=%v, wantErr %v", tc.answer, err, tc.wantErr)
		}
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	out, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.TrimSpace(string(out)) != "{}" {
		t.Fatalf("unexpected output %q", out)
	}
}
