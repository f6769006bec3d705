package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-viewbuilder/pkg/model"
	"github.com/goliatone/go-viewbuilder/pkg/predicate"
)

// Issue is a single validation problem. Path is a JSON pointer into the
// candidate document; Field names the field the issue belongs to, if any.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError aggregates issues.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, "; ")
}

// Result is the outcome of SafeValidate. Data is set only on success.
type Result struct {
	Success bool              `json:"success"`
	Data    *model.ViewSchema `json:"data,omitempty"`
	Error   error             `json:"-"`
	Issues  []Issue           `json:"issues,omitempty"`
}

// SafeValidate checks that candidate is a well-formed view schema. candidate
// may be JSON text ([]byte, string, json.RawMessage), a decoded value such as
// map[string]any, or a ViewSchema. It never panics and has no side effects.
func SafeValidate(candidate any) Result {
	data, err := candidateBytes(candidate)
	if err != nil {
		return failed(Issue{Message: err.Error()})
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return failed(Issue{Message: "invalid JSON: " + err.Error()})
	}
	obj, ok := generic.(map[string]any)
	if !ok {
		return failed(Issue{Message: "schema must be a JSON object"})
	}

	v := &validator{}
	v.structure(obj)
	if len(v.issues) > 0 {
		return failed(v.issues...)
	}

	var schema model.ViewSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return failed(Issue{Message: err.Error()})
	}
	v.semantics(&schema)
	if len(v.issues) > 0 {
		return failed(v.issues...)
	}
	return Result{Success: true, Data: &schema}
}

// Validate is SafeValidate returning the schema or the aggregated error.
func Validate(candidate any) (*model.ViewSchema, error) {
	res := SafeValidate(candidate)
	if !res.Success {
		return nil, res.Error
	}
	return res.Data, nil
}

func failed(issues ...Issue) Result {
	return Result{Error: &ValidationError{Issues: issues}, Issues: issues}
}

func candidateBytes(candidate any) ([]byte, error) {
	switch c := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("schema is required")
	case []byte:
		return c, nil
	case json.RawMessage:
		return c, nil
	case string:
		return []byte(c), nil
	case *model.ViewSchema:
		if c == nil {
			return nil, fmt.Errorf("schema is required")
		}
	}
	data, err := json.Marshal(candidate)
	if err != nil {
		return nil, fmt.Errorf("schema is not serialisable: %v", err)
	}
	return data, nil
}

type validator struct {
	issues []Issue
}

func (v *validator) add(path, field, format string, args ...any) {
	v.issues = append(v.issues, Issue{Path: path, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) structure(obj map[string]any) {
	rawFields, ok := obj["fields"]
	if !ok {
		v.add("/fields", "", "fields is required")
		return
	}
	fields, ok := rawFields.([]any)
	if !ok {
		v.add("/fields", "", "fields must be an array")
		return
	}

	seen := make(map[string]int, len(fields))
	for i, raw := range fields {
		path := "/fields/" + strconv.Itoa(i)
		field, ok := raw.(map[string]any)
		if !ok {
			v.add(path, "", "field must be an object")
			continue
		}

		name, _ := field["name"].(string)
		if strings.TrimSpace(name) == "" {
			v.add(path+"/name", "", "name is required")
		} else if first, dup := seen[name]; dup {
			v.add(path+"/name", name, "duplicate field name (first declared at /fields/%d)", first)
		} else {
			seen[name] = i
		}

		if typ, _ := field["type"].(string); strings.TrimSpace(typ) == "" {
			v.add(path+"/type", name, "type is required")
		}

		if rawOpts, ok := field["options"]; ok && rawOpts != nil {
			opts, ok := rawOpts.([]any)
			if !ok {
				v.add(path+"/options", name, "options must be an array")
				continue
			}
			for j, rawOpt := range opts {
				optPath := path + "/options/" + strconv.Itoa(j)
				opt, ok := rawOpt.(map[string]any)
				if !ok {
					v.add(optPath, name, "option must be an object")
					continue
				}
				if value, _ := opt["value"].(string); strings.TrimSpace(value) == "" {
					v.add(optPath+"/value", name, "option value is required")
				}
			}
		}
	}
}

func (v *validator) semantics(schema *model.ViewSchema) {
	// Candidates come from clients; compile them into a throwaway evaluator so
	// the shared cache only holds expressions that are actually rendered.
	eval := predicate.New()
	for i, field := range schema.Fields {
		path := "/fields/" + strconv.Itoa(i)
		if err := eval.Check(field.Hidden); err != nil {
			v.add(path+"/hidden", field.Name, "%v", err)
		}
		if err := eval.Check(field.ReadOnly); err != nil {
			v.add(path+"/readOnly", field.Name, "%v", err)
		}
		if rel := field.Relation; rel != nil && rel.MaxItems < 0 {
			v.add(path+"/relation/maxItems", field.Name, "maxItems must not be negative")
		}
	}

	if schema.Layout == nil {
		return
	}
	declared := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		declared[field.Name] = struct{}{}
	}
	for t, tab := range schema.Layout.Tabs {
		tabPath := "/layout/tabs/" + strconv.Itoa(t)
		if strings.TrimSpace(tab.Title) == "" {
			v.add(tabPath+"/title", "", "tab title is required")
		}
		v.sections(tabPath+"/sections", tab.Sections, declared)
	}
	v.sections("/layout/sections", schema.Layout.Sections, declared)
}

func (v *validator) sections(base string, sections []model.FormSection, declared map[string]struct{}) {
	for s, section := range sections {
		path := base + "/" + strconv.Itoa(s)
		if section.Columns != 0 && (section.Columns < 1 || section.Columns > model.MaxSectionColumns) {
			v.add(path+"/columns", "", "columns must be between 1 and %d", model.MaxSectionColumns)
		}
		for f, name := range section.Fields {
			if _, ok := declared[name]; !ok {
				v.add(path+"/fields/"+strconv.Itoa(f), name, "unknown field %q", name)
			}
		}
	}
}
