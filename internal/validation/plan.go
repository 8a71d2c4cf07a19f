package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Plan is the subset of `terraform show -json` output the validators read.
type Plan struct {
	PlannedValues PlannedValues `json:"planned_values"`
}

type PlannedValues struct {
	RootModule Module `json:"root_module"`
}

type Module struct {
	Address      string     `json:"address,omitempty"`
	Resources    []Resource `json:"resources"`
	ChildModules []Module   `json:"child_modules,omitempty"`
}

type Resource struct {
	Address      string                 `json:"address"`
	Type         string                 `json:"type"`
	Name         string                 `json:"name"`
	ProviderName string                 `json:"provider_name"`
	Values       map[string]interface{} `json:"values"`
}

// load a plan file
func LoadPlan(path string) (*Plan, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan file: %w", err)
	}
	var plan Plan
	if err := json.Unmarshal(content, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}
	return &plan, nil
}

// Resources flattens the root module and every nested child module.
func (p *Plan) Resources() []Resource {
	if p == nil {
		return nil
	}
	resources := []Resource{}
	var walk func(m Module)
	walk = func(m Module) {
		resources = append(resources, m.Resources...)
		for _, child := range m.ChildModules {
			walk(child)
		}
	}
	walk(p.PlannedValues.RootModule)
	return resources
}

// ResourcesOfType returns every resource whose type is resourceType.
func (p *Plan) ResourcesOfType(resourceType string) []Resource {
	matched := []Resource{}
	for _, resource := range p.Resources() {
		if resource.Type == resourceType {
			matched = append(matched, resource)
		}
	}
	return matched
}

func (r Resource) StringValue(key string) string {
	if value, ok := r.Values[key].(string); ok {
		return value
	}
	return ""
}

func (r Resource) BoolValue(key string) bool {
	value, _ := r.Values[key].(bool)
	return value
}

// ListValue returns a list attribute, nil when absent or not a list.
func (r Resource) ListValue(key string) []interface{} {
	value, _ := r.Values[key].([]interface{})
	return value
}

// WriteReport writes v as indented json to dir/filename, creating dir.
func WriteReport(dir, filename string, v interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

var errEmptyReport = errors.New("report is empty")

// load a json report written by one of the validators. an empty document
// ({}, [], null) is an error, it carries no results to analyze.
func loadReport(path string, v interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isEmptyDocument(content) {
		return errEmptyReport
	}
	return json.Unmarshal(content, v)
}

func isEmptyDocument(content []byte) bool {
	var document interface{}
	if err := json.Unmarshal(content, &document); err != nil {
		return false
	}
	switch value := document.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(value) == 0
	case []interface{}:
		return len(value) == 0
	}
	return false
}
