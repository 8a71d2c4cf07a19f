package cliconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Config holds flag defaults read from a config file. zero values leave the
// flag default untouched.
type Config struct {
	Environment    string `json:"environment" yaml:"environment" toml:"environment"`
	PlanFile       string `json:"plan_file" yaml:"plan_file" toml:"plan_file"`
	ReportPath     string `json:"report_path" yaml:"report_path" toml:"report_path"`
	ReportDir      string `json:"report_dir" yaml:"report_dir" toml:"report_dir"`
	OutputDir      string `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	OutputFile     string `json:"output_file" yaml:"output_file" toml:"output_file"`
	FailOnCritical *bool  `json:"fail_on_critical" yaml:"fail_on_critical" toml:"fail_on_critical"`
}

// Load reads a TOML, YAML or JSON config file, chosen by extension.
func Load(filePath string) (*Config, error) {
	fileExtension := strings.ToLower(filepath.Ext(filePath))

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	switch fileExtension {
	case ".toml":
		if err := toml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}
	return &config, nil
}

// Values maps flag names onto the configured values, only set fields are included
func (c *Config) Values() map[string]string {
	values := map[string]string{}
	set := func(flag, value string) {
		if value != "" {
			values[flag] = value
		}
	}
	set("environment", c.Environment)
	set("plan-file", c.PlanFile)
	set("report-path", c.ReportPath)
	set("report-dir", c.ReportDir)
	set("output-dir", c.OutputDir)
	set("output-file", c.OutputFile)
	if c.FailOnCritical != nil {
		values["fail-on-critical"] = fmt.Sprintf("%t", *c.FailOnCritical)
	}
	return values
}
