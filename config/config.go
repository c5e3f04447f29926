package config

// This file contains loading and validation of the railbridge YAML
// configuration. Credentials may come from the file or be overridden by
// process environment variables; a missing credential after the merge
// is a fatal configuration error.

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/railbridge/railbridge/testrail"
)

const (
	// EnvUsername and EnvAPIKey override the corresponding YAML fields.
	EnvUsername = "TESTRAIL_USERNAME"
	EnvAPIKey   = "TESTRAIL_API_KEY"

	// DefaultPath is used when no --config flag is given.
	DefaultPath = "testrail.yaml"

	defaultTimeoutSeconds = 5
)

// ErrMissingCredentials is returned when neither the YAML file nor the
// environment supplies a username and API key.
var ErrMissingCredentials = errors.New("config: TestRail credentials must be set via environment or YAML")

// CaseIDs is an ordered list of TestRail case IDs declared for one test.
// In YAML a single scalar is accepted and normalized into a one-element
// list; a sequence is used as-is, preserving declaration order.
type CaseIDs []string

func (c *CaseIDs) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = CaseIDs{value.Value}
		return nil
	case yaml.SequenceNode:
		ids := make(CaseIDs, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("config: line %d: case ID must be a scalar", item.Line)
			}
			ids = append(ids, item.Value)
		}
		*c = ids
		return nil
	default:
		return fmt.Errorf("config: line %d: case IDs must be a scalar or a list", value.Line)
	}
}

// TestRail holds the connection settings for the TestRail instance.
type TestRail struct {
	BaseURL        string `yaml:"base_url"`
	Username       string `yaml:"username"`
	APIKey         string `yaml:"api_key"`
	ProjectID      int    `yaml:"project_id"`
	SuiteID        int    `yaml:"suite_id"`
	TimeoutSeconds int    `yaml:"timeout"`
}

// Config is the full railbridge configuration: connection settings plus
// the case declarations mapping test identifiers to case IDs.
type Config struct {
	TestRail TestRail           `yaml:"testrail"`
	Cases    map[string]CaseIDs `yaml:"cases"`
}

// Load reads, validates and merges the configuration at path, failing
// when no credentials are available after the merge. Use LoadDryRun
// when no client will be constructed.
func Load(path string) (*Config, error) {
	cfg, err := LoadDryRun(path)
	if err != nil {
		return nil, err
	}
	if cfg.TestRail.Username == "" || cfg.TestRail.APIKey == "" {
		return nil, ErrMissingCredentials
	}
	return cfg, nil
}

// LoadDryRun reads, validates and merges the configuration at path
// without requiring credentials. The raw document is checked against an
// embedded JSON schema before decoding, so structural mistakes fail
// with a precise message instead of a zero value downstream.
func LoadDryRun(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := validateSchema(raw); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if v := os.Getenv(EnvUsername); v != "" {
		cfg.TestRail.Username = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.TestRail.APIKey = v
	}

	if cfg.TestRail.TimeoutSeconds <= 0 {
		cfg.TestRail.TimeoutSeconds = defaultTimeoutSeconds
	}

	return &cfg, nil
}

// DeclaredCases returns the case declarations in the plain form the
// mapper consumes.
func (c *Config) DeclaredCases() map[string][]string {
	declared := make(map[string][]string, len(c.Cases))
	for id, ids := range c.Cases {
		declared[id] = ids
	}
	return declared
}

// ClientConfig converts the loaded settings into the API client form.
func (c *Config) ClientConfig() testrail.Config {
	return testrail.Config{
		BaseURL:   c.TestRail.BaseURL,
		Username:  c.TestRail.Username,
		APIKey:    c.TestRail.APIKey,
		ProjectID: c.TestRail.ProjectID,
		SuiteID:   c.TestRail.SuiteID,
		Timeout:   time.Duration(c.TestRail.TimeoutSeconds) * time.Second,
	}
}
