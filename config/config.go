// Package config models the endpoints.json run configuration. A missing or
// unreadable file is recoverable: callers fall back to Default() and derived
// thresholds.
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Token is a named auth token injected into generated requests.
type Token struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// ThinkTime bounds the simulated user pause between requests, in seconds.
type ThinkTime struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Endpoint describes one logical endpoint under test.
type Endpoint struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	// ThresholdMs is the maximum acceptable p95 latency. nil means the
	// derived default applies.
	ThresholdMs *float64          `json:"threshold_ms,omitempty"`
	Weight      int               `json:"weight,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	ThinkTime   *ThinkTime        `json:"thinkTime,omitempty"`
	Body        json.RawMessage   `json:"body,omitempty"`
}

// Config is the full endpoints.json document.
type Config struct {
	ReportTitle    string     `json:"report_title,omitempty"`
	ReportSubtitle string     `json:"report_subtitle,omitempty"`
	BaseURL        string     `json:"base_url"`
	Tokens         []Token    `json:"tokens,omitempty"`
	Endpoints      []Endpoint `json:"endpoints"`
}

// Default returns the configuration used when no file is available: no
// declared endpoints, so resolution falls through to tag and URL based
// naming and thresholds stay unset.
func Default() *Config {
	return &Config{
		ReportTitle:    "k6 Load Test Report",
		ReportSubtitle: "Performance testing results",
	}
}

// Load reads and decodes an endpoints.json file. On any failure it returns
// Default() together with the wrapped cause so the caller can log it and
// keep going.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Default(), errors.Wrapf(err, "config %s not readable", path)
	}
	cfg := Default()
	if err := json.Unmarshal(raw, cfg); err != nil {
		return Default(), errors.Wrapf(err, "config %s not valid JSON", path)
	}
	return cfg, nil
}

// Validate enforces the contract a run submission requires. Report
// generation never calls this; it tolerates any config.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("missing required field: base_url")
	}
	if len(c.Endpoints) == 0 {
		return errors.New("at least one endpoint is required")
	}
	for i, e := range c.Endpoints {
		if e.Name == "" {
			return errors.Errorf("endpoint %d missing required field: name", i+1)
		}
		if e.Method == "" {
			return errors.Errorf("endpoint %d missing required field: method", i+1)
		}
		if e.URL == "" {
			return errors.Errorf("endpoint %d missing required field: url", i+1)
		}
	}
	return nil
}
