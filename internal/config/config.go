// Package config loads the mirror configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/maruel/clickwiki/internal/clickup"
)

// ErrMissingCredentials is returned when neither an API key nor an access
// token is configured.
var ErrMissingCredentials = errors.New("missing ClickUp credentials: set clickup.api_key, CLICKUP_API_KEY or CLICKUP_ACCESS_TOKEN")

// Environment variables consulted by ApplyEnv.
const (
	EnvAPIKey      = "CLICKUP_API_KEY"
	EnvAccessToken = "CLICKUP_ACCESS_TOKEN"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.yml"

// Config is the resolved configuration of one run.
type Config struct {
	ClickUp           ClickUp `yaml:"clickup"`
	OutputPath        string  `yaml:"output_path"`
	MaxPageFetchDepth int     `yaml:"max_page_fetch_depth"`
	MaxDocumentDepth  int     `yaml:"max_document_depth"`
	Debug             bool    `yaml:"debug"`
	Git               Git     `yaml:"git"`
}

// ClickUp holds the API settings.
type ClickUp struct {
	APIKey            string `yaml:"api_key"`
	AccessToken       string `yaml:"access_token"`
	Host              string `yaml:"host"`
	APIURL            string `yaml:"api_url"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// Git controls committing the mirror after each run.
type Git struct {
	Enabled     bool   `yaml:"enabled"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		ClickUp: ClickUp{
			Host:              "app.clickup.com",
			APIURL:            clickup.BaseURL,
			RequestsPerMinute: clickup.DefaultRequestsPerMinute,
		},
		OutputPath:        ".clickup",
		MaxPageFetchDepth: -1,
		MaxDocumentDepth:  3,
		Git: Git{
			AuthorName:  "clickwiki",
			AuthorEmail: "clickwiki@localhost",
		},
	}
}

// Load reads path on top of Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv fills empty credentials from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.ClickUp.APIKey == "" {
		c.ClickUp.APIKey = getenv(EnvAPIKey)
	}
	if c.ClickUp.AccessToken == "" {
		c.ClickUp.AccessToken = getenv(EnvAccessToken)
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.ClickUp.APIKey == "" && c.ClickUp.AccessToken == "" {
		return ErrMissingCredentials
	}
	if c.OutputPath == "" {
		return errors.New("output_path is required")
	}
	if c.ClickUp.Host == "" {
		return errors.New("clickup.host is required")
	}
	if c.MaxPageFetchDepth < -1 {
		return fmt.Errorf("max_page_fetch_depth must be >= -1, got %d", c.MaxPageFetchDepth)
	}
	if c.MaxDocumentDepth < -1 {
		return fmt.Errorf("max_document_depth must be >= -1, got %d", c.MaxDocumentDepth)
	}
	if c.ClickUp.RequestsPerMinute <= 0 {
		return fmt.Errorf("clickup.requests_per_minute must be > 0, got %d", c.ClickUp.RequestsPerMinute)
	}
	if c.Git.Enabled && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		return errors.New("git.author_name and git.author_email are required when git is enabled")
	}
	return nil
}
