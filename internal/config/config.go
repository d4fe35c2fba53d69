// Package config loads repotools configuration from a YAML file, the
// environment and command-line overrides.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Supported forge backends.
const (
	BackendGH     = "gh"
	BackendGitHub = "github"
	BackendLocal  = "local"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "repotools.yaml"

// Config is the complete repotools configuration.
type Config struct {
	// Backend selects the repository listing source: gh, github or local.
	Backend string `yaml:"backend"`
	// Host is the forge host for the gh backend.
	Host string `yaml:"host"`
	// BaseURL overrides the REST API base URL for the github backend.
	BaseURL string `yaml:"base_url"`
	// Token is passed through to the forge client. Only read from the environment.
	Token string `yaml:"-"`
	// LocalRoot holds mirrors laid out as <root>/<owner>/<repo> for the local backend.
	LocalRoot string `yaml:"local_root"`
	// PrefixMode is "segment" or "literal"; see repotree.PrefixMode.
	PrefixMode string `yaml:"prefix_mode"`
	// Timeout bounds each forge HTTP request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	// FetchConcurrency bounds parallel file fetches in read_files_content.
	FetchConcurrency int `yaml:"fetch_concurrency"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP tool surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Backend:          BackendGH,
		Host:             "github.com",
		PrefixMode:       "segment",
		Timeout:          30 * time.Second,
		FetchConcurrency: 4,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // Path is chosen by the operator
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Backend = getEnv("REPOTOOLS_BACKEND", c.Backend)
	c.Host = getEnv("REPOTOOLS_HOST", c.Host)
	c.BaseURL = getEnv("REPOTOOLS_BASE_URL", c.BaseURL)
	c.LocalRoot = getEnv("REPOTOOLS_LOCAL_ROOT", c.LocalRoot)
	c.PrefixMode = getEnv("REPOTOOLS_PREFIX_MODE", c.PrefixMode)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Server.Addr = getEnv("REPOTOOLS_ADDR", c.Server.Addr)

	// GH_TOKEN takes precedence, matching the gh CLI.
	c.Token = getEnv("GH_TOKEN", getEnv("GITHUB_TOKEN", c.Token))
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend,
			validation.Required,
			validation.In(BackendGH, BackendGitHub, BackendLocal).Error("must be one of gh, github, local"),
		),
		validation.Field(&c.Host, validation.When(c.Backend == BackendGH, validation.Required)),
		validation.Field(&c.LocalRoot, validation.When(c.Backend == BackendLocal, validation.Required)),
		validation.Field(&c.PrefixMode, validation.In("segment", "literal").Error("must be segment or literal")),
		validation.Field(&c.FetchConcurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Log),
	)
}

// Validate checks the logging settings.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&l.Format, validation.In("text", "json", "console")),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
