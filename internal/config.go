package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/cookhub/internal/analytics"
	"github.com/starford/cookhub/internal/hubservice"
	"github.com/starford/cookhub/internal/source"
)

// Source kinds.
const (
	SourceGitHub = "github"
	SourceLocal  = "local"
)

// Analytics drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverNone     = "none"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Source    SourceConfig      `yaml:"source"`
	Hub       HubConfig         `yaml:"hub"`
	Analytics AnalyticsConfig   `yaml:"analytics"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := c.Hub.Validate(); err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SourceConfig describes where manifests and pages are read from.
//
// Kind selects the provider:
//   - "github" (default): raw files over HTTP at <BaseURL>/<Repo>/<branch>/<path>.
//   - "local": files under <LocalRoot>/<branch>/<path>.
type SourceConfig struct {
	Kind         string        `yaml:"kind"`
	BaseURL      string        `yaml:"base_url"`
	Repo         string        `yaml:"repo"`
	LocalRoot    string        `yaml:"local_root"`
	ManifestPath string        `yaml:"manifest_path"`
	ContentDir   string        `yaml:"content_dir"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Kind, validation.Required, validation.In(SourceGitHub, SourceLocal)),
		validation.Field(&c.BaseURL, validation.When(c.Kind == SourceGitHub, validation.Required)),
		validation.Field(&c.Repo, validation.When(c.Kind == SourceGitHub, validation.Required)),
		validation.Field(&c.LocalRoot, validation.When(c.Kind == SourceLocal, validation.Required)),
		validation.Field(&c.ManifestPath, validation.Required),
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// HubConfig holds catalog settings.
type HubConfig struct {
	CatalogGroup  string `yaml:"catalog_group"`
	DefaultBranch string `yaml:"default_branch"`
}

// Validate validates the hub configuration.
func (c *HubConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CatalogGroup, validation.Required),
	)
}

// AnalyticsConfig selects the access-event backend.
//
// DSN is a SQLite file path, a PostgreSQL URL or a Redis address depending
// on Driver. LiveFeed additionally publishes events on /api/events.
type AnalyticsConfig struct {
	Driver    string `yaml:"driver"`
	DSN       string `yaml:"dsn"`
	Stream    string `yaml:"stream"`
	QueueSize int    `yaml:"queue_size"`
	LiveFeed  bool   `yaml:"live_feed"`
}

// Validate validates the analytics configuration.
func (c *AnalyticsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required,
			validation.In(DriverSQLite, DriverPostgres, DriverRedis, DriverNone)),
		validation.Field(&c.DSN, validation.When(c.Driver != DriverNone, validation.Required)),
		validation.Field(&c.Stream, validation.When(c.Driver == DriverRedis, validation.Required)),
		validation.Field(&c.QueueSize, validation.Required, validation.Min(1)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Source: SourceConfig{
			Kind:         SourceGitHub,
			BaseURL:      source.DefaultBaseURL,
			Repo:         "jxnl/instructor",
			LocalRoot:    "./checkout",
			ManifestPath: hubservice.DefaultManifestPath,
			ContentDir:   hubservice.DefaultContentDir,
			Timeout:      10 * time.Second,
		},
		Hub: HubConfig{
			CatalogGroup:  hubservice.DefaultCatalogGroup,
			DefaultBranch: "main",
		},
		Analytics: AnalyticsConfig{
			Driver:    DriverSQLite,
			DSN:       "./cookhub.db",
			Stream:    analytics.DefaultStream,
			QueueSize: analytics.DefaultQueueSize,
			LiveFeed:  true,
		},
	}
}
