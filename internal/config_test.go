package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/cookhub/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should pass: %v", err)
	}
}

func TestSourceConfig_GitHubRequiresRepo(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Repo = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("github source without repo should fail")
	}
	if !strings.Contains(err.Error(), "source") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSourceConfig_LocalRequiresRoot(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Kind = SourceLocal
	cfg.Source.Repo = ""
	cfg.Source.LocalRoot = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("local source without root should fail")
	}

	cfg.Source.LocalRoot = "/srv/checkout"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("local source with root should pass: %v", err)
	}
}

func TestSourceConfig_InvalidKind(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Source.Kind = "svn"
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid kind should fail validation")
	}
}

func TestHubConfig_RequiresGroup(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Hub.CatalogGroup = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty catalog group should fail")
	}
}

func TestAnalyticsConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *AnalyticsConfig)
		wantErr bool
	}{
		{"none without dsn", func(c *AnalyticsConfig) { c.Driver = DriverNone; c.DSN = "" }, false},
		{"sqlite without dsn", func(c *AnalyticsConfig) { c.DSN = "" }, true},
		{"redis without stream", func(c *AnalyticsConfig) { c.Driver = DriverRedis; c.Stream = "" }, true},
		{"unknown driver", func(c *AnalyticsConfig) { c.Driver = "mongo" }, true},
		{"zero queue", func(c *AnalyticsConfig) { c.QueueSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(&cfg.Analytics)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `app:
  log_level: DEBUG
  http:
    port: 9090
source:
  repo: acme/docs
  timeout: 3s
hub:
  catalog_group: Recipes
analytics:
  driver: none
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Source.Repo != "acme/docs" || cfg.Source.Timeout != 3*time.Second {
		t.Errorf("source = %+v", cfg.Source)
	}
	if cfg.Source.ManifestPath != "mkdocs.yml" || cfg.Source.ContentDir != "docs/hub" {
		t.Errorf("defaults lost: %+v", cfg.Source)
	}
	if cfg.Hub.CatalogGroup != "Recipes" || cfg.Analytics.Driver != DriverNone {
		t.Errorf("hub/analytics = %+v / %+v", cfg.Hub, cfg.Analytics)
	}
}

func TestShippedConfigIsValidWithoutEnv(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(filepath.Join("..", "config", "config.yaml"), cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Repo != "jxnl/instructor" {
		t.Errorf("repo = %q, want the shipped default", cfg.Source.Repo)
	}
}
