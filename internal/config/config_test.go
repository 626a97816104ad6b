package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Context.MaxTokens != 4000 {
		t.Errorf("Context.MaxTokens = %d, want 4000", cfg.Context.MaxTokens)
	}
	if cfg.Context.MaxFiles != 10 {
		t.Errorf("Context.MaxFiles = %d, want 10", cfg.Context.MaxFiles)
	}
	if cfg.Context.ExpansionDepth != 2 {
		t.Errorf("Context.ExpansionDepth = %d, want 2", cfg.Context.ExpansionDepth)
	}
	if cfg.Classifier.ExistingAppComponentThreshold != 5 {
		t.Errorf("ExistingAppComponentThreshold = %d, want 5", cfg.Classifier.ExistingAppComponentThreshold)
	}
	if cfg.Gaps.SmallFileThreshold != 10 {
		t.Errorf("SmallFileThreshold = %d, want 10", cfg.Gaps.SmallFileThreshold)
	}
	if !cfg.Scan.RespectGitignore {
		t.Error("RespectGitignore should be enabled by default")
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, "", false},
		{"bad version", func(c *Config) { c.Version = 7 }, "version", true},
		{"zero tokens", func(c *Config) { c.Context.MaxTokens = 0 }, "context.maxTokens", true},
		{"zero files", func(c *Config) { c.Context.MaxFiles = 0 }, "context.maxFiles", true},
		{"negative depth", func(c *Config) { c.Context.ExpansionDepth = -1 }, "context.expansionDepth", true},
		{"coverage target above 100", func(c *Config) { c.Quality.CoverageTarget = 101 }, "quality.coverageTarget", true},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format", true},
		{"json log format", func(c *Config) { c.Logging.Format = "JSON" }, "", false},
		{"zero scan depth", func(c *Config) { c.Scan.MaxDepth = 0 }, "scan.maxDepth", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			ce, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("Validate() error type = %T, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "version", Message: "unsupported config version"}

	want := "config error in field 'version': unsupported config version"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d (default)", cfg.Version, CurrentVersion)
	}
	if cfg.Context.MaxTokens != 4000 {
		t.Errorf("Context.MaxTokens = %d, want 4000", cfg.Context.MaxTokens)
	}
	if cfg.Logging.Format != "human" {
		t.Errorf("Logging.Format = %q, want human", cfg.Logging.Format)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	stateDir := filepath.Join(tmpDir, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatalf("Failed to create state dir: %v", err)
	}

	configContent := `{
		"version": 1,
		"scan": {"exclude": ["docs/archive/**"], "maxDepth": 8},
		"context": {"maxTokens": 1200},
		"quality": {"housePackages": ["@acme/ui"]}
	}`
	if err := os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Context.MaxTokens != 1200 {
		t.Errorf("Context.MaxTokens = %d, want 1200", cfg.Context.MaxTokens)
	}
	if cfg.Context.MaxFiles != 10 {
		t.Errorf("Context.MaxFiles = %d, want default 10", cfg.Context.MaxFiles)
	}
	if cfg.Scan.MaxDepth != 8 {
		t.Errorf("Scan.MaxDepth = %d, want 8", cfg.Scan.MaxDepth)
	}
	if len(cfg.Scan.Exclude) != 1 || cfg.Scan.Exclude[0] != "docs/archive/**" {
		t.Errorf("Scan.Exclude = %v, want [docs/archive/**]", cfg.Scan.Exclude)
	}
	if len(cfg.Quality.HousePackages) != 1 || cfg.Quality.HousePackages[0] != "@acme/ui" {
		t.Errorf("Quality.HousePackages = %v, want [@acme/ui]", cfg.Quality.HousePackages)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("REPOLENS_CONTEXT_MAXTOKENS", "900")
	t.Setenv("REPOLENS_LOGGING_LEVEL", "debug")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Context.MaxTokens != 900 {
		t.Errorf("Context.MaxTokens = %d, want 900", cfg.Context.MaxTokens)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	stateDir := filepath.Join(tmpDir, StateDirName)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Error("LoadConfig() should fail on malformed JSON")
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Context.MaxFiles = 3
	cfg.Graph.SCIPIndexPath = "build/index.scip"

	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Context.MaxFiles != 3 {
		t.Errorf("Context.MaxFiles = %d, want 3", loaded.Context.MaxFiles)
	}
	if loaded.Graph.SCIPIndexPath != "build/index.scip" {
		t.Errorf("Graph.SCIPIndexPath = %q, want build/index.scip", loaded.Graph.SCIPIndexPath)
	}
}
