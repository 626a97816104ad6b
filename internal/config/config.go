package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CurrentVersion is the only config schema version this build reads.
const CurrentVersion = 1

// StateDirName is the per-repository directory holding config and cache.
const StateDirName = ".repolens"

// EnvPrefix prefixes every environment override, e.g. REPOLENS_CONTEXT_MAXTOKENS.
const EnvPrefix = "REPOLENS"

// Config represents the complete repolens configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Scan       ScanConfig       `json:"scan" mapstructure:"scan"`
	Context    ContextConfig    `json:"context" mapstructure:"context"`
	Gaps       GapsConfig       `json:"gaps" mapstructure:"gaps"`
	Classifier ClassifierConfig `json:"classifier" mapstructure:"classifier"`
	Quality    QualityConfig    `json:"quality" mapstructure:"quality"`
	Graph      GraphConfig      `json:"graph" mapstructure:"graph"`
	Cache      CacheConfig      `json:"cache" mapstructure:"cache"`
	Watch      WatchConfig      `json:"watch" mapstructure:"watch"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls which files enter a snapshot
type ScanConfig struct {
	Include          []string `json:"include" mapstructure:"include"`
	Exclude          []string `json:"exclude" mapstructure:"exclude"`
	RespectGitignore bool     `json:"respectGitignore" mapstructure:"respectGitignore"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	MaxFiles         int      `json:"maxFiles" mapstructure:"maxFiles"`
	MaxDepth         int      `json:"maxDepth" mapstructure:"maxDepth"`
	Workers          int      `json:"workers" mapstructure:"workers"`
}

// ContextConfig contains context selection budgets
type ContextConfig struct {
	MaxTokens      int  `json:"maxTokens" mapstructure:"maxTokens"`
	MaxFiles       int  `json:"maxFiles" mapstructure:"maxFiles"`
	ExpansionDepth int  `json:"expansionDepth" mapstructure:"expansionDepth"`
	IncludeRelated bool `json:"includeRelated" mapstructure:"includeRelated"`
}

// GapsConfig contains gap detector thresholds
type GapsConfig struct {
	SmallFileThreshold int `json:"smallFileThreshold" mapstructure:"smallFileThreshold"`
}

// ClassifierConfig contains classifier thresholds
type ClassifierConfig struct {
	ExistingAppComponentThreshold int `json:"existingAppComponentThreshold" mapstructure:"existingAppComponentThreshold"`
}

// QualityConfig contains quality analyzer settings
type QualityConfig struct {
	HousePackages  []string `json:"housePackages" mapstructure:"housePackages"`
	CoverageTarget int      `json:"coverageTarget" mapstructure:"coverageTarget"`
}

// GraphConfig contains dependency graph settings
type GraphConfig struct {
	SCIPIndexPath string `json:"scipIndexPath" mapstructure:"scipIndexPath"`
	UseTreeSitter bool   `json:"useTreeSitter" mapstructure:"useTreeSitter"`
}

// CacheConfig contains analysis cache settings
type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// WatchConfig contains watch mode settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" mapstructure:"debounceMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Scan: ScanConfig{
			Include:          []string{},
			Exclude:          []string{},
			RespectGitignore: true,
			MaxFileSizeBytes: 1 << 20,
			MaxFiles:         0,
			MaxDepth:         32,
			Workers:          0,
		},
		Context: ContextConfig{
			MaxTokens:      4000,
			MaxFiles:       10,
			ExpansionDepth: 2,
			IncludeRelated: false,
		},
		Gaps: GapsConfig{
			SmallFileThreshold: 10,
		},
		Classifier: ClassifierConfig{
			ExistingAppComponentThreshold: 5,
		},
		Quality: QualityConfig{
			HousePackages:  []string{},
			CoverageTarget: 60,
		},
		Graph: GraphConfig{
			SCIPIndexPath: "index.scip",
			UseTreeSitter: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    filepath.Join(StateDirName, "cache.db"),
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// LoadConfig loads configuration from .repolens/config.json under repoRoot.
// Missing files yield the defaults; REPOLENS_* environment variables
// override both.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, StateDirName))
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)

	v.SetDefault("scan.include", d.Scan.Include)
	v.SetDefault("scan.exclude", d.Scan.Exclude)
	v.SetDefault("scan.respectGitignore", d.Scan.RespectGitignore)
	v.SetDefault("scan.maxFileSizeBytes", d.Scan.MaxFileSizeBytes)
	v.SetDefault("scan.maxFiles", d.Scan.MaxFiles)
	v.SetDefault("scan.maxDepth", d.Scan.MaxDepth)
	v.SetDefault("scan.workers", d.Scan.Workers)

	v.SetDefault("context.maxTokens", d.Context.MaxTokens)
	v.SetDefault("context.maxFiles", d.Context.MaxFiles)
	v.SetDefault("context.expansionDepth", d.Context.ExpansionDepth)
	v.SetDefault("context.includeRelated", d.Context.IncludeRelated)

	v.SetDefault("gaps.smallFileThreshold", d.Gaps.SmallFileThreshold)
	v.SetDefault("classifier.existingAppComponentThreshold", d.Classifier.ExistingAppComponentThreshold)

	v.SetDefault("quality.housePackages", d.Quality.HousePackages)
	v.SetDefault("quality.coverageTarget", d.Quality.CoverageTarget)

	v.SetDefault("graph.scipIndexPath", d.Graph.SCIPIndexPath)
	v.SetDefault("graph.useTreeSitter", d.Graph.UseTreeSitter)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)

	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)

	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes the configuration to .repolens/config.json, creating the directory.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scan.MaxFileSizeBytes <= 0 {
		return &ConfigError{Field: "scan.maxFileSizeBytes", Message: "must be positive"}
	}
	if c.Scan.MaxDepth <= 0 {
		return &ConfigError{Field: "scan.maxDepth", Message: "must be positive"}
	}
	if c.Scan.MaxFiles < 0 || c.Scan.Workers < 0 {
		return &ConfigError{Field: "scan", Message: "maxFiles and workers must not be negative"}
	}
	if c.Context.MaxTokens <= 0 {
		return &ConfigError{Field: "context.maxTokens", Message: "must be positive"}
	}
	if c.Context.MaxFiles <= 0 {
		return &ConfigError{Field: "context.maxFiles", Message: "must be positive"}
	}
	if c.Context.ExpansionDepth < 0 {
		return &ConfigError{Field: "context.expansionDepth", Message: "must not be negative"}
	}
	if c.Gaps.SmallFileThreshold < 0 {
		return &ConfigError{Field: "gaps.smallFileThreshold", Message: "must not be negative"}
	}
	if c.Quality.CoverageTarget < 0 || c.Quality.CoverageTarget > 100 {
		return &ConfigError{Field: "quality.coverageTarget", Message: "must be between 0 and 100"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
