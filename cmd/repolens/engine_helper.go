package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"repolens/internal/analysis"
	"repolens/internal/config"
	rerrors "repolens/internal/errors"
	"repolens/internal/paths"
	"repolens/internal/slogutil"
	"repolens/internal/storage"
)

// repoSession bundles what one command needs to work on a repository.
type repoSession struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	engine *analysis.Engine

	db    *storage.DB
	store *storage.AnalysisStore
}

// resolveRoot returns the absolute repository root named by args, or the
// working directory.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", rerrors.New(rerrors.ScanIOError, "Failed to resolve repository root", err).WithPath(root)
	}
	return abs, nil
}

// loadConfig reads and validates the repository configuration.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, rerrors.New(rerrors.ConfigInvalid, "Failed to load configuration", err).WithPath(root)
	}
	if err := cfg.Validate(); err != nil {
		return nil, rerrors.New(rerrors.ConfigInvalid, "Invalid configuration", err).WithPath(root)
	}
	return cfg, nil
}

// newLogger writes to stderr. Verbosity flags win over the configured level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if n := viper.GetInt("verbose"); n > 0 || viper.GetBool("quiet") {
		level = slogutil.LevelFromVerbosity(n, viper.GetBool("quiet"))
	}
	format := cfg.Logging.Format
	if f := viper.GetString("log-format"); f != "" {
		format = f
	}
	return slogutil.NewFormatLogger(os.Stderr, format, level)
}

// openSession loads config, logging and the engine for the repository in
// args. The analysis store is opened when caching is enabled.
func openSession(args []string, withCache bool) (*repoSession, error) {
	root, err := resolveRoot(args)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	s := &repoSession{root: root, cfg: cfg, logger: newLogger(cfg)}

	if withCache || cfg.Cache.Enabled {
		if err := s.openStore(); err != nil {
			// The cache is optional; analysis proceeds without it.
			s.logger.Warn("Analysis cache unavailable", "error", err.Error())
		}
	}
	s.engine = analysis.NewEngine(cfg, s.logger, s.store)
	return s, nil
}

func (s *repoSession) openStore() error {
	db, err := storage.Open(paths.CachePath(s.root, s.cfg), s.logger)
	if err != nil {
		return err
	}
	store, err := storage.NewAnalysisStore(db)
	if err != nil {
		_ = db.Close()
		return err
	}
	s.db, s.store = db, store
	return nil
}

// Close releases the analysis store.
func (s *repoSession) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warn("Failed to close cache database", "error", err.Error())
		}
	}
}
