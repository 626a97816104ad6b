// Package watcher reports batches of file changes under a repository root
// so callers can re-run analysis when the tree settles.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"repolens/internal/config"
	"repolens/internal/scanner"
	"repolens/internal/slogutil"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event represents a file system event. Path is relative to the root.
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// ChangeHandler is called with each settled batch of events.
type ChangeHandler func(events []Event)

// Config contains watcher configuration
type Config struct {
	DebounceMs     int
	IgnorePatterns []string
}

const defaultDebounceMs = 500

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{
		DebounceMs:     defaultDebounceMs,
		IgnorePatterns: []string{"*.log", "*.tmp", "*.swp", "*~", ".DS_Store"},
	}
}

// ConfigFromRepoConfig maps the watch section of cfg onto Config.
func ConfigFromRepoConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	if cfg != nil && cfg.Watch.DebounceMs > 0 {
		c.DebounceMs = cfg.Watch.DebounceMs
	}
	return c
}

// Watcher watches one repository tree. Directories that scans always skip
// are not watched.
type Watcher struct {
	root    string
	config  Config
	logger  *slog.Logger
	handler ChangeHandler

	fsw       *fsnotify.Watcher
	debouncer *BatchDebouncer

	mu      sync.Mutex
	watched map[string]bool
}

// New creates a watcher for root. Call Run to start delivering events.
func New(root string, cfg Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = defaultDebounceMs
	}
	if cfg.IgnorePatterns == nil {
		cfg.IgnorePatterns = DefaultConfig().IgnorePatterns
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		root:    abs,
		config:  cfg,
		logger:  slogutil.OrDiscard(logger),
		handler: handler,
		fsw:     fsw,
		watched: make(map[string]bool),
	}
	w.debouncer = NewBatchDebouncer(time.Duration(cfg.DebounceMs)*time.Millisecond, w.deliver)

	if err := w.addRecursive(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run delivers batches until ctx is done, then stops watching. Pending
// events are dropped on shutdown.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("Watching repository", "path", w.root, "debounceMs", w.config.DebounceMs)
	defer func() {
		w.debouncer.Cancel()
		_ = w.fsw.Close()
		w.logger.Info("File watcher stopped", "path", w.root)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", "error", err.Error())
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	rel = filepath.ToSlash(rel)
	if w.IsIgnored(rel) {
		return
	}

	var typ EventType
	switch {
	case ev.Has(fsnotify.Create):
		typ = EventCreate
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", rel, "error", err.Error())
			}
		}
	case ev.Has(fsnotify.Write):
		typ = EventModify
	case ev.Has(fsnotify.Remove):
		typ = EventDelete
		w.forget(ev.Name)
	case ev.Has(fsnotify.Rename):
		typ = EventRename
		w.forget(ev.Name)
	default:
		return
	}
	w.debouncer.Add(Event{Type: typ, Path: rel, Timestamp: time.Now()})
}

func (w *Watcher) deliver(events []Event) {
	w.logger.Debug("Changes detected", "path", w.root, "eventCount", len(events))
	if w.handler != nil {
		w.handler(events)
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && scanner.IsExcludedDir(d.Name()) {
			return filepath.SkipDir
		}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watched[p] {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		w.watched[p] = true
		return nil
	})
}

func (w *Watcher) forget(p string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, p)
}

// IsIgnored checks if a relative path matches an ignore pattern or lies in
// an always-excluded directory.
func (w *Watcher) IsIgnored(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if scanner.IsExcludedDir(dir) {
			return true
		}
	}
	base := parts[len(parts)-1]
	for _, pattern := range w.config.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// WatchedDirs returns the number of directories being watched.
func (w *Watcher) WatchedDirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}
