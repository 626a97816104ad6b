// Package paths resolves repository-relative paths and the per-repo state directory.
package paths

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"repolens/internal/config"
)

// NormalizePath converts backslashes to forward slashes and cleans the result.
// The empty path and "." both normalize to "".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

// JoinRepoPath joins a repo root with a canonical path
func JoinRepoPath(repoRoot string, canonicalPath string) string {
	parts := strings.Split(NormalizePath(canonicalPath), "/")
	return filepath.Join(append([]string{repoRoot}, parts...)...)
}

// ResolveRelative resolves an import-style reference against the directory of
// fromPath. The result is canonical, or "" when it escapes the repository.
func ResolveRelative(fromPath, ref string) string {
	joined := path.Join(path.Dir(NormalizePath(fromPath)), ref)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return ""
	}
	if joined == "." {
		return ""
	}
	return joined
}

// StateDir returns <repoRoot>/.repolens.
func StateDir(repoRoot string) string {
	return filepath.Join(repoRoot, config.StateDirName)
}

// EnsureStateDir creates the state directory if needed and returns it.
func EnsureStateDir(repoRoot string) (string, error) {
	dir := StateDir(repoRoot)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// CachePath resolves the configured cache path against repoRoot.
func CachePath(repoRoot string, cfg *config.Config) string {
	p := cfg.Cache.Path
	if p == "" {
		p = config.DefaultConfig().Cache.Path
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(repoRoot, p)
}

// SCIPIndexPath resolves the configured SCIP index path, or "" when none exists.
func SCIPIndexPath(repoRoot string, cfg *config.Config) string {
	p := cfg.Graph.SCIPIndexPath
	if p == "" {
		return ""
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(repoRoot, p)
	}
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}
