package scanner

import (
	"path"
	"strings"
)

var sourceExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".vue": true, ".svelte": true, ".astro": true,
	".py": true, ".pyi": true,
	".go": true, ".rs": true,
	".java": true, ".kt": true, ".scala": true,
	".swift": true, ".dart": true,
	".rb": true, ".php": true, ".cs": true,
	".c": true, ".h": true, ".cpp": true, ".hpp": true,
}

var documentExtensions = map[string]bool{
	".md": true, ".mdx": true, ".markdown": true, ".txt": true, ".rst": true, ".adoc": true,
}

var styleExtensions = map[string]bool{
	".css": true, ".scss": true, ".sass": true, ".less": true, ".styl": true,
}

// assetExtensions are design and image files kept by path only.
var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
	".ico": true, ".svg": true, ".pdf": true,
	".fig": true, ".sketch": true, ".xd": true, ".psd": true, ".ai": true,
}

// notDocuments are prose-looking files that carry no requirements.
var notDocuments = map[string]bool{
	"license": true, "licence": true, "changelog": true, "code_of_conduct": true,
	"notice": true, "authors": true, "robots": true, "cmakelists": true,
}

var configNames = map[string]bool{
	"package.json": true, "tsconfig.json": true, "jsconfig.json": true,
	"go.mod": true, "cargo.toml": true, "pyproject.toml": true, "setup.cfg": true,
	"requirements.txt": true, "pipfile": true, "dockerfile": true, "makefile": true,
	".eslintrc": true, ".eslintrc.json": true, ".eslintrc.js": true, ".prettierrc": true,
	".babelrc": true, "mypy.ini": true, "pytest.ini": true, "tox.ini": true,
}

// IsSource reports whether the record is a program source file.
func (f FileRecord) IsSource() bool {
	return !f.Binary && sourceExtensions[f.Extension]
}

// IsDocument reports whether the record is a prose document.
func (f FileRecord) IsDocument() bool {
	if f.Binary || !documentExtensions[f.Extension] {
		return false
	}
	stem := strings.ToLower(strings.TrimSuffix(path.Base(f.Path), path.Ext(f.Path)))
	if notDocuments[stem] || (f.Extension == ".txt" && strings.HasPrefix(stem, "requirements")) {
		return false
	}
	return true
}

// IsStyle reports whether the record is a stylesheet.
func (f FileRecord) IsStyle() bool {
	return styleExtensions[f.Extension]
}

// IsAsset reports whether the record is an image or design file.
func (f FileRecord) IsAsset() bool {
	return assetExtensions[f.Extension]
}

// IsConfig reports whether the record is build, tool or runner configuration.
func (f FileRecord) IsConfig() bool {
	base := strings.ToLower(path.Base(f.Path))
	if configNames[base] {
		return true
	}
	if strings.HasPrefix(base, "tsconfig.") && strings.HasSuffix(base, ".json") {
		return true
	}
	// vite.config.ts, jest.config.js, tailwind.config.cjs, ...
	stem := strings.TrimSuffix(base, path.Ext(base))
	return strings.HasSuffix(stem, ".config") || strings.HasSuffix(stem, ".conf")
}

// IsTest reports whether the path follows a test naming convention.
func (f FileRecord) IsTest() bool {
	return IsTestPath(f.Path)
}

// IsTestPath reports whether p follows a test naming convention.
func IsTestPath(p string) bool {
	lower := strings.ToLower(p)
	base := path.Base(lower)
	switch {
	case strings.Contains(base, ".test."), strings.Contains(base, ".spec."):
		return true
	case strings.HasSuffix(base, "_test.go"), strings.HasSuffix(base, "_test.py"):
		return true
	case strings.HasPrefix(base, "test_") && strings.HasSuffix(base, ".py"):
		return true
	case strings.HasSuffix(base, "_spec.rb"), strings.HasSuffix(base, "test.java"), strings.HasSuffix(base, "tests.cs"):
		return true
	}
	for _, seg := range strings.Split(path.Dir(lower), "/") {
		switch seg {
		case "__tests__", "tests", "test", "e2e", "cypress":
			return true
		}
	}
	return false
}

// LineCount returns the number of newline-separated lines; empty content has none.
func (f FileRecord) LineCount() int {
	if f.Content == "" {
		return 0
	}
	return strings.Count(f.Content, "\n") + 1
}

// Lines splits content on newlines.
func (f FileRecord) Lines() []string {
	if f.Content == "" {
		return nil
	}
	return strings.Split(f.Content, "\n")
}

// Base returns the final path element.
func (f FileRecord) Base() string {
	return path.Base(f.Path)
}
