// Package project derives a repository's quality profile: language, framework,
// design system, package manager, typing and testing signals, and size metrics.
package project

import (
	"path"
	"strings"

	"repolens/internal/scanner"
)

// Language represents a programming language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangSwift      Language = "swift"
	LangDart       Language = "dart"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangCSharp     Language = "csharp"
	LangCpp        Language = "cpp"
	LangUnknown    Language = "unknown"
)

// String returns the language identifier.
func (l Language) String() string { return string(l) }

// languageTable orders languages for tie-breaking and maps their extensions.
var languageTable = []struct {
	lang Language
	exts []string
}{
	{LangTypeScript, []string{".ts", ".tsx"}},
	{LangJavaScript, []string{".js", ".jsx", ".mjs", ".cjs", ".vue", ".svelte", ".astro"}},
	{LangPython, []string{".py", ".pyi"}},
	{LangGo, []string{".go"}},
	{LangRust, []string{".rs"}},
	{LangJava, []string{".java"}},
	{LangKotlin, []string{".kt"}},
	{LangSwift, []string{".swift"}},
	{LangDart, []string{".dart"}},
	{LangRuby, []string{".rb"}},
	{LangPHP, []string{".php"}},
	{LangCSharp, []string{".cs"}},
	{LangCpp, []string{".c", ".h", ".cpp", ".hpp"}},
}

// LanguageForExtension returns the language of a file extension.
func LanguageForExtension(ext string) Language {
	ext = strings.ToLower(ext)
	for _, row := range languageTable {
		for _, e := range row.exts {
			if e == ext {
				return row.lang
			}
		}
	}
	return LangUnknown
}

// DetectLanguage returns the language with the most source files.
// Ties go to the language listed first in languageTable.
func DetectLanguage(snap *scanner.Snapshot) Language {
	counts := make(map[Language]int)
	for _, f := range snap.Files {
		if !f.IsSource() {
			continue
		}
		counts[LanguageForExtension(f.Extension)]++
	}

	best, bestCount := LangUnknown, 0
	for _, row := range languageTable {
		if c := counts[row.lang]; c > bestCount {
			best, bestCount = row.lang, c
		}
	}
	return best
}

// hasBase reports whether any file's basename satisfies match.
func hasBase(snap *scanner.Snapshot, match func(base string) bool) bool {
	for _, f := range snap.Files {
		if match(strings.ToLower(path.Base(f.Path))) {
			return true
		}
	}
	return false
}

// hasDirSegment reports whether any file sits under a directory named seg.
func hasDirSegment(snap *scanner.Snapshot, seg string) bool {
	for _, f := range snap.Files {
		for _, s := range strings.Split(path.Dir(strings.ToLower(f.Path)), "/") {
			if s == seg {
				return true
			}
		}
	}
	return false
}
