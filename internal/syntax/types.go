// Package syntax extracts imports and type declarations from source text with
// tree-sitter. Builds without cgo get a stub; callers fall back to patterns.
package syntax

import (
	"errors"
	"strings"
)

// Language represents a grammar supported by the parser.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangNone       Language = ""
)

// ErrUnsupported is returned for languages without a grammar.
var ErrUnsupported = errors.New("syntax: unsupported language")

// LanguageForExtension maps a file extension to a grammar.
func LanguageForExtension(ext string) Language {
	switch strings.ToLower(ext) {
	case ".go":
		return LangGo
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".mts", ".cts":
		return LangTypeScript
	case ".tsx":
		return LangTSX
	case ".py", ".pyi":
		return LangPython
	case ".rs":
		return LangRust
	default:
		return LangNone
	}
}

// LanguageForFence maps a fenced-block info string to a grammar.
func LanguageForFence(hint string) Language {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "go", "golang":
		return LangGo
	case "js", "javascript", "jsx":
		return LangJavaScript
	case "ts", "typescript":
		return LangTypeScript
	case "tsx":
		return LangTSX
	case "py", "python":
		return LangPython
	case "rs", "rust":
		return LangRust
	default:
		return LangNone
	}
}

// Declaration is a named type-like declaration: struct, interface, class, enum.
type Declaration struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Line int    `json:"line"`
}

func unquote(s string) string {
	return strings.Trim(s, "\"'`")
}
