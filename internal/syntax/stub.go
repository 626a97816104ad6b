//go:build !cgo

package syntax

import (
	"context"
	"errors"
)

// ErrNoCGO is returned when tree-sitter is unavailable.
var ErrNoCGO = errors.New("syntax: tree-sitter requires cgo")

// Available reports whether tree-sitter parsing is compiled in.
func Available() bool {
	return false
}

// Imports is unavailable without cgo.
func Imports(ctx context.Context, source []byte, lang Language) ([]string, error) {
	return nil, ErrNoCGO
}

// Declarations is unavailable without cgo.
func Declarations(ctx context.Context, source []byte, lang Language) ([]Declaration, error) {
	return nil, ErrNoCGO
}
