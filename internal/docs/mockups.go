package docs

import (
	ignore "github.com/sabhiram/go-gitignore"

	"repolens/internal/scanner"
)

// mockupPatterns are gitignore-style globs for design files and image
// folders that conventionally hold mockups.
var mockupPatterns = []string{
	"*.fig", "*.sketch", "*.xd", "*.psd",
	"**/mockups/", "**/mockup/", "**/wireframes/", "**/wireframe/",
	"**/designs/", "**/figma/", "**/prototypes/",
	"*mockup*", "*wireframe*",
}

// findMockups returns the asset paths matching a mockup pattern. Only
// paths are inspected, never content.
func findMockups(snap *scanner.Snapshot) []string {
	matcher := ignore.CompileIgnoreLines(mockupPatterns...)
	var out []string
	for _, f := range snap.Files {
		if f.IsAsset() && matcher.MatchesPath(f.Path) {
			out = append(out, f.Path)
		}
	}
	return out
}
