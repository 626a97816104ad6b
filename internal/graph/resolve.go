package graph

import (
	"path"
	"strings"

	"repolens/internal/paths"
	"repolens/internal/scanner"
)

// scriptSuffixes are tried, in order, when a script import omits its extension.
var scriptSuffixes = []string{
	"", ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".vue", ".svelte", ".json",
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// aliasRoots are the directories an "@/" or "~/" import may point into.
var aliasRoots = []string{"src", "", "app"}

// pythonRoots are tried for absolute Python imports.
var pythonRoots = []string{"", "src"}

// resolver maps module specifiers to snapshot paths.
type resolver struct {
	snap     *scanner.Snapshot
	goModule string
	goDirs   map[string][]string // package dir -> non-test .go files
}

func newResolver(snap *scanner.Snapshot, goModule string) *resolver {
	r := &resolver{snap: snap, goModule: goModule, goDirs: make(map[string][]string)}
	for _, f := range snap.Files {
		if f.Extension == ".go" && !strings.HasSuffix(f.Path, "_test.go") {
			dir := path.Dir(f.Path)
			r.goDirs[dir] = append(r.goDirs[dir], f.Path)
		}
	}
	return r
}

// resolve returns the snapshot paths spec refers to from file from. Bare
// package names and anything outside the snapshot resolve to nothing.
func (r *resolver) resolve(from scanner.FileRecord, spec string) []string {
	switch familyByExtension[from.Extension] {
	case familyScript:
		return r.resolveScript(from.Path, spec)
	case familyPython:
		return r.resolvePython(from.Path, spec)
	case familyGo:
		return r.resolveGo(spec)
	case familyRust:
		return r.resolveRust(from.Path, spec)
	}
	return nil
}

func (r *resolver) resolveScript(from, spec string) []string {
	switch {
	case strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == "..":
		if base := paths.ResolveRelative(from, spec); base != "" {
			return r.firstExisting(base, scriptSuffixes)
		}
	case strings.HasPrefix(spec, "@/") || strings.HasPrefix(spec, "~/"):
		rest := spec[2:]
		for _, root := range aliasRoots {
			if hit := r.firstExisting(path.Join(root, rest), scriptSuffixes); hit != nil {
				return hit
			}
		}
	case strings.HasPrefix(spec, "/"):
		return r.firstExisting(strings.TrimPrefix(spec, "/"), scriptSuffixes)
	}
	return nil
}

func (r *resolver) resolvePython(from, spec string) []string {
	dots := len(spec) - len(strings.TrimLeft(spec, "."))
	rest := strings.ReplaceAll(spec[dots:], ".", "/")

	var bases []string
	if dots > 0 {
		dir := path.Dir(from)
		for i := 1; i < dots; i++ {
			dir = path.Dir(dir)
		}
		if dir == "." {
			dir = ""
		}
		bases = append(bases, path.Join(dir, rest))
	} else {
		for _, root := range pythonRoots {
			bases = append(bases, path.Join(root, rest))
		}
		// Implicit sibling module, common in scripts and older packages.
		bases = append(bases, path.Join(path.Dir(from), rest))
	}

	for _, base := range bases {
		if base == "" || base == "." {
			continue
		}
		if hit := r.firstExisting(base, []string{".py", ".pyi", "/__init__.py"}); hit != nil {
			return hit
		}
	}
	return nil
}

func (r *resolver) resolveGo(spec string) []string {
	if r.goModule == "" {
		return nil
	}
	var dir string
	switch {
	case spec == r.goModule:
		dir = "."
	case strings.HasPrefix(spec, r.goModule+"/"):
		dir = strings.TrimPrefix(spec, r.goModule+"/")
	default:
		return nil
	}
	files := r.goDirs[dir]
	out := make([]string, len(files))
	copy(out, files)
	return out
}

func (r *resolver) resolveRust(from, mod string) []string {
	dir := path.Dir(from)
	stem := strings.TrimSuffix(path.Base(from), path.Ext(from))
	if stem != "mod" && stem != "lib" && stem != "main" {
		dir = path.Join(dir, stem)
	}
	return r.firstExisting(path.Join(dir, mod), []string{".rs", "/mod.rs"})
}

func (r *resolver) firstExisting(base string, suffixes []string) []string {
	base = paths.NormalizePath(base)
	if base == "" {
		return nil
	}
	for _, s := range suffixes {
		if p := base + s; r.snap.Has(p) {
			return []string{p}
		}
	}
	return nil
}
