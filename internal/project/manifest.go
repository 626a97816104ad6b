package project

import (
	"encoding/json"
	"path"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/modfile"

	"repolens/internal/scanner"
)

// Manifest is the dependency view collected from every manifest in a snapshot.
type Manifest struct {
	// Dependencies are lower-cased package or module names, sorted
	Dependencies []string `json:"dependencies"`

	// Scripts are package.json script names, sorted
	Scripts []string `json:"scripts,omitempty"`

	// PackageManagerField is package.json's "packageManager" value, if any
	PackageManagerField string `json:"packageManagerField,omitempty"`

	// GoModulePath is the module path of the root go.mod
	GoModulePath string `json:"goModulePath,omitempty"`

	// Files lists the manifest paths that were read
	Files []string `json:"files"`

	// Invalid lists manifest paths that failed to parse
	Invalid []string `json:"invalid,omitempty"`

	deps map[string]struct{}
}

// Has reports whether name is a dependency.
func (m *Manifest) Has(name string) bool {
	_, ok := m.deps[strings.ToLower(name)]
	return ok
}

// HasPrefix reports whether any dependency equals name or is nested under it
// ("github.com/go-chi/chi" matches "github.com/go-chi/chi/v5").
func (m *Manifest) HasPrefix(name string) bool {
	name = strings.ToLower(name)
	if m.Has(name) {
		return true
	}
	for _, d := range m.Dependencies {
		if strings.HasPrefix(d, name+"/") {
			return true
		}
	}
	return false
}

// manifestParsers maps manifest basenames to their parser.
var manifestParsers = map[string]func(*Manifest, []byte) error{
	"package.json":     parsePackageJSON,
	"pyproject.toml":   parsePyproject,
	"cargo.toml":       parseCargo,
	"requirements.txt": parseRequirements,
	"go.mod":           parseGoMod,
}

// ReadManifest collects dependencies from all manifests in the snapshot.
// Malformed manifests are listed in Invalid and otherwise ignored.
func ReadManifest(snap *scanner.Snapshot) *Manifest {
	m := &Manifest{deps: make(map[string]struct{})}
	var scripts = make(map[string]struct{})

	for _, f := range snap.Files {
		base := strings.ToLower(path.Base(f.Path))
		parse, ok := manifestParsers[base]
		if !ok {
			if strings.HasPrefix(base, "requirements") && strings.HasSuffix(base, ".txt") {
				parse = parseRequirements
			} else {
				continue
			}
		}
		m.Files = append(m.Files, f.Path)

		sub := &Manifest{deps: make(map[string]struct{})}
		if err := parse(sub, []byte(f.Content)); err != nil {
			m.Invalid = append(m.Invalid, f.Path)
			continue
		}
		for d := range sub.deps {
			m.deps[d] = struct{}{}
		}
		for _, s := range sub.Scripts {
			scripts[s] = struct{}{}
		}
		if m.PackageManagerField == "" && !strings.Contains(f.Path, "/") {
			m.PackageManagerField = sub.PackageManagerField
		}
		if sub.GoModulePath != "" && (m.GoModulePath == "" || !strings.Contains(f.Path, "/")) {
			m.GoModulePath = sub.GoModulePath
		}
	}

	m.Dependencies = sortedKeys(m.deps)
	m.Scripts = sortedKeys(scripts)
	return m
}

func (m *Manifest) add(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != "" {
		m.deps[name] = struct{}{}
	}
}

type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	Scripts              map[string]string `json:"scripts"`
	PackageManager       string            `json:"packageManager"`
}

func parsePackageJSON(m *Manifest, data []byte) error {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return err
	}
	for _, set := range []map[string]string{pkg.Dependencies, pkg.DevDependencies, pkg.PeerDependencies, pkg.OptionalDependencies} {
		for name := range set {
			m.add(name)
		}
	}
	for name := range pkg.Scripts {
		m.Scripts = append(m.Scripts, name)
	}
	m.PackageManagerField = pkg.PackageManager
	return nil
}

// requirementName captures the distribution name of a PEP 508 requirement.
var requirementName = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._\-]*)`)

func addRequirement(m *Manifest, spec string) {
	if match := requirementName.FindStringSubmatch(spec); match != nil {
		m.add(match[1])
	}
}

type pyproject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]interface{} `toml:"dependencies"`
			DevDependencies map[string]interface{} `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyproject(m *Manifest, data []byte) error {
	var py pyproject
	if err := toml.Unmarshal(data, &py); err != nil {
		return err
	}
	for _, spec := range py.Project.Dependencies {
		addRequirement(m, spec)
	}
	for _, group := range py.Project.OptionalDependencies {
		for _, spec := range group {
			addRequirement(m, spec)
		}
	}
	for name := range py.Tool.Poetry.Dependencies {
		if !strings.EqualFold(name, "python") {
			m.add(name)
		}
	}
	for name := range py.Tool.Poetry.DevDependencies {
		m.add(name)
	}
	return nil
}

type cargoManifest struct {
	Dependencies      map[string]interface{} `toml:"dependencies"`
	DevDependencies   map[string]interface{} `toml:"dev-dependencies"`
	BuildDependencies map[string]interface{} `toml:"build-dependencies"`
}

func parseCargo(m *Manifest, data []byte) error {
	var cargo cargoManifest
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return err
	}
	for _, set := range []map[string]interface{}{cargo.Dependencies, cargo.DevDependencies, cargo.BuildDependencies} {
		for name := range set {
			m.add(name)
		}
	}
	return nil
}

func parseRequirements(m *Manifest, data []byte) error {
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}
		addRequirement(m, line)
	}
	return nil
}

func parseGoMod(m *Manifest, data []byte) error {
	f, err := modfile.ParseLax("go.mod", data, nil)
	if err != nil {
		return err
	}
	if f.Module != nil {
		m.GoModulePath = f.Module.Mod.Path
	}
	for _, r := range f.Require {
		m.add(r.Mod.Path)
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
