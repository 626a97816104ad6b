package project

import (
	"context"
	"log/slog"
	"math"
	"path"
	"strings"
	"unicode"

	"repolens/internal/scanner"
	"repolens/internal/slogutil"
)

// DesignSystem identifies the UI component system a repository builds on.
type DesignSystem string

const (
	DesignHouse       DesignSystem = "house"
	DesignMaterialKit DesignSystem = "material"
	DesignAntKit      DesignSystem = "ant"
	DesignChakra      DesignSystem = "chakra"
	DesignTailwind    DesignSystem = "tailwind"
	DesignOther       DesignSystem = "other"
	DesignNone        DesignSystem = "none"
)

// String returns the design system identifier.
func (d DesignSystem) String() string { return string(d) }

// PackageManager identifies the dependency tool a repository uses.
type PackageManager string

const (
	PMNpm       PackageManager = "npm"
	PMYarn      PackageManager = "yarn"
	PMPnpm      PackageManager = "pnpm"
	PMBun       PackageManager = "bun"
	PMPip       PackageManager = "pip"
	PMPoetry    PackageManager = "poetry"
	PMGoModules PackageManager = "go-modules"
	PMCargo     PackageManager = "cargo"
	PMUnknown   PackageManager = "unknown"
)

// String returns the package manager identifier.
func (p PackageManager) String() string { return string(p) }

// Metrics are size and coverage counts over the snapshot.
type Metrics struct {
	LOCCount             int `json:"locCount"`
	FileCount            int `json:"fileCount"`
	TestFileCount        int `json:"testFileCount"`
	TestCoverageEstimate int `json:"testCoverageEstimate"`
	ComponentCount       int `json:"componentCount"`
	PageCount            int `json:"pageCount"`
}

// QualityProfile summarizes the technical signals of a repository.
type QualityProfile struct {
	HasTypedSource bool           `json:"hasTypedSource"`
	HasTests       bool           `json:"hasTests"`
	DesignSystem   DesignSystem   `json:"designSystem"`
	Framework      string         `json:"framework,omitempty"`
	PackageManager PackageManager `json:"packageManager"`
	Language       Language       `json:"language"`
	Metrics        Metrics        `json:"metrics"`
	Dependencies   []string       `json:"dependencies,omitempty"`
}

// Options tunes the analyzer.
type Options struct {
	// HousePackages are in-house design system package names
	HousePackages []string
	Logger        *slog.Logger
}

// Analyze derives the quality profile of snap. It only fails when ctx is done.
func Analyze(ctx context.Context, snap *scanner.Snapshot, opts Options) (*QualityProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := slogutil.OrDiscard(opts.Logger)

	manifest := ReadManifest(snap)
	for _, p := range manifest.Invalid {
		logger.Debug("Ignoring malformed manifest", "path", p)
	}

	profile := &QualityProfile{
		HasTypedSource: hasTypedSource(snap),
		HasTests:       hasTests(snap),
		DesignSystem:   detectDesignSystem(snap, manifest, opts.HousePackages),
		Framework:      DetectFramework(manifest),
		PackageManager: detectPackageManager(snap, manifest),
		Language:       DetectLanguage(snap),
		Metrics:        computeMetrics(snap),
		Dependencies:   manifest.Dependencies,
	}

	logger.Debug("Quality profile computed",
		"language", profile.Language.String(),
		"framework", profile.Framework,
		"designSystem", profile.DesignSystem.String(),
		"files", profile.Metrics.FileCount,
	)
	return profile, nil
}

var typeConfigFiles = map[string]bool{
	"tsconfig.json":      true,
	"mypy.ini":           true,
	".mypy.ini":          true,
	"pyrightconfig.json": true,
	"py.typed":           true,
}

var typedExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".go": true, ".rs": true, ".java": true, ".kt": true,
	".swift": true, ".cs": true, ".pyi": true, ".scala": true, ".dart": true,
}

func hasTypedSource(snap *scanner.Snapshot) bool {
	for _, f := range snap.Files {
		base := strings.ToLower(path.Base(f.Path))
		switch {
		case typeConfigFiles[base]:
			return true
		case strings.HasPrefix(base, "tsconfig.") && strings.HasSuffix(base, ".json"):
			return true
		case base == "jsconfig.json" && strings.Contains(strings.ToLower(f.Content), `"checkjs": true`):
			return true
		case typedExtensions[f.Extension]:
			return true
		}
	}
	return false
}

// testRunnerPrefixes match runner config basenames such as jest.config.ts.
var testRunnerPrefixes = []string{
	"jest.config.", "vitest.config.", "playwright.config.", "cypress.config.",
	"karma.conf.", ".mocharc", "pytest.ini", "conftest.py", "phpunit.xml",
}

func hasTests(snap *scanner.Snapshot) bool {
	if hasBase(snap, func(base string) bool {
		for _, p := range testRunnerPrefixes {
			if strings.HasPrefix(base, p) {
				return true
			}
		}
		return false
	}) {
		return true
	}
	for _, f := range snap.Files {
		if f.IsSource() && f.IsTest() {
			return true
		}
	}
	return false
}

var (
	materialPackages = []string{"@mui/material", "@material-ui/core", "@angular/material", "vuetify"}
	antPackages      = []string{"antd", "ant-design-vue", "@ant-design/pro-components"}
	chakraPackages   = []string{"@chakra-ui/react"}
	otherPackages    = []string{
		"styled-components", "@emotion/react", "@emotion/styled", "@stitches/react",
		"@vanilla-extract/css", "@mantine/core", "bootstrap", "react-bootstrap",
	}
)

// detectDesignSystem applies the precedence House > Material > Ant > Chakra >
// Tailwind > Other > None.
func detectDesignSystem(snap *scanner.Snapshot, m *Manifest, house []string) DesignSystem {
	for _, p := range house {
		if m.Has(p) {
			return DesignHouse
		}
	}
	for _, d := range m.Dependencies {
		if strings.Contains(d, "design-system") {
			return DesignHouse
		}
	}
	if hasDirSegment(snap, "design-system") {
		return DesignHouse
	}

	switch {
	case anyDependency(m, materialPackages):
		return DesignMaterialKit
	case anyDependency(m, antPackages):
		return DesignAntKit
	case anyDependency(m, chakraPackages):
		return DesignChakra
	case hasBase(snap, func(b string) bool { return strings.HasPrefix(b, "tailwind.config.") }):
		return DesignTailwind
	case anyDependency(m, otherPackages):
		return DesignOther
	}
	return DesignNone
}

func anyDependency(m *Manifest, names []string) bool {
	for _, n := range names {
		if m.Has(n) {
			return true
		}
	}
	return false
}

// lockfiles are checked in order; the first present decides.
var lockfiles = []struct {
	name string
	pm   PackageManager
}{
	{"pnpm-lock.yaml", PMPnpm},
	{"yarn.lock", PMYarn},
	{"bun.lockb", PMBun},
	{"bun.lock", PMBun},
	{"package-lock.json", PMNpm},
	{"poetry.lock", PMPoetry},
	{"pipfile.lock", PMPip},
	{"go.sum", PMGoModules},
	{"cargo.lock", PMCargo},
}

// manifestFallback decides when no lockfile exists.
var manifestFallback = []struct {
	name string
	pm   PackageManager
}{
	{"package.json", PMNpm},
	{"requirements.txt", PMPip},
	{"pyproject.toml", PMPip},
	{"go.mod", PMGoModules},
	{"cargo.toml", PMCargo},
}

func detectPackageManager(snap *scanner.Snapshot, m *Manifest) PackageManager {
	present := make(map[string]bool)
	for _, f := range snap.Files {
		if !strings.Contains(f.Path, "/") {
			present[strings.ToLower(f.Path)] = true
		}
	}
	for _, l := range lockfiles {
		if present[l.name] {
			return l.pm
		}
	}
	if field := m.PackageManagerField; field != "" {
		name := strings.SplitN(field, "@", 2)[0]
		for _, pm := range []PackageManager{PMPnpm, PMYarn, PMBun, PMNpm} {
			if name == string(pm) {
				return pm
			}
		}
	}
	for _, mf := range manifestFallback {
		if present[mf.name] {
			return mf.pm
		}
	}
	return PMUnknown
}

var componentExtensions = map[string]bool{
	".tsx": true, ".jsx": true, ".vue": true, ".svelte": true, ".astro": true,
}

var pageDirs = map[string]bool{
	"pages": true, "views": true, "screens": true, "routes": true,
}

func computeMetrics(snap *scanner.Snapshot) Metrics {
	var m Metrics
	var nonTest int
	for _, f := range snap.Files {
		if !f.IsSource() {
			continue
		}
		m.FileCount++
		m.LOCCount += f.LineCount()
		if f.IsTest() {
			m.TestFileCount++
			continue
		}
		nonTest++
		if isComponent(f) {
			m.ComponentCount++
		}
		if isPage(f) {
			m.PageCount++
		}
	}

	denom := nonTest
	if denom < 1 {
		denom = 1
	}
	cov := int(math.Round(100 * float64(m.TestFileCount) / float64(denom)))
	if cov > 100 {
		cov = 100
	}
	m.TestCoverageEstimate = cov
	return m
}

// isComponent: a UI file under components/ or with a PascalCase basename.
func isComponent(f scanner.FileRecord) bool {
	if !componentExtensions[f.Extension] {
		return false
	}
	for _, seg := range dirSegments(f.Path) {
		if seg == "components" {
			return true
		}
	}
	base := path.Base(f.Path)
	r := []rune(base)
	return len(r) > 0 && unicode.IsUpper(r[0])
}

// isPage: a file under a page-like directory, or an app-router page file.
func isPage(f scanner.FileRecord) bool {
	segs := dirSegments(f.Path)
	base := strings.ToLower(path.Base(f.Path))
	stem := strings.TrimSuffix(base, path.Ext(base))

	for i, seg := range segs {
		if seg == "app" && (stem == "page" || stem == "+page") {
			return true
		}
		if pageDirs[seg] {
			if seg == "pages" && i+1 < len(segs) && segs[i+1] == "api" {
				return false
			}
			if strings.HasPrefix(stem, "_") {
				return false
			}
			return true
		}
	}
	return stem == "+page"
}

func dirSegments(p string) []string {
	dir := path.Dir(strings.ToLower(p))
	if dir == "." {
		return nil
	}
	return strings.Split(dir, "/")
}
