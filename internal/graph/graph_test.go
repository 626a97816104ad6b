package graph

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	rerrors "repolens/internal/errors"
	"repolens/internal/scanner"
)

func TestExpandCycle(t *testing.T) {
	g := New()
	g.AddEdge("A", "B", 1, KindImport)
	g.AddEdge("B", "A", 1, KindImport)

	got := g.Expand("A", 5)
	if want := []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expand(A, 5) = %v, want %v", got, want)
	}
}

func TestExpandDepth(t *testing.T) {
	g := New()
	g.AddEdge("a", "b", 1, KindImport)
	g.AddEdge("a", "c", 1, KindImport)
	g.AddEdge("b", "d", 1, KindImport)
	g.AddEdge("d", "e", 1, KindImport)

	tests := []struct {
		start string
		depth int
		want  []string
	}{
		{"a", 0, []string{"a"}},
		{"a", 1, []string{"a", "b", "c"}},
		{"a", 2, []string{"a", "b", "c", "d"}},
		{"a", 10, []string{"a", "b", "c", "d", "e"}},
		{"missing", 3, []string{"missing"}},
		{"e", 2, []string{"e"}},
	}
	for _, tt := range tests {
		if got := g.Expand(tt.start, tt.depth); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Expand(%s, %d) = %v, want %v", tt.start, tt.depth, got, tt.want)
		}
	}
}

func TestAddEdgeIgnoresSelfAndDuplicates(t *testing.T) {
	g := New()
	g.AddEdge("a", "a", 1, KindImport)
	g.AddEdge("a", "b", 1, KindImport)
	g.AddEdge("a", "b", 0.8, KindReference)

	if g.NumEdges() != 1 {
		t.Fatalf("NumEdges() = %d, want 1", g.NumEdges())
	}
	if k := g.EdgeKind("a", "b"); k != KindImport {
		t.Errorf("EdgeKind = %q, want %q", k, KindImport)
	}
	if got := g.ImportedBy("b"); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("ImportedBy(b) = %v", got)
	}
}

func snapshot(files map[string]string) *scanner.Snapshot {
	recs := make([]scanner.FileRecord, 0, len(files))
	for _, p := range sortedPaths(files) {
		recs = append(recs, scanner.FileRecord{Path: p, Content: files[p]})
	}
	return scanner.NewSnapshot("", recs)
}

func sortedPaths(files map[string]string) []string {
	out := make([]string, 0, len(files))
	for p := range files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func TestBuildResolvesImports(t *testing.T) {
	snap := snapshot(map[string]string{
		"src/components/LoginButton.tsx": "import React from 'react'\nimport { useAuth } from '../hooks/useAuth'\nimport styles from './LoginButton.module.css'\n",
		"src/hooks/useAuth.ts":           "import { api } from '@/lib/api'\nexport const useAuth = () => api\n",
		"src/lib/api.ts":                 "const client = require('./client')\nexport const api = client\n",
		"src/lib/client.js":              "module.exports = {}\n",
		"src/pages/index.tsx":            "export * from '../components'\n",
		"src/components/index.ts":        "export { LoginButton } from './LoginButton'\n",
		"app/main.py":                    "from app.services import auth\nimport app.models, os\nfrom .util import helper\n",
		"app/services/__init__.py":       "from . import auth\n",
		"app/services/auth.py":           "x = 1\n",
		"app/models.py":                  "y = 2\n",
		"app/util.py":                    "def helper(): pass\n",
		"go.mod":                         "module example.com/svc\n\ngo 1.22\n",
		"cmd/svc/main.go":                "package main\n\nimport (\n\t\"fmt\"\n\t\"example.com/svc/internal/store\"\n)\n",
		"internal/store/store.go":        "package store\n",
		"internal/store/store_test.go":   "package store\n",
		"src/lib.rs":                     "mod parser;\npub mod ast;\n",
		"src/parser.rs":                  "",
		"src/ast/mod.rs":                 "",
	})

	g, err := Build(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantEdges := [][2]string{
		{"src/components/LoginButton.tsx", "src/hooks/useAuth.ts"},
		{"src/hooks/useAuth.ts", "src/lib/api.ts"},
		{"src/lib/api.ts", "src/lib/client.js"},
		{"src/pages/index.tsx", "src/components/index.ts"},
		{"src/components/index.ts", "src/components/LoginButton.tsx"},
		{"app/main.py", "app/services/__init__.py"},
		{"app/main.py", "app/models.py"},
		{"app/main.py", "app/util.py"},
		{"cmd/svc/main.go", "internal/store/store.go"},
		{"src/lib.rs", "src/parser.rs"},
		{"src/lib.rs", "src/ast/mod.rs"},
	}
	for _, e := range wantEdges {
		if g.EdgeKind(e[0], e[1]) != KindImport {
			t.Errorf("missing import edge %s -> %s", e[0], e[1])
		}
	}
	if g.EdgeKind("cmd/svc/main.go", "internal/store/store_test.go") != "" {
		t.Error("test files should not be import targets")
	}
	for _, from := range g.Nodes() {
		for _, to := range g.Imports(from) {
			if !snap.Has(to) {
				t.Errorf("edge %s -> %s points outside the snapshot", from, to)
			}
		}
	}
	if !g.HasNode("src/parser.rs") {
		t.Error("every source file should be a node")
	}
}

func TestBuildRelatedFiles(t *testing.T) {
	snap := snapshot(map[string]string{
		"a.ts": "import './b'\n",
		"b.ts": "import './a'\nimport './c'\n",
		"c.ts": "",
	})
	g, err := Build(context.Background(), snap, Options{Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	got := g.Expand("a.ts", 2)
	if want := []string{"a.ts", "b.ts", "c.ts"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expand = %v, want %v", got, want)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	snap := snapshot(map[string]string{"a.ts": "import './b'\n", "b.ts": ""})
	if _, err := Build(ctx, snap, Options{}); err == nil {
		t.Error("Build() with cancelled context should fail")
	}
}

func TestRegexImports(t *testing.T) {
	tests := []struct {
		name    string
		content string
		family  importFamily
		want    []string
	}{
		{"es import", "import x from './x'\nimport type { T } from \"../t\"", familyScript, []string{"./x", "../t"}},
		{"side effect", "import './styles.css'", familyScript, []string{"./styles.css"}},
		{"dynamic", "const m = await import('./lazy')", familyScript, []string{"./lazy"}},
		{"python plain", "import os, app.db as db", familyPython, []string{"os", "app.db"}},
		{"python from", "from ..core import x", familyPython, []string{"..core"}},
		{"go single", "import \"fmt\"", familyGo, []string{"fmt"}},
		{"go block", "import (\n\tf \"fmt\"\n\t\"os\"\n)", familyGo, []string{"fmt", "os"}},
		{"rust mod", "pub(crate) mod util;\nmod inline {}", familyRust, []string{"util"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dedupe(regexImports(tt.content, tt.family)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("regexImports() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRank(t *testing.T) {
	g := New()
	g.AddEdge("a", "hub", 1, KindImport)
	g.AddEdge("b", "hub", 1, KindImport)
	g.AddEdge("c", "hub", 1, KindImport)
	g.AddEdge("hub", "leaf", 1, KindImport)

	ranked, err := g.Rank(context.Background(), nil, DefaultRankOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(ranked) != 5 {
		t.Fatalf("len(Rank) = %d, want 5", len(ranked))
	}
	if ranked[0].Path != "hub" && ranked[0].Path != "leaf" {
		t.Errorf("top ranked = %s, want hub or leaf", ranked[0].Path)
	}

	none, err := g.Rank(context.Background(), []string{"nope"}, DefaultRankOptions())
	if err != nil || len(none) != 0 {
		t.Errorf("Rank(unknown seed) = %v, %v", none, err)
	}
}

func writeIndex(t *testing.T, index *scippb.Index) string {
	t.Helper()
	data, err := proto.Marshal(index)
	if err != nil {
		t.Fatal(err)
	}
	p := filepath.Join(t.TempDir(), "index.scip")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadReferences(t *testing.T) {
	def := int32(scippb.SymbolRole_Definition)
	index := &scippb.Index{
		Documents: []*scippb.Document{
			{
				RelativePath: "src/api.ts",
				Occurrences: []*scippb.Occurrence{
					{Symbol: "npm pkg 1.0 src/`api.ts`/fetchUser().", SymbolRoles: def},
					{Symbol: "local 0", SymbolRoles: def},
				},
			},
			{
				RelativePath: "src/view.ts",
				Occurrences: []*scippb.Occurrence{
					{Symbol: "npm pkg 1.0 src/`api.ts`/fetchUser()."},
					{Symbol: "local 0"},
				},
			},
			{
				RelativePath: "vendor/other.ts",
				Occurrences: []*scippb.Occurrence{
					{Symbol: "npm pkg 1.0 src/`api.ts`/fetchUser()."},
				},
			},
		},
	}
	snap := snapshot(map[string]string{"src/api.ts": "", "src/view.ts": ""})

	edges, err := LoadReferences(writeIndex(t, index), snap)
	if err != nil {
		t.Fatalf("LoadReferences() error = %v", err)
	}
	want := []Edge{{From: "src/view.ts", To: "src/api.ts", Weight: referenceWeight, Kind: KindReference}}
	if !reflect.DeepEqual(edges, want) {
		t.Errorf("LoadReferences() = %v, want %v", edges, want)
	}

	g, err := Build(context.Background(), snap, Options{SCIPIndexPath: writeIndex(t, index)})
	if err != nil {
		t.Fatal(err)
	}
	if st := g.Stats(); st.ReferenceEdges != 1 {
		t.Errorf("ReferenceEdges = %d, want 1", st.ReferenceEdges)
	}
}

func TestLoadReferencesErrors(t *testing.T) {
	snap := snapshot(map[string]string{"a.ts": ""})

	_, err := LoadReferences(filepath.Join(t.TempDir(), "missing.scip"), snap)
	if !rerrors.HasCode(err, rerrors.ScanIOError) {
		t.Errorf("missing index: code = %v, want %v", rerrors.CodeOf(err), rerrors.ScanIOError)
	}

	bad := filepath.Join(t.TempDir(), "bad.scip")
	if err := os.WriteFile(bad, []byte{0xff, 0xff, 0xff}, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadReferences(bad, snap)
	if !rerrors.HasCode(err, rerrors.ParseFailure) {
		t.Errorf("corrupt index: code = %v, want %v", rerrors.CodeOf(err), rerrors.ParseFailure)
	}

	if _, err := Build(context.Background(), snap, Options{SCIPIndexPath: bad}); err != nil {
		t.Errorf("Build() should tolerate a bad index, got %v", err)
	}
}

func TestCacheGetOrBuild(t *testing.T) {
	c := NewCache()
	snap := snapshot(map[string]string{"a.ts": "import './b'\n", "b.ts": ""})

	var wg sync.WaitGroup
	results := make([]*Graph, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := c.GetOrBuild(context.Background(), snap, Options{})
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = g
		}(i)
	}
	wg.Wait()

	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", c.Size())
	}
	cached, _ := c.Get(snap.ID)
	for i, g := range results {
		if g != cached.Graph {
			t.Errorf("result %d is not the cached graph", i)
		}
	}

	c.Invalidate(snap.ID)
	if _, ok := c.Get(snap.ID); ok {
		t.Error("Invalidate() left the entry")
	}
	c.Set("x", New())
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d", c.Size())
	}
}
