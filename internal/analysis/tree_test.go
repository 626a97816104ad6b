package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"repolens/internal/scanner"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func treeSnapshot() *scanner.Snapshot {
	return scanner.NewSnapshot("/repo", []scanner.FileRecord{
		{Path: "src/pages/Home.tsx", Content: "home"},
		{Path: "README.md", Content: "# readme"},
		{Path: "src/App.tsx", Content: "app"},
		{Path: "docs/prd.md", Content: "prd"},
		{Path: "src/components/Button.tsx", Content: "btn"},
	})
}

func TestBuildTree_Order(t *testing.T) {
	tree := BuildTree(treeSnapshot())

	want := "docs/\n" +
		"  prd.md\n" +
		"src/\n" +
		"  components/\n" +
		"    Button.tsx\n" +
		"  pages/\n" +
		"    Home.tsx\n" +
		"  App.tsx\n" +
		"README.md\n"
	if got := tree.Render(-1); got != want {
		t.Errorf("Render(-1) =\n%s\nwant\n%s", got, want)
	}
}

func TestBuildTree_RenderDepth(t *testing.T) {
	tree := BuildTree(treeSnapshot())

	want := "docs/\nsrc/\nREADME.md\n"
	if got := tree.Render(0); got != want {
		t.Errorf("Render(0) = %q, want %q", got, want)
	}
}

func TestBuildTree_Count(t *testing.T) {
	files, dirs := BuildTree(treeSnapshot()).Count()
	if files != 5 || dirs != 4 {
		t.Errorf("Count() = %d files, %d dirs; want 5, 4", files, dirs)
	}
}

func TestBuildTree_NodeFields(t *testing.T) {
	tree := BuildTree(treeSnapshot())

	src := tree.Children[1]
	if !src.Dir || src.Path != "src" {
		t.Fatalf("second child = %+v, want dir src", src)
	}
	app := src.Children[2]
	if app.Path != "src/App.tsx" || app.Dir || app.Size != 3 {
		t.Errorf("App node = %+v", app)
	}
}

func TestBuildTree_Empty(t *testing.T) {
	tree := BuildTree(scanner.NewSnapshot("/repo", nil))
	if len(tree.Children) != 0 {
		t.Errorf("children = %d, want 0", len(tree.Children))
	}
	if got := tree.Render(-1); got != "" {
		t.Errorf("Render(-1) = %q, want empty", got)
	}
}
