package selector

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"repolens/internal/compression"
	"repolens/internal/graph"
	"repolens/internal/scanner"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type file struct {
	path    string
	content string
	age     time.Duration
}

func snapshotOf(files ...file) *scanner.Snapshot {
	recs := make([]scanner.FileRecord, len(files))
	for i, f := range files {
		recs[i] = scanner.FileRecord{Path: f.path, Content: f.content, ModifiedAt: base.Add(-f.age)}
	}
	return scanner.NewSnapshot("", recs)
}

func loginCorpus() *scanner.Snapshot {
	files := []file{
		{"src/components/LoginButton.tsx", "import { Button } from './Button'\n\nexport function LoginButton({ onLogin }) {\n  return <Button onClick={onLogin}>Log in</Button>\n}\n", 0},
		{"src/components/Button.tsx", "export function Button({ onClick, children }) {\n  return <button onClick={onClick}>{children}</button>\n}\n", 24 * time.Hour},
		{"src/pages/login.tsx", "import { LoginButton } from '../components/LoginButton'\n\nexport default function Page() { return <LoginButton /> }\n", 48 * time.Hour},
		{"src/hooks/useSession.ts", "export const useSession = () => ({ user: null, login: async () => {} })\n", 72 * time.Hour},
	}
	for i := 0; i < 46; i++ {
		files = append(files, file{
			path:    fmt.Sprintf("src/utils/math%02d.ts", i),
			content: fmt.Sprintf("export const add%d = (a: number, b: number) => a + b + %d\n", i, i),
			age:     time.Duration(i) * time.Hour,
		})
	}
	return snapshotOf(files...)
}

func TestSelectLoginButton(t *testing.T) {
	snap := loginCorpus()
	in := ParseIntent("fix the login button onClick handler")

	sel, err := Select(context.Background(), snap, in, Options{MaxTokens: 4000})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if n := len(sel.Candidates); n == 0 || n > 10 {
		t.Fatalf("len(Candidates) = %d, want 1..10", n)
	}
	if sel.Candidates[0].Path != "src/components/LoginButton.tsx" {
		t.Errorf("top candidate = %s, want LoginButton.tsx", sel.Candidates[0].Path)
	}
	for i, c := range sel.Candidates {
		if i > 0 && c.Score > sel.Candidates[i-1].Score {
			t.Errorf("candidates not sorted: %d after %d", c.Score, sel.Candidates[i-1].Score)
		}
		lower := strings.ToLower(c.Content)
		hasKeyword := strings.Contains(lower, "login") || strings.Contains(lower, "button") || strings.Contains(lower, "onclick")
		if !hasKeyword && c.Signals[SignalPath] == 0 {
			t.Errorf("%s selected without keyword or path match", c.Path)
		}
	}
	if sel.TotalTokens > 4000 {
		t.Errorf("TotalTokens = %d, want <= 4000", sel.TotalTokens)
	}
	if !strings.Contains(sel.ContextText, "// File: src/components/LoginButton.tsx") {
		t.Error("ContextText missing top file header")
	}
}

func TestSelectDeterministic(t *testing.T) {
	snap := loginCorpus()
	in := ParseIntent("fix the login button onClick handler")

	first, err := Select(context.Background(), snap, in, Options{Workers: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Select(context.Background(), snap, in, Options{Workers: 1 + i})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs from the first", i)
		}
	}
}

func pad(s string, n int) string {
	return s + strings.Repeat("x", n-len(s))
}

func TestSelectGreedySkip(t *testing.T) {
	snap := snapshotOf(
		file{"a.ts", pad("login login login login login ", 240), 0},
		file{"b.ts", pad("login login ", 240), 0},
		file{"c.ts", pad("login ", 120), 0},
	)
	sel, err := Select(context.Background(), snap, ParseIntent("login"), Options{MaxTokens: 100})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sel.Paths(), []string{"a.ts", "c.ts"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
	if sel.TotalTokens != 90 {
		t.Errorf("TotalTokens = %d, want 90", sel.TotalTokens)
	}
	if sel.Truncation.Reason != compression.TruncMaxTokens || sel.Truncation.DroppedCount != 1 {
		t.Errorf("Truncation = %+v", sel.Truncation)
	}
}

func TestSelectTruncatesOversizedTopFile(t *testing.T) {
	big := "login\n" + strings.Repeat("const value = 42;\n", 2000)
	snap := snapshotOf(file{"big.ts", big, 0}, file{"other.ts", pad("login", 2000), 0})

	sel, err := Select(context.Background(), snap, ParseIntent("login"), Options{MaxTokens: 100})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Candidates) != 1 {
		t.Fatalf("len(Candidates) = %d, want 1", len(sel.Candidates))
	}
	top := sel.Candidates[0]
	if !top.Truncated || top.Tokens > 100 {
		t.Errorf("top = truncated %v, tokens %d", top.Truncated, top.Tokens)
	}
	if !strings.HasSuffix(top.Content, compression.TruncatedMarker) {
		t.Error("truncated content missing marker")
	}
	if !sel.Truncation.ContentTruncated || sel.Truncation.Reason != compression.TruncFileContent {
		t.Errorf("Truncation = %+v", sel.Truncation)
	}
}

func TestSelectMaxFiles(t *testing.T) {
	var files []file
	for i := 0; i < 5; i++ {
		files = append(files, file{fmt.Sprintf("f%d.ts", i), "login", 0})
	}
	sel, err := Select(context.Background(), snapshotOf(files...), ParseIntent("login"), Options{MaxFiles: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sel.Paths(), []string{"f0.ts", "f1.ts"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v (ties keep snapshot order)", got, want)
	}
	if sel.Truncation.Reason != compression.TruncMaxFiles {
		t.Errorf("Reason = %q, want max-files", sel.Truncation.Reason)
	}
}

func TestSelectFallsBackToAllFiles(t *testing.T) {
	snap := snapshotOf(file{"a.ts", "const a = 1", 0}, file{"b.md", "# Notes", 0})
	sel, err := Select(context.Background(), snap, ParseIntent("quantum"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Candidates) != 2 {
		t.Errorf("len(Candidates) = %d, want 2", len(sel.Candidates))
	}
}

func TestSelectEmptySnapshot(t *testing.T) {
	sel, err := Select(context.Background(), scanner.NewSnapshot("", nil), ParseIntent("login"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Candidates) != 0 || sel.ContextText != "" {
		t.Errorf("Select(empty) = %+v", sel)
	}
}

func TestSelectIncludeRelated(t *testing.T) {
	snap := snapshotOf(
		file{"src/login.ts", "import { open } from './session'\nexport const login = () => open()\n", 0},
		file{"src/session.ts", "import { store } from './store'\nexport const open = () => store\n", 0},
		file{"src/store.ts", "export const store = {}\n", 0},
		file{"src/unrelated.ts", "export const n = 1\n", 0},
	)
	cache := graph.NewCache()
	opts := Options{IncludeRelated: true, ExpansionDepth: 2, Graphs: cache}

	sel, err := Select(context.Background(), snap, ParseIntent("login"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sel.Paths(), []string{"src/login.ts", "src/session.ts", "src/store.ts"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
	if sel.Candidates[0].Related || !sel.Candidates[1].Related {
		t.Error("only expanded files should be marked related")
	}
	if cache.Size() != 1 {
		t.Errorf("graph cache size = %d, want 1", cache.Size())
	}

	opts.ExpansionDepth = 1
	sel, err = Select(context.Background(), snap, ParseIntent("login"), opts)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := sel.Paths(), []string{"src/login.ts", "src/session.ts"}; !reflect.DeepEqual(got, want) {
		t.Errorf("depth 1 Paths() = %v, want %v", got, want)
	}
}

func TestSelectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Select(ctx, loginCorpus(), ParseIntent("login"), Options{}); err == nil {
		t.Error("Select() with cancelled context should fail")
	}
}

func TestScoreSignals(t *testing.T) {
	in := ParseIntent("fix the login button onClick handler")
	f := scanner.NewSnapshot("", []scanner.FileRecord{{
		Path:       "src/components/LoginButton.tsx",
		Content:    "import { Button } from './Button'\nexport const LoginButton = () => <Button />\n",
		ModifiedAt: base.Add(-3 * 24 * time.Hour),
	}}).Files[0]

	c, eligible := score(f, in, base)
	if !eligible {
		t.Fatal("expected eligible")
	}
	want := map[string]int{
		SignalPath:     weightPath,
		SignalKeywords: maxKeywordHits * weightKeyword,
		SignalType:     weightFileType,
		SignalImport:   weightImport,
		SignalRecency:  7,
	}
	if !reflect.DeepEqual(c.Signals, want) {
		t.Errorf("Signals = %v, want %v", c.Signals, want)
	}
	if c.Score != 30+25+20+15+7 {
		t.Errorf("Score = %d", c.Score)
	}
}

func TestRecency(t *testing.T) {
	tests := []struct {
		age  time.Duration
		want int
	}{
		{0, 10},
		{-time.Hour, 10},
		{36 * time.Hour, 9},
		{9 * 24 * time.Hour, 1},
		{10 * 24 * time.Hour, 0},
		{400 * 24 * time.Hour, 0},
	}
	for _, tt := range tests {
		if got := recency(base.Add(-tt.age), base); got != tt.want {
			t.Errorf("recency(%v) = %d, want %d", tt.age, got, tt.want)
		}
	}
	if got := recency(time.Time{}, base); got != 0 {
		t.Errorf("recency(zero) = %d, want 0", got)
	}
}

func TestFileType(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"src/components/Nav.tsx", TypeComponent},
		{"src/App.tsx", TypeComponent},
		{"src/pages/index.tsx", TypePage},
		{"app/dashboard/page.tsx", TypePage},
		{"src/hooks/useAuth.ts", TypeHook},
		{"src/useCart.ts", TypeHook},
		{"src/api/users.ts", TypeAPI},
		{"src/styles/main.css", TypeStyle},
		{"src/Nav.test.tsx", TypeTest},
		{"src/types/user.ts", TypeModel},
		{"src/lib/format.ts", TypeUtil},
		{"package.json", TypeConfig},
		{"docs/prd.md", TypeDocument},
		{"main.go", TypeSource},
	}
	for _, tt := range tests {
		f := scanner.NewSnapshot("", []scanner.FileRecord{{Path: tt.path, Content: "x"}}).Files[0]
		if got := fileType(f); got != tt.want {
			t.Errorf("fileType(%s) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
