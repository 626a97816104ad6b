package docs

import "testing"

func TestScanMarkdown(t *testing.T) {
	content := "# Title\n~~~json\n{\"a\": 1}\n```\nstill inside\n~~~\ntext\n```yaml\nopen: true\n"
	md := scanMarkdown(content)

	if md.title != "Title" {
		t.Errorf("title = %q, want Title", md.title)
	}
	if len(md.fences) != 2 {
		t.Fatalf("fences = %d, want 2", len(md.fences))
	}
	if f := md.fences[0]; f.lang != "json" || f.body != "{\"a\": 1}\n```\nstill inside" || f.heading != "Title" {
		t.Errorf("first fence = %+v", f)
	}
	if f := md.fences[1]; f.lang != "yaml" || f.body != "open: true\n" {
		t.Errorf("unterminated fence = %+v", f)
	}

	var texts []string
	for _, l := range md.lines {
		texts = append(texts, l.text)
	}
	if len(texts) != 2 || texts[0] != "# Title" || texts[1] != "text" {
		t.Errorf("prose lines = %q", texts)
	}
}

func TestParseBullet(t *testing.T) {
	tests := []struct {
		in     string
		indent int
		text   string
		ok     bool
	}{
		{"- item", 0, "item", true},
		{"  * nested", 2, "nested", true},
		{"\t+ tabbed", 4, "tabbed", true},
		{"3. numbered", 0, "numbered", true},
		{"plain text", 0, "", false},
		{"**bold**", 0, "", false},
	}
	for _, tt := range tests {
		indent, text, ok := parseBullet(tt.in)
		if indent != tt.indent || text != tt.text || ok != tt.ok {
			t.Errorf("parseBullet(%q) = (%d, %q, %v), want (%d, %q, %v)", tt.in, indent, text, ok, tt.indent, tt.text, tt.ok)
		}
	}
}
