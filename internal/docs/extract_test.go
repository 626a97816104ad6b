package docs

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"repolens/internal/model"
	"repolens/internal/scanner"
)

func snapshot(files ...scanner.FileRecord) *scanner.Snapshot {
	return scanner.NewSnapshot("/repo", files)
}

func doc(path, content string) scanner.FileRecord {
	return scanner.FileRecord{Path: path, Content: content}
}

func extract(t *testing.T, snap *scanner.Snapshot) *Requirements {
	t.Helper()
	req, err := Extract(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return req
}

func featureNames(features []Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Name
	}
	return out
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		path string
		want []Category
	}{
		{"requirements/PRD.md", []Category{CategoryPRD}},
		{"README.md", nil},
		{"requirements-v2.md", []Category{CategoryPRD}},
		{"docs/user-stories.md", []Category{CategoryUserStories}},
		{"docs/data-model.md", []Category{CategoryDataModel}},
		{"docs/technical-spec.md", []Category{CategoryTechnicalSpec}},
		{"docs/checkout-flow.md", []Category{CategoryFlow}},
		{"docs/Product-Schema.MD", []Category{CategoryPRD, CategoryDataModel}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Categorize(tt.path); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Categorize(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestExtract_RequirementsOnlyScenario(t *testing.T) {
	snap := snapshot(
		doc("README.md", "# Shop\n\n- fast\n- simple\n"),
		doc("requirements/PRD.md", "# Product Requirements\n\n## Overview\nAn online shop.\n\n## Features\n- User login\n- Dashboard with charts\n\n## Timeline\n- Q1 launch\n"),
	)

	req := extract(t, snap)
	if got := featureNames(req.Features); !reflect.DeepEqual(got, []string{"User login", "Dashboard with charts"}) {
		t.Errorf("features = %v", got)
	}
	if len(req.Documents) != 2 {
		t.Errorf("documents = %d, want 2", len(req.Documents))
	}
	if req.Documents[1].Title != "Product Requirements" {
		t.Errorf("title = %q", req.Documents[1].Title)
	}
}

func TestExtract_PRDDetails(t *testing.T) {
	prd := strings.Join([]string{
		"## Features",
		"- **Login**: users sign in with email (must have)",
		"  Supports SSO later.",
		"- [x] Search",
		"- [ ] Export to CSV (nice to have)",
		"### Stretch goals",
		"- Dark mode",
		"## Non-functional",
		"- Fast",
		"```",
		"## Features",
		"- inside a fence",
		"```",
	}, "\n")

	req := extract(t, snapshot(doc("docs/prd.md", prd)))

	want := []Feature{
		{Name: "Login", Description: "users sign in with email (must have) Supports SSO later.", Priority: model.PriorityHigh, Source: "docs/prd.md", Line: 2},
		{Name: "Search", Priority: model.PriorityMedium, Status: StatusDone, Source: "docs/prd.md", Line: 4},
		{Name: "Export to CSV (nice to have)", Priority: model.PriorityLow, Status: StatusPlanned, Source: "docs/prd.md", Line: 5},
		{Name: "Dark mode", Priority: model.PriorityLow, Source: "docs/prd.md", Line: 7},
	}
	if !reflect.DeepEqual(req.Features, want) {
		t.Errorf("features =\n%+v\nwant\n%+v", req.Features, want)
	}
}

func TestExtract_ExcludedSectionsCloseFeatures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"out of scope", "## Features\n- Login\n- Export\n\n## Out of Scope\n- Mobile app\n- Payments\n"},
		{"nested non-goals", "## Features\n- Login\n- Export\n### Non-goals\n- Mobile app\n- Payments\n"},
		{"not in scope", "## Scope\n- Login\n- Export\n## Not in scope\n- Mobile app\n- Payments\n"},
		{"won't have", "## Requirements\n- Login\n- Export\n## Won't have\n- Mobile app\n- Payments\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := extract(t, snapshot(doc("docs/prd.md", tt.content)))
			if got := featureNames(req.Features); !reflect.DeepEqual(got, []string{"Login", "Export"}) {
				t.Errorf("features = %v, want [Login Export]", got)
			}
		})
	}
}

func TestExtract_UserStories(t *testing.T) {
	content := strings.Join([]string{
		"# Stories",
		"- As a shopper, I want to save items to a wishlist so that I can buy them later.",
		"- story: Guest checkout",
		"As an admin, I want to ban users",
	}, "\n")

	req := extract(t, snapshot(doc("docs/user-stories.md", content)))

	if got := featureNames(req.Features); !reflect.DeepEqual(got, []string{"save items to a wishlist", "Guest checkout", "ban users"}) {
		t.Errorf("features = %v", got)
	}
	if len(req.UserStories) != 2 {
		t.Fatalf("stories = %d, want 2", len(req.UserStories))
	}
	first := req.UserStories[0]
	if first.Role != "shopper" || first.Benefit != "I can buy them later" {
		t.Errorf("story = %+v", first)
	}
	if req.Features[0].Description != "As a shopper, so that I can buy them later" {
		t.Errorf("description = %q", req.Features[0].Description)
	}
	if req.Features[2].Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want medium", req.Features[2].Priority)
	}
}

func TestExtract_FeatureDedup(t *testing.T) {
	snap := snapshot(
		doc("docs/prd.md", "## Features\n- Login\n- Search\n- login \n"),
		doc("docs/stories.md", "- story: LOGIN\n- story: Profile page\n"),
	)

	req := extract(t, snap)
	if got := featureNames(req.Features); !reflect.DeepEqual(got, []string{"Login", "Search", "Profile page"}) {
		t.Errorf("features = %v", got)
	}
	if req.Features[0].Source != "docs/prd.md" {
		t.Errorf("first occurrence should win, source = %q", req.Features[0].Source)
	}
}

func TestExtract_DataModels(t *testing.T) {
	content := strings.Join([]string{
		"# Data Model",
		"## User",
		"```json",
		`{"id": "string", "email": "string"}`,
		"```",
		"## Settings",
		"```yaml",
		"theme: dark",
		"notifications: true",
		"```",
		"## Broken",
		"```json",
		`{"type": "object", "fields": [`,
		"```",
		"```typescript",
		"interface Order {",
		"  id: string",
		"}",
		"type Status = 'open' | 'closed'",
		"```",
		"## Tables",
		"| Field | Type |",
		"|-------|------|",
		"| id    | uuid |",
	}, "\n")

	req := extract(t, snapshot(doc("docs/data-model.md", content)))

	if len(req.DataModels) != 5 {
		t.Fatalf("data models = %d, want 5: %+v", len(req.DataModels), req.DataModels)
	}

	tests := []struct {
		name   string
		format ModelFormat
		fields []string
	}{
		{"User", FormatJSON, []string{"email", "id"}},
		{"Settings", FormatYAML, []string{"notifications", "theme"}},
		{"Broken", FormatRaw, nil},
		{"Order", FormatCode, []string{"Order", "Status"}},
		{"Tables", FormatTable, []string{"Field", "Type"}},
	}
	for i, tt := range tests {
		m := req.DataModels[i]
		if m.Name != tt.name || m.Format != tt.format || !reflect.DeepEqual(m.Fields, tt.fields) {
			t.Errorf("model %d = {%s %s %v}, want {%s %s %v}", i, m.Name, m.Format, m.Fields, tt.name, tt.format, tt.fields)
		}
	}

	if len(req.ParseFailures) != 1 {
		t.Fatalf("parse failures = %d, want 1", len(req.ParseFailures))
	}
	if pf := req.ParseFailures[0]; pf.Format != FormatJSON || pf.Line != 12 {
		t.Errorf("parse failure = %+v", pf)
	}
}

func TestExtract_DataModelFallbacks(t *testing.T) {
	content := strings.Join([]string{
		"```",
		`{"id": 1, "name": "x"}`,
		"```",
		"```",
		"npm install",
		"```",
		"```toml",
		"[server]",
		"port = 8080",
		"```",
	}, "\n")

	req := extract(t, snapshot(doc("docs/schema.md", content)))

	if len(req.DataModels) != 2 {
		t.Fatalf("data models = %+v", req.DataModels)
	}
	if req.DataModels[0].Format != FormatJSON || req.DataModels[0].Name != "" {
		t.Errorf("untagged JSON = %+v", req.DataModels[0])
	}
	if m := req.DataModels[1]; m.Format != FormatTOML || m.Name != "server" {
		t.Errorf("toml = %+v", m)
	}
	// The shell block is neither data nor schema-like.
	if len(req.ParseFailures) != 1 || req.ParseFailures[0].Format != FormatYAML {
		t.Errorf("parse failures = %+v", req.ParseFailures)
	}
}

func TestExtract_Flows(t *testing.T) {
	content := strings.Join([]string{
		"# Onboarding",
		"## Signup Flow",
		"1. Enter email",
		"2. Verify **code**",
		"## Pricing",
		"- Free",
		"## Checkout journey",
		"- Pay",
	}, "\n")

	req := extract(t, snapshot(doc("README.md", content)))

	if len(req.Flows) != 2 {
		t.Fatalf("flows = %+v", req.Flows)
	}
	if f := req.Flows[0]; f.Name != "Signup Flow" || !reflect.DeepEqual(f.Steps, []string{"Enter email", "Verify code"}) || f.Line != 2 {
		t.Errorf("flow = %+v", f)
	}
	if f := req.Flows[1]; f.Name != "Checkout journey" || f.Content != "- Pay" {
		t.Errorf("flow = %+v", f)
	}
}

func TestExtract_Mockups(t *testing.T) {
	snap := snapshot(
		scanner.FileRecord{Path: "assets/login.fig", Binary: true},
		scanner.FileRecord{Path: "design/mockups/home.png", Binary: true},
		scanner.FileRecord{Path: "src/logo.png", Binary: true},
	)

	req := extract(t, snap)
	if !req.HasMockups {
		t.Fatal("HasMockups = false")
	}
	if !reflect.DeepEqual(req.Mockups, []string{"assets/login.fig", "design/mockups/home.png"}) {
		t.Errorf("mockups = %v", req.Mockups)
	}

	req = extract(t, snapshot(scanner.FileRecord{Path: "src/logo.png", Binary: true}))
	if req.HasMockups {
		t.Error("a plain logo is not a mockup")
	}
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Extract(ctx, snapshot(doc("prd.md", "## Features\n- a\n")), Options{}); err == nil {
		t.Error("Extract() with cancelled context should fail")
	}
}

func TestExtract_Empty(t *testing.T) {
	req := extract(t, snapshot())
	if req.Features == nil || len(req.Features) != 0 {
		t.Errorf("features = %#v, want empty non-nil slice", req.Features)
	}
}
