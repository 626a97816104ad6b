package selector

import (
	"reflect"
	"testing"
)

func TestParseIntentAction(t *testing.T) {
	tests := []struct {
		text string
		want Action
	}{
		{"create a signup form", ActionCreate},
		{"add dark mode and fix the header", ActionCreate},
		{"update the pricing table copy", ActionUpdate},
		{"fix the login button onClick handler", ActionFix},
		{"refactor the auth service", ActionRefactor},
		{"improve dashboard performance", ActionEnhance},
		{"the navbar looks odd", ActionUpdate},
		{"", ActionUpdate},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := ParseIntent(tt.text).Action; got != tt.want {
				t.Errorf("Action = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseIntentLoginButton(t *testing.T) {
	in := ParseIntent("fix the login button onClick handler")

	if in.ComponentName != "LoginButton" {
		t.Errorf("ComponentName = %q, want LoginButton", in.ComponentName)
	}
	if in.TargetPath != "" {
		t.Errorf("TargetPath = %q, want empty", in.TargetPath)
	}
	wantKeywords := []string{"login", "button", "onclick", "handler", "component"}
	if !reflect.DeepEqual(in.Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want %v", in.Keywords, wantKeywords)
	}
	if !in.HasFileType(TypeComponent) {
		t.Errorf("FileTypes = %v, want component", in.FileTypes)
	}
	if in.Complexity != ComplexitySimple {
		t.Errorf("Complexity = %q, want simple", in.Complexity)
	}
}

func TestParseIntentTargetAndComponent(t *testing.T) {
	tests := []struct {
		text      string
		target    string
		component string
	}{
		{"update src/components/Header.tsx to show the logo", "src/components/Header.tsx", ""},
		{"rename helpers.ts exports", "helpers.ts", ""},
		{"add a loading state to UserProfileCard", "", "UserProfileCard"},
		{"create a settings page", "", "SettingsPage"},
		{"create a new component", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := ParseIntent(tt.text)
			if in.TargetPath != tt.target {
				t.Errorf("TargetPath = %q, want %q", in.TargetPath, tt.target)
			}
			if in.ComponentName != tt.component {
				t.Errorf("ComponentName = %q, want %q", in.ComponentName, tt.component)
			}
		})
	}
}

func TestParseIntentDomainKeywords(t *testing.T) {
	tests := []struct {
		text    string
		injects string
		types   FileType
	}{
		{"add an endpoint for orders", "api", TypeAPI},
		{"change the theme colors", "style", TypeStyle},
		{"raise coverage for checkout", "test", TypeTest},
		{"move auth state into a hook", "component", TypeHook},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := ParseIntent(tt.text)
			found := false
			for _, k := range in.Keywords {
				if k == tt.injects {
					found = true
				}
			}
			if !found {
				t.Errorf("Keywords = %v, want %q injected", in.Keywords, tt.injects)
			}
			if !in.HasFileType(tt.types) {
				t.Errorf("FileTypes = %v, want %q", in.FileTypes, tt.types)
			}
		})
	}
}

func TestParseIntentComplexity(t *testing.T) {
	tests := []struct {
		text string
		want Complexity
	}{
		{"fix typo in footer", ComplexitySimple},
		{"migrate the entire app to the new router", ComplexityComplex},
		{"add a profile page that lists the user's recent orders with pagination and a filter by status", ComplexityModerate},
	}
	for _, tt := range tests {
		if got := ParseIntent(tt.text).Complexity; got != tt.want {
			t.Errorf("Complexity(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestParseIntentNoDuplicateKeywords(t *testing.T) {
	in := ParseIntent("button Button BUTTON component")
	seen := map[string]bool{}
	for _, k := range in.Keywords {
		if seen[k] {
			t.Fatalf("duplicate keyword %q in %v", k, in.Keywords)
		}
		seen[k] = true
	}
}
