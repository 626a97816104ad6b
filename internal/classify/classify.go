// Package classify assigns a repository one of four archetypes from its
// code, document and quality signals.
package classify

import (
	"fmt"

	"repolens/internal/project"
)

// Archetype is the nature of a repository.
type Archetype string

const (
	// RequirementsOnly has documents but no code.
	RequirementsOnly Archetype = "requirements-only"
	// PartialImplementation has code and documents, but the code is not yet
	// a complete application.
	PartialImplementation Archetype = "partial-implementation"
	// ExistingApp is a working application, with or without documents.
	ExistingApp Archetype = "existing-app"
	// Hybrid has a substantial implementation plus requirements to build on.
	Hybrid Archetype = "hybrid"
)

// ExistingAppComponentThreshold is the component count a documented, tested
// repository must exceed to count as an existing app.
const ExistingAppComponentThreshold = 5

// String returns the archetype identifier.
func (a Archetype) String() string { return string(a) }

// Description returns a one-line explanation of the archetype.
func (a Archetype) Description() string {
	switch a {
	case RequirementsOnly:
		return "documents only; nothing implemented yet"
	case PartialImplementation:
		return "code exists alongside requirements but is incomplete"
	case ExistingApp:
		return "a working application"
	case Hybrid:
		return "a substantial implementation with requirements to extend it"
	default:
		return "unknown"
	}
}

// ValidArchetypes returns every archetype identifier.
func ValidArchetypes() []string {
	return []string{
		string(RequirementsOnly), string(PartialImplementation),
		string(ExistingApp), string(Hybrid),
	}
}

// ParseArchetype parses an archetype identifier.
func ParseArchetype(s string) (Archetype, error) {
	switch Archetype(s) {
	case RequirementsOnly, PartialImplementation, ExistingApp, Hybrid:
		return Archetype(s), nil
	default:
		return "", fmt.Errorf("invalid archetype '%s': must be one of: %v", s, ValidArchetypes())
	}
}

// Input carries the signals the classifier reads. Profile may be nil when
// quality analysis was unavailable.
type Input struct {
	HasCode bool
	HasDocs bool
	Profile *project.QualityProfile
}

// Thresholds tunes the classifier.
type Thresholds struct {
	ExistingAppComponents int
}

// DefaultThresholds returns the standard thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{ExistingAppComponents: ExistingAppComponentThreshold}
}

// Classify evaluates the rules in fixed order. It is total: every input
// yields exactly one archetype.
func Classify(in Input, th Thresholds) Archetype {
	a, _ := Explain(in, th)
	return a
}

// Explain is Classify plus the reason for the decision.
func Explain(in Input, th Thresholds) (Archetype, string) {
	if th.ExistingAppComponents <= 0 {
		th.ExistingAppComponents = ExistingAppComponentThreshold
	}

	switch {
	case !in.HasCode && in.HasDocs:
		return RequirementsOnly, "documents present, no source code"
	case in.HasCode && !in.HasDocs:
		return ExistingApp, "source code present, no documents"
	case in.HasCode && in.HasDocs:
		p := in.Profile
		if p == nil {
			return PartialImplementation, "quality profile unavailable"
		}
		m := p.Metrics
		if m.ComponentCount == 0 || m.PageCount == 0 {
			return PartialImplementation, fmt.Sprintf("%d components and %d pages", m.ComponentCount, m.PageCount)
		}
		if p.HasTests && m.ComponentCount > th.ExistingAppComponents {
			return ExistingApp, fmt.Sprintf("tested, with %d components (> %d)", m.ComponentCount, th.ExistingAppComponents)
		}
		return Hybrid, fmt.Sprintf("%d components and %d pages alongside documents", m.ComponentCount, m.PageCount)
	default:
		return RequirementsOnly, "no source code or documents"
	}
}
