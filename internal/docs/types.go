// Package docs extracts requirements from prose documents: features, user
// stories, data-model sketches, flows and mockup presence.
package docs

import "repolens/internal/model"

// Category is a document classification derived from its filename.
type Category string

const (
	CategoryPRD           Category = "prd"
	CategoryUserStories   Category = "user-stories"
	CategoryTechnicalSpec Category = "technical-spec"
	CategoryDataModel     Category = "data-model"
	CategoryFlow          Category = "flow"
)

// FeatureStatus is set from markdown task-list checkboxes.
type FeatureStatus string

const (
	StatusNone    FeatureStatus = ""
	StatusPlanned FeatureStatus = "planned"
	StatusDone    FeatureStatus = "done"
)

// Feature is one extracted requirement.
type Feature struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Priority    model.Priority `json:"priority"`
	Status      FeatureStatus  `json:"status,omitempty"`
	Source      string         `json:"source"`
	Line        int            `json:"line"`
}

// UserStory is a canonical "As a ..., I want ... so that ..." sentence.
type UserStory struct {
	Role    string `json:"role"`
	Goal    string `json:"goal"`
	Benefit string `json:"benefit,omitempty"`
	Source  string `json:"source"`
	Line    int    `json:"line"`
}

// ModelFormat says how a data model was recovered.
type ModelFormat string

const (
	FormatJSON  ModelFormat = "json"
	FormatYAML  ModelFormat = "yaml"
	FormatTOML  ModelFormat = "toml"
	FormatCode  ModelFormat = "code"
	FormatTable ModelFormat = "table"
	FormatRaw   ModelFormat = "raw"
)

// DataModel is a data-model sketch found in a document.
type DataModel struct {
	Name   string      `json:"name"`
	Format ModelFormat `json:"format"`
	Fields []string    `json:"fields,omitempty"`
	Raw    string      `json:"raw,omitempty"`
	Source string      `json:"source"`
	Line   int         `json:"line"`
}

// Flow is a user flow or process section.
type Flow struct {
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Steps   []string `json:"steps,omitempty"`
	Source  string   `json:"source"`
	Line    int      `json:"line"`
}

// ParseFailure records a fenced block that could not be parsed.
type ParseFailure struct {
	Source  string      `json:"source"`
	Line    int         `json:"line"`
	Format  ModelFormat `json:"format"`
	Message string      `json:"message"`
}

// Document is a scanned document with its categories.
type Document struct {
	Path       string     `json:"path"`
	Title      string     `json:"title,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// Requirements is everything extracted from the documents of a snapshot.
type Requirements struct {
	Documents     []Document     `json:"documents"`
	Features      []Feature      `json:"features"`
	UserStories   []UserStory    `json:"userStories,omitempty"`
	DataModels    []DataModel    `json:"dataModels,omitempty"`
	Flows         []Flow         `json:"flows,omitempty"`
	ParseFailures []ParseFailure `json:"parseFailures,omitempty"`
	HasMockups    bool           `json:"hasMockups"`
	Mockups       []string       `json:"mockups,omitempty"`
}

// Has reports whether the document was classified into c.
func (d Document) Has(c Category) bool {
	for _, dc := range d.Categories {
		if dc == c {
			return true
		}
	}
	return false
}
