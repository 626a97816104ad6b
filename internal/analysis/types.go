// Package analysis runs the repository pipelines over one snapshot and
// assembles their results.
package analysis

import (
	"repolens/internal/classify"
	"repolens/internal/docs"
	"repolens/internal/gaps"
	"repolens/internal/graph"
	"repolens/internal/project"
	"repolens/internal/recommend"
)

// Classification is the archetype together with the rule that chose it.
type Classification struct {
	Archetype   classify.Archetype `json:"archetype"`
	Description string             `json:"description"`
	Reason      string             `json:"reason"`
}

// Stats are counts over the snapshot and the pipeline outputs.
type Stats struct {
	Files         int            `json:"files"`
	SourceFiles   int            `json:"sourceFiles"`
	DocumentFiles int            `json:"documentFiles"`
	SkippedFiles  int            `json:"skippedFiles"`
	Features      int            `json:"features"`
	UserStories   int            `json:"userStories"`
	DataModels    int            `json:"dataModels"`
	Gaps          gaps.Summary   `json:"gaps"`
	Graph         graph.Stats    `json:"graph"`
	KeyFiles      []graph.Ranked `json:"keyFiles"`
}

// RepoAnalysis is the full result of analyzing one snapshot. It carries no
// timestamps so equal snapshots serialize identically.
type RepoAnalysis struct {
	SnapshotID      string                     `json:"snapshotId"`
	Fingerprint     string                     `json:"fingerprint"`
	Classification  Classification             `json:"classification"`
	Quality         *project.QualityProfile    `json:"quality,omitempty"`
	Requirements    *docs.Requirements         `json:"requirements"`
	Gaps            []gaps.Gap                 `json:"gaps"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	FileTree        *FileNode                  `json:"fileTree"`
	Stats           Stats                      `json:"stats"`
}
