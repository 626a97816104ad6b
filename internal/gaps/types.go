// Package gaps finds markers of unfinished work in source text: TODO
// comments, stubs, mock data, placeholders and incomplete constructs.
//
// Detection is a heuristic over line patterns, not a parser. False positives
// and negatives are expected.
package gaps

import "repolens/internal/model"

// Kind classifies a gap.
type Kind string

const (
	KindTODO        Kind = "todo"
	KindStub        Kind = "stub"
	KindMock        Kind = "mock"
	KindPlaceholder Kind = "placeholder"
	KindIncomplete  Kind = "incomplete"
)

// Kinds lists every gap kind in report order.
var Kinds = []Kind{KindTODO, KindStub, KindMock, KindPlaceholder, KindIncomplete}

// Gap is one detected marker. Line is 0 for whole-file gaps.
type Gap struct {
	Kind        Kind           `json:"kind"`
	FilePath    string         `json:"filePath"`
	Line        int            `json:"line,omitempty"`
	Column      int            `json:"column,omitempty"`
	Description string         `json:"description"`
	Priority    model.Priority `json:"priority"`
	Rule        string         `json:"rule"`
	Context     string         `json:"context,omitempty"`
}

// Summary counts gaps per kind and priority.
type Summary struct {
	Total      int                    `json:"total"`
	ByKind     map[Kind]int           `json:"byKind"`
	ByPriority map[model.Priority]int `json:"byPriority"`
}

// Summarize counts gaps.
func Summarize(gs []Gap) Summary {
	s := Summary{
		Total:      len(gs),
		ByKind:     make(map[Kind]int),
		ByPriority: make(map[model.Priority]int),
	}
	for _, g := range gs {
		s.ByKind[g.Kind]++
		s.ByPriority[g.Priority]++
	}
	return s
}

// Count returns the number of gaps of kind k.
func Count(gs []Gap, k Kind) int {
	n := 0
	for _, g := range gs {
		if g.Kind == k {
			n++
		}
	}
	return n
}
