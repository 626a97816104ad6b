package graph

import (
	"context"
	"sort"
)

// RankOptions configures Personalized PageRank.
type RankOptions struct {
	// Damping is the probability of following an edge vs teleporting (default: 0.85)
	Damping float64

	// MaxIterations is the maximum number of power iterations (default: 20)
	MaxIterations int

	// Tolerance for convergence detection (default: 1e-6)
	Tolerance float64

	// TopK is the number of top results to return (default: 20)
	TopK int
}

// DefaultRankOptions returns sensible defaults.
func DefaultRankOptions() RankOptions {
	return RankOptions{
		Damping:       0.85,
		MaxIterations: 20,
		Tolerance:     1e-6,
		TopK:          20,
	}
}

// Ranked is one scored path.
type Ranked struct {
	Path  string  `json:"path"`
	Score float64 `json:"score"`
}

// Rank computes Personalized PageRank teleporting to seeds, or to every
// node when seeds is empty. Ties are ordered by path so the result is
// deterministic.
func (g *Graph) Rank(ctx context.Context, seeds []string, opts RankOptions) ([]Ranked, error) {
	n := g.NumNodes()
	if n == 0 {
		return []Ranked{}, nil
	}

	if opts.Damping <= 0 || opts.Damping >= 1 {
		opts.Damping = 0.85
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 20
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}
	if opts.TopK <= 0 {
		opts.TopK = 20
	}

	seedIdx := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if idx, ok := g.nodeIdx[s]; ok {
			seedIdx = append(seedIdx, idx)
		}
	}
	if len(seedIdx) == 0 {
		if len(seeds) > 0 {
			return []Ranked{}, nil
		}
		for i := 0; i < n; i++ {
			seedIdx = append(seedIdx, i)
		}
	}

	// Teleport vector (uniform over seeds)
	teleport := make([]float64, n)
	for _, idx := range seedIdx {
		teleport[idx] = 1.0 / float64(len(seedIdx))
	}

	scores := make([]float64, n)
	copy(scores, teleport)

	outDegree := make([]float64, n)
	for i, edges := range g.outEdges {
		for _, e := range edges {
			outDegree[i] += e.weight
		}
	}

	newScores := make([]float64, n)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range newScores {
			newScores[i] = 0
		}

		// Propagate scores along edges
		for i, edges := range g.outEdges {
			if outDegree[i] == 0 {
				continue
			}
			contrib := scores[i] / outDegree[i]
			for _, e := range edges {
				newScores[e.target] += contrib * e.weight
			}
		}

		maxDiff := 0.0
		for i := range newScores {
			newScores[i] = opts.Damping*newScores[i] + (1-opts.Damping)*teleport[i]
			if d := abs(newScores[i] - scores[i]); d > maxDiff {
				maxDiff = d
			}
		}
		scores, newScores = newScores, scores

		if maxDiff < opts.Tolerance {
			break
		}
	}

	ranked := make([]Ranked, 0, n)
	for i, s := range scores {
		if s > 0 {
			ranked = append(ranked, Ranked{Path: g.nodes[i], Score: s})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Path < ranked[j].Path
	})
	if len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}
	return ranked, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
