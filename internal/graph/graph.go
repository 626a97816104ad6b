// Package graph builds the file-level dependency graph of a snapshot and
// answers reachability and centrality queries over it.
package graph

import "sort"

// Edge kinds.
const (
	KindImport    = "import"
	KindReference = "reference"
)

// Edge is a directed dependency between two snapshot paths.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	Kind   string  `json:"kind"`
}

// Graph is a sparse directed graph of snapshot paths. It is built once and
// read concurrently afterwards.
type Graph struct {
	nodes   []string
	nodeIdx map[string]int

	// outEdges[i] lists (neighbor, weight) in insertion order
	outEdges [][]edgeEntry
	inEdges  [][]edgeEntry

	edgeKinds map[string]map[string]string // from -> to -> kind
}

type edgeEntry struct {
	target int
	weight float64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodeIdx:   make(map[string]int),
		edgeKinds: make(map[string]map[string]string),
	}
}

// AddNode adds a node if it doesn't exist and returns its index.
func (g *Graph) AddNode(id string) int {
	if idx, ok := g.nodeIdx[id]; ok {
		return idx
	}
	idx := len(g.nodes)
	g.nodes = append(g.nodes, id)
	g.nodeIdx[id] = idx
	g.outEdges = append(g.outEdges, nil)
	g.inEdges = append(g.inEdges, nil)
	return idx
}

// AddEdge adds a directed edge. Self edges and repeats of an existing
// from/to pair are ignored; the first kind recorded wins.
func (g *Graph) AddEdge(from, to string, weight float64, kind string) {
	if from == to {
		return
	}
	if _, ok := g.edgeKinds[from][to]; ok {
		return
	}
	src := g.AddNode(from)
	dst := g.AddNode(to)
	g.outEdges[src] = append(g.outEdges[src], edgeEntry{target: dst, weight: weight})
	g.inEdges[dst] = append(g.inEdges[dst], edgeEntry{target: src, weight: weight})

	if g.edgeKinds[from] == nil {
		g.edgeKinds[from] = make(map[string]string)
	}
	g.edgeKinds[from][to] = kind
}

// AddEdges adds multiple edges at once.
func (g *Graph) AddEdges(edges []Edge) {
	for _, e := range edges {
		g.AddEdge(e.From, e.To, e.Weight, e.Kind)
	}
}

// HasNode checks if a node exists in the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodeIdx[id]
	return ok
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the total number of edges.
func (g *Graph) NumEdges() int {
	total := 0
	for _, edges := range g.outEdges {
		total += len(edges)
	}
	return total
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Imports returns the paths id depends on, in insertion order.
func (g *Graph) Imports(id string) []string {
	return g.neighbors(id, g.outEdges)
}

// ImportedBy returns the paths depending on id, in insertion order.
func (g *Graph) ImportedBy(id string) []string {
	return g.neighbors(id, g.inEdges)
}

func (g *Graph) neighbors(id string, adj [][]edgeEntry) []string {
	idx, ok := g.nodeIdx[id]
	if !ok {
		return nil
	}
	out := make([]string, len(adj[idx]))
	for i, e := range adj[idx] {
		out[i] = g.nodes[e.target]
	}
	return out
}

// EdgeKind returns the kind of the edge between two nodes, or "".
func (g *Graph) EdgeKind(from, to string) string {
	return g.edgeKinds[from][to]
}

// Edges returns every edge sorted by from, then to.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.NumEdges())
	for i, edges := range g.outEdges {
		for _, e := range edges {
			from, to := g.nodes[i], g.nodes[e.target]
			out = append(out, Edge{From: from, To: to, Weight: e.weight, Kind: g.edgeKinds[from][to]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Expand walks outgoing edges breadth-first from start, up to depth hops.
// Each reachable path is returned once, start first; cycles terminate
// because visited nodes are never re-queued. An unknown start yields just
// the start itself.
func (g *Graph) Expand(start string, depth int) []string {
	out := []string{start}
	idx, ok := g.nodeIdx[start]
	if !ok || depth <= 0 {
		return out
	}

	visited := map[int]bool{idx: true}
	frontier := []int{idx}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []int
		for _, n := range frontier {
			for _, e := range g.outEdges[n] {
				if visited[e.target] {
					continue
				}
				visited[e.target] = true
				out = append(out, g.nodes[e.target])
				next = append(next, e.target)
			}
		}
		frontier = next
	}
	return out
}

// Stats describes a graph.
type Stats struct {
	TotalNodes     int     `json:"totalNodes"`
	TotalEdges     int     `json:"totalEdges"`
	ImportEdges    int     `json:"importEdges"`
	ReferenceEdges int     `json:"referenceEdges"`
	AvgOutDegree   float64 `json:"avgOutDegree"`
}

// Stats returns statistics about the graph.
func (g *Graph) Stats() Stats {
	stats := Stats{
		TotalNodes: g.NumNodes(),
		TotalEdges: g.NumEdges(),
	}
	for _, targets := range g.edgeKinds {
		for _, kind := range targets {
			switch kind {
			case KindImport:
				stats.ImportEdges++
			case KindReference:
				stats.ReferenceEdges++
			}
		}
	}
	if stats.TotalNodes > 0 {
		stats.AvgOutDegree = float64(stats.TotalEdges) / float64(stats.TotalNodes)
	}
	return stats
}
