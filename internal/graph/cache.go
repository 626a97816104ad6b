package graph

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"repolens/internal/scanner"
)

// CachedGraph is a graph together with the snapshot it was built from.
type CachedGraph struct {
	Graph      *Graph
	SnapshotID string
	BuiltAt    time.Time
}

// Cache keeps built graphs per snapshot ID. Concurrent builds for the same
// snapshot are collapsed into one.
type Cache struct {
	mu     sync.RWMutex
	graphs map[string]*CachedGraph
	group  singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{graphs: make(map[string]*CachedGraph)}
}

// Get returns the cached graph for snapshotID.
func (c *Cache) Get(snapshotID string) (*CachedGraph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, found := c.graphs[snapshotID]
	return cached, found
}

// Set stores g under snapshotID.
func (c *Cache) Set(snapshotID string, g *Graph) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.graphs[snapshotID] = &CachedGraph{Graph: g, SnapshotID: snapshotID, BuiltAt: time.Now()}
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(snapshotID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.graphs, snapshotID)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.graphs = make(map[string]*CachedGraph)
}

// Size returns the number of cached graphs.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.graphs)
}

// GetOrBuild returns the cached graph for snap or builds and stores it.
func (c *Cache) GetOrBuild(ctx context.Context, snap *scanner.Snapshot, opts Options) (*Graph, error) {
	if cached, ok := c.Get(snap.ID); ok {
		return cached.Graph, nil
	}
	v, err, _ := c.group.Do(snap.ID, func() (interface{}, error) {
		if cached, ok := c.Get(snap.ID); ok {
			return cached.Graph, nil
		}
		g, err := Build(ctx, snap, opts)
		if err != nil {
			return nil, err
		}
		c.Set(snap.ID, g)
		return g, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Graph), nil
}
