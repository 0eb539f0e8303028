package planar

import "github.com/planvia/clusterplan/pkg/graph"

// FilteringBFS is a restartable breadth-first frontier over a graph with
// pluggable predicates. Visit decides whether an edge may be traversed at
// all; Descend decides whether a dequeued node's neighbors are enqueued.
// Either may be swapped between steps without disturbing visited state.
//
// A node reached under the active predicates is processed at most once per
// traversal unless it is explicitly re-armed with [FilteringBFS.Append].
type FilteringBFS struct {
	g       *graph.Graph
	pending []graph.NodeID
	head    int
	visited []bool
	visit   func(graph.AdjID) bool
	descend func(graph.NodeID) bool
}

// NewFilteringBFS creates a traversal over g seeded with starts. A nil
// visit or descend predicate means "always true".
func NewFilteringBFS(g *graph.Graph, starts []graph.NodeID, visit func(graph.AdjID) bool, descend func(graph.NodeID) bool) *FilteringBFS {
	if visit == nil {
		visit = func(graph.AdjID) bool { return true }
	}
	if descend == nil {
		descend = func(graph.NodeID) bool { return true }
	}
	b := &FilteringBFS{
		g:       g,
		visited: make([]bool, g.MaxNodeID()+1),
		visit:   visit,
		descend: descend,
	}
	b.pending = append(b.pending, starts...)
	return b
}

// Valid reports whether the traversal can continue.
func (b *FilteringBFS) Valid() bool { return b.head < len(b.pending) }

// Current peeks the next node to be processed without consuming it.
// Panics when the traversal is exhausted.
func (b *FilteringBFS) Current() graph.NodeID {
	if !b.Valid() {
		panic("planar: FilteringBFS exhausted")
	}
	return b.pending[b.head]
}

// Next dequeues the current node, marks it visited, and enqueues its
// not-yet-visited neighbors whose connecting entry passes the visit
// predicate, provided the descend predicate admits the node. Already
// visited nodes surfacing at the front are then skipped lazily.
func (b *FilteringBFS) Next() {
	n := b.Current()
	b.head++
	b.mark(n)
	if b.descend(n) {
		for _, adj := range b.g.Adjacencies(n) {
			twin := b.g.TwinNode(adj)
			if !b.hasVisited(twin) && b.visit(adj) {
				b.pending = append(b.pending, twin)
			}
		}
	}
	for b.Valid() && b.hasVisited(b.pending[b.head]) {
		b.head++
	}
}

// Append injects an additional start point, clearing its visited flag so
// the node is processed (again) even if a previous step reached it.
func (b *FilteringBFS) Append(n graph.NodeID) {
	b.grow(n)
	b.visited[n] = false
	b.pending = append(b.pending, n)
}

// HasVisited reports whether n has been dequeued already.
func (b *FilteringBFS) HasVisited(n graph.NodeID) bool { return b.hasVisited(n) }

// WillVisitTarget reports whether the visit predicate admits adj.
func (b *FilteringBFS) WillVisitTarget(adj graph.AdjID) bool { return b.visit(adj) }

// WillDescendFrom reports whether the descend predicate admits n.
func (b *FilteringBFS) WillDescendFrom(n graph.NodeID) bool { return b.descend(n) }

// SetVisitFilter swaps the edge predicate for subsequent steps.
func (b *FilteringBFS) SetVisitFilter(visit func(graph.AdjID) bool) { b.visit = visit }

// SetDescendFilter swaps the node predicate for subsequent steps.
func (b *FilteringBFS) SetDescendFilter(descend func(graph.NodeID) bool) { b.descend = descend }

// PendingCount returns the number of queued nodes, including entries that
// will be skipped because they were visited in the meantime.
func (b *FilteringBFS) PendingCount() int { return len(b.pending) - b.head }

func (b *FilteringBFS) mark(n graph.NodeID) {
	b.grow(n)
	b.visited[n] = true
}

func (b *FilteringBFS) hasVisited(n graph.NodeID) bool {
	return int(n) < len(b.visited) && b.visited[n]
}

func (b *FilteringBFS) grow(n graph.NodeID) {
	for int(n) >= len(b.visited) {
		b.visited = append(b.visited, false)
	}
}
