package planar

import (
	"container/heap"
	"fmt"

	"github.com/planvia/clusterplan/pkg/graph"
)

// PipeBijPair is one aligned pair of adjacency entries, the first at a
// pipe's own node and the second at its twin.
type PipeBijPair struct {
	First, Second graph.AdjID
}

// PipeBij realizes a pipe's edge bijection as an ordered sequence of entry
// pairs, ordered by cyclic position around the first node. It is the single
// source of truth for how to re-weld two matched nodes.
type PipeBij []PipeBijPair

// Pipe is a registered pair of matched nodes standing in for a flattened
// cluster boundary.
type Pipe struct {
	U, V graph.NodeID

	heapIndex int
}

// Degree returns the pipe's size: deg(U), which always equals deg(V).
func (p *Pipe) Degree(g *graph.Graph) int { return g.Degree(p.U) }

// Matching is the pipe registry: it tracks which nodes are matched with
// which, owns the positional edge bijection between matched rotations, and
// keeps a smallest-degree-first queue consumed by the reduction procedure.
//
// All mutations are precondition-checked with panics; the registry assumes
// a single synchronous caller and never partially applies an operation.
type Matching struct {
	g     *graph.Graph
	twin  []graph.NodeID // by NodeID; NilNode when unmatched
	pipes map[graph.NodeID]*Pipe
	queue pipeQueue
}

// NewMatching creates an empty registry over g.
func NewMatching(g *graph.Graph) *Matching {
	return &Matching{
		g:     g,
		pipes: make(map[graph.NodeID]*Pipe),
	}
}

// Count returns the number of registered pipes.
func (m *Matching) Count() int { return len(m.pipes) / 2 }

// IsMatched reports whether n currently participates in a pipe.
func (m *Matching) IsMatched(n graph.NodeID) bool { return m.Twin(n) != graph.NilNode }

// Twin returns the node matched with n, or NilNode if n is unmatched.
func (m *Matching) Twin(n graph.NodeID) graph.NodeID {
	if int(n) < len(m.twin) && m.twin[n] >= 0 {
		return m.twin[n]
	}
	return graph.NilNode
}

// MatchNodes registers the pipe (u, v). Panics if either node is already
// matched or the degrees differ.
func (m *Matching) MatchNodes(u, v graph.NodeID) {
	if m.IsMatched(u) || m.IsMatched(v) {
		panic(fmt.Sprintf("planar: node %d or %d is already matched", u, v))
	}
	if m.g.Degree(u) != m.g.Degree(v) {
		panic(fmt.Sprintf("planar: degree mismatch %d != %d matching nodes %d, %d",
			m.g.Degree(u), m.g.Degree(v), u, v))
	}
	p := &Pipe{U: u, V: v, heapIndex: -1}
	m.setTwin(u, v)
	m.setTwin(v, u)
	m.pipes[u] = p
	m.pipes[v] = p
}

// RemoveMatching unregisters the pipe (u, v) without touching graph
// structure. Panics if (u, v) is not a current pipe.
func (m *Matching) RemoveMatching(u, v graph.NodeID) {
	p := m.pipes[u]
	if p == nil || p != m.pipes[v] {
		panic(fmt.Sprintf("planar: (%d, %d) is not a registered pipe", u, v))
	}
	if p.heapIndex >= 0 {
		heap.Remove(&m.queue, p.heapIndex)
	}
	m.setTwin(u, graph.NilNode)
	m.setTwin(v, graph.NilNode)
	delete(m.pipes, u)
	delete(m.pipes, v)
}

// PipeOf returns the pipe n participates in, or nil.
func (m *Matching) PipeOf(n graph.NodeID) *Pipe { return m.pipes[n] }

// Pipes returns every registered pipe once, in unspecified order.
func (m *Matching) Pipes() []*Pipe {
	out := make([]*Pipe, 0, m.Count())
	seen := make(map[*Pipe]struct{}, m.Count())
	for _, p := range m.pipes {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// IncidentEdgeBijection produces the ordered bijection for n's pipe: n's
// rotation walked forward paired against the twin's rotation walked
// backward. Matched rotations are mirror images of each other, so aligned
// positions carry the two halves of one conceptual edge. Panics if n is
// unmatched or the degrees have drifted apart.
func (m *Matching) IncidentEdgeBijection(n graph.NodeID) PipeBij {
	t := m.Twin(n)
	if t == graph.NilNode {
		panic(fmt.Sprintf("planar: node %d is not matched", n))
	}
	ru := m.g.Adjacencies(n)
	rv := m.g.Adjacencies(t)
	if len(ru) != len(rv) {
		panic(fmt.Sprintf("planar: pipe (%d, %d) degrees drifted: %d != %d", n, t, len(ru), len(rv)))
	}
	bij := make(PipeBij, len(ru))
	for i := range ru {
		bij[i] = PipeBijPair{First: ru[i], Second: rv[len(rv)-1-i]}
	}
	return bij
}

// RebuildHeap re-derives the smallest-degree-first queue from the current
// registry contents. Call once after bulk registration rather than per
// match to avoid churn during construction.
func (m *Matching) RebuildHeap() {
	m.queue = m.queue[:0]
	for _, p := range m.Pipes() {
		p.heapIndex = len(m.queue)
		m.queue = append(m.queue, pipeEntry{pipe: p, degree: p.Degree(m.g)})
	}
	heap.Init(&m.queue)
}

// SmallestPipe returns the registered pipe of minimum degree per the last
// RebuildHeap, or nil when the heap is empty or stale.
func (m *Matching) SmallestPipe() *Pipe {
	if len(m.queue) == 0 {
		return nil
	}
	return m.queue[0].pipe
}

func (m *Matching) setTwin(n, t graph.NodeID) {
	for int(n) >= len(m.twin) {
		m.twin = append(m.twin, graph.NilNode)
	}
	m.twin[n] = t
}

type pipeEntry struct {
	pipe   *Pipe
	degree int
}

type pipeQueue []pipeEntry

func (q pipeQueue) Len() int           { return len(q) }
func (q pipeQueue) Less(i, j int) bool { return q[i].degree < q[j].degree }
func (q *pipeQueue) Push(x any)        { *q = append(*q, x.(pipeEntry)) }

func (q pipeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].pipe.heapIndex = i
	q[j].pipe.heapIndex = j
}

func (q *pipeQueue) Pop() any {
	old := *q
	n := len(old)
	entry := old[n-1]
	entry.pipe.heapIndex = -1
	*q = old[:n-1]
	return entry
}
