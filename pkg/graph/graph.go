package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrDeadNode is returned by [Graph.Validate] when an adjacency entry or
	// edge references a deleted node. This indicates graph corruption.
	ErrDeadNode = errors.New("reference to deleted node")

	// ErrDeadEdge is returned by [Graph.Validate] when an adjacency entry
	// references a deleted edge. This indicates graph corruption.
	ErrDeadEdge = errors.New("reference to deleted edge")

	// ErrRotationMismatch is returned by [Graph.Validate] when a node's
	// rotation and the edge table disagree about incidence.
	ErrRotationMismatch = errors.New("rotation does not match edge table")
)

// NodeID is a stable handle into the graph's node arena.
type NodeID int

// EdgeID is a stable handle into the graph's edge arena.
type EdgeID int

// AdjID is a stable handle to one adjacency entry: a directed slot in a
// node's cyclic rotation, paired with a twin slot on the edge's other
// endpoint. Adjacency handles survive endpoint moves, which is what makes
// the flatten/undo machinery able to refer to "the same slot" across
// transformations.
type AdjID int

// Nil handles returned by lookups that find nothing.
const (
	NilNode NodeID = -1
	NilEdge EdgeID = -1
	NilAdj  AdjID  = -1
)

type nodeRec struct {
	rot  []AdjID // cyclic rotation, clockwise
	dead bool
}

type adjRec struct {
	edge EdgeID
	node NodeID // owner of the rotation slot
	dead bool
}

type edgeRec struct {
	source, target       NodeID
	adjSource, adjTarget AdjID
	dead                 bool
}

// Graph is a mutable multigraph with an explicit cyclic adjacency order
// (rotation) per node. Nodes, edges, and adjacency entries live in arenas
// and are addressed by small integer handles; deletion marks slots dead
// without invalidating other handles.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// use without external synchronization.
type Graph struct {
	nodes []nodeRec
	edges []edgeRec
	adjs  []adjRec

	numNodes, numEdges int
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// NewNode adds an isolated node and returns its handle.
func (g *Graph) NewNode() NodeID {
	g.nodes = append(g.nodes, nodeRec{})
	g.numNodes++
	return NodeID(len(g.nodes) - 1)
}

// NewNodeWithID revives the node slot id, which must either be dead or lie
// one past the current arena end. Undo operations use this to restore nodes
// under their original handles. Panics if the slot is alive.
func (g *Graph) NewNodeWithID(id NodeID) NodeID {
	switch {
	case int(id) == len(g.nodes):
		return g.NewNode()
	case int(id) < len(g.nodes):
		if !g.nodes[id].dead {
			panic(fmt.Sprintf("graph: node %d is alive", id))
		}
		g.nodes[id] = nodeRec{}
		g.numNodes++
		return id
	default:
		for NodeID(len(g.nodes)) < id {
			g.nodes = append(g.nodes, nodeRec{dead: true})
		}
		return g.NewNode()
	}
}

// DelNode deletes n and all incident edges.
func (g *Graph) DelNode(n NodeID) {
	for _, a := range g.Adjacencies(n) {
		g.DelEdge(g.adjs[a].edge)
	}
	g.nodes[n].dead = true
	g.numNodes--
}

// NewEdge adds a directed edge u -> v, appending one adjacency entry to the
// end of each endpoint's rotation, and returns its handle.
func (g *Graph) NewEdge(u, v NodeID) EdgeID {
	e := EdgeID(len(g.edges))
	as := g.newAdj(e, u)
	at := g.newAdj(e, v)
	g.edges = append(g.edges, edgeRec{source: u, target: v, adjSource: as, adjTarget: at})
	g.nodes[u].rot = append(g.nodes[u].rot, as)
	g.nodes[v].rot = append(g.nodes[v].rot, at)
	g.numEdges++
	return e
}

func (g *Graph) newAdj(e EdgeID, n NodeID) AdjID {
	g.adjs = append(g.adjs, adjRec{edge: e, node: n})
	return AdjID(len(g.adjs) - 1)
}

// DelEdge deletes e and removes its two adjacency entries from the
// endpoint rotations.
func (g *Graph) DelEdge(e EdgeID) {
	rec := &g.edges[e]
	g.removeFromRot(rec.adjSource)
	g.removeFromRot(rec.adjTarget)
	g.adjs[rec.adjSource].dead = true
	g.adjs[rec.adjTarget].dead = true
	rec.dead = true
	g.numEdges--
}

// NumNodes returns the number of live nodes.
func (g *Graph) NumNodes() int { return g.numNodes }

// NumEdges returns the number of live edges.
func (g *Graph) NumEdges() int { return g.numEdges }

// MaxNodeID returns the largest handle ever issued for a node, or NilNode
// for an empty arena. Dead slots count; use HasNode to test liveness.
func (g *Graph) MaxNodeID() NodeID { return NodeID(len(g.nodes) - 1) }

// HasNode reports whether n is a live node handle.
func (g *Graph) HasNode(n NodeID) bool {
	return n >= 0 && int(n) < len(g.nodes) && !g.nodes[n].dead
}

// HasEdge reports whether e is a live edge handle.
func (g *Graph) HasEdge(e EdgeID) bool {
	return e >= 0 && int(e) < len(g.edges) && !g.edges[e].dead
}

// Nodes returns all live node handles in ascending order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, 0, g.numNodes)
	for i := range g.nodes {
		if !g.nodes[i].dead {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Edges returns all live edge handles in ascending order.
func (g *Graph) Edges() []EdgeID {
	out := make([]EdgeID, 0, g.numEdges)
	for i := range g.edges {
		if !g.edges[i].dead {
			out = append(out, EdgeID(i))
		}
	}
	return out
}

// Degree returns the number of adjacency entries of n.
func (g *Graph) Degree(n NodeID) int { return len(g.nodes[n].rot) }

// Adjacencies returns a copy of n's rotation in cyclic order.
func (g *Graph) Adjacencies(n NodeID) []AdjID {
	rot := g.nodes[n].rot
	out := make([]AdjID, len(rot))
	copy(out, rot)
	return out
}

// FirstAdj returns the first entry of n's rotation, or NilAdj for an
// isolated node.
func (g *Graph) FirstAdj(n NodeID) AdjID {
	if len(g.nodes[n].rot) == 0 {
		return NilAdj
	}
	return g.nodes[n].rot[0]
}

// CyclicSucc returns the entry after a in its owner's rotation, wrapping
// around at the end.
func (g *Graph) CyclicSucc(a AdjID) AdjID {
	rot := g.nodes[g.adjs[a].node].rot
	i := g.rotIndex(a)
	return rot[(i+1)%len(rot)]
}

// CyclicPred returns the entry before a in its owner's rotation, wrapping
// around at the start.
func (g *Graph) CyclicPred(a AdjID) AdjID {
	rot := g.nodes[g.adjs[a].node].rot
	i := g.rotIndex(a)
	return rot[(i+len(rot)-1)%len(rot)]
}

// AdjNode returns the node whose rotation contains a.
func (g *Graph) AdjNode(a AdjID) NodeID { return g.adjs[a].node }

// AdjEdge returns the edge a belongs to.
func (g *Graph) AdjEdge(a AdjID) EdgeID { return g.adjs[a].edge }

// Twin returns the adjacency entry on the other endpoint of a's edge.
func (g *Graph) Twin(a AdjID) AdjID {
	rec := g.edges[g.adjs[a].edge]
	if rec.adjSource == a {
		return rec.adjTarget
	}
	return rec.adjSource
}

// TwinNode returns the node on the other endpoint of a's edge.
func (g *Graph) TwinNode(a AdjID) NodeID { return g.adjs[g.Twin(a)].node }

// IsSource reports whether a sits on the source end of its edge.
func (g *Graph) IsSource(a AdjID) bool { return g.edges[g.adjs[a].edge].adjSource == a }

// Source returns e's source node.
func (g *Graph) Source(e EdgeID) NodeID { return g.edges[e].source }

// Target returns e's target node.
func (g *Graph) Target(e EdgeID) NodeID { return g.edges[e].target }

// SourceAdj returns e's adjacency entry at its source node.
func (g *Graph) SourceAdj(e EdgeID) AdjID { return g.edges[e].adjSource }

// TargetAdj returns e's adjacency entry at its target node.
func (g *Graph) TargetAdj(e EdgeID) AdjID { return g.edges[e].adjTarget }

// EdgeAdj returns e's adjacency entry at node n. Panics if e is not
// incident to n.
func (g *Graph) EdgeAdj(e EdgeID, n NodeID) AdjID {
	rec := g.edges[e]
	switch n {
	case rec.source:
		return rec.adjSource
	case rec.target:
		return rec.adjTarget
	}
	panic(fmt.Sprintf("graph: edge %d not incident to node %d", e, n))
}

// ReverseEdge swaps e's direction. Both rotations are unaffected; only the
// source/target labeling changes.
func (g *Graph) ReverseEdge(e EdgeID) {
	rec := &g.edges[e]
	rec.source, rec.target = rec.target, rec.source
	rec.adjSource, rec.adjTarget = rec.adjTarget, rec.adjSource
}

// ReverseAdjEdges reverses n's rotation, flipping its cyclic orientation.
func (g *Graph) ReverseAdjEdges(n NodeID) {
	rot := g.nodes[n].rot
	for i, j := 0, len(rot)-1; i < j; i, j = i+1, j-1 {
		rot[i], rot[j] = rot[j], rot[i]
	}
}

// SortAdj replaces n's rotation with order, which must be a permutation of
// the current rotation. This is how an external embedder installs a
// computed cyclic order.
func (g *Graph) SortAdj(n NodeID, order []AdjID) {
	rot := g.nodes[n].rot
	if len(order) != len(rot) {
		panic(fmt.Sprintf("graph: order has %d entries, node %d has %d", len(order), n, len(rot)))
	}
	seen := make(map[AdjID]struct{}, len(order))
	for _, a := range order {
		if g.adjs[a].node != n {
			panic(fmt.Sprintf("graph: adjacency %d does not belong to node %d", a, n))
		}
		if _, dup := seen[a]; dup {
			panic(fmt.Sprintf("graph: duplicate adjacency %d in order", a))
		}
		seen[a] = struct{}{}
	}
	copy(rot, order)
}

// MoveSource relocates e's source end to n, appending the entry to n's
// rotation. The adjacency handle is preserved.
func (g *Graph) MoveSource(e EdgeID, n NodeID) {
	rec := &g.edges[e]
	g.removeFromRot(rec.adjSource)
	rec.source = n
	g.adjs[rec.adjSource].node = n
	g.nodes[n].rot = append(g.nodes[n].rot, rec.adjSource)
}

// MoveTarget relocates e's target end to n, appending the entry to n's
// rotation. The adjacency handle is preserved.
func (g *Graph) MoveTarget(e EdgeID, n NodeID) {
	rec := &g.edges[e]
	g.removeFromRot(rec.adjTarget)
	rec.target = n
	g.adjs[rec.adjTarget].node = n
	g.nodes[n].rot = append(g.nodes[n].rot, rec.adjTarget)
}

// MoveAdjAfter repositions moved directly after anchor within their shared
// owner's rotation.
func (g *Graph) MoveAdjAfter(moved, anchor AdjID) {
	if g.adjs[moved].node != g.adjs[anchor].node {
		panic("graph: MoveAdjAfter requires entries of the same node")
	}
	g.removeFromRot(moved)
	g.insertAfter(moved, anchor)
}

// MoveEndAfter relocates the endpoint opposite keep to anchor's node,
// inserting the moved entry directly after anchor in that node's rotation.
// The edge of keep keeps its handle and direction.
func (g *Graph) MoveEndAfter(keep, anchor AdjID) {
	e := g.adjs[keep].edge
	moved := g.Twin(keep)
	dst := g.adjs[anchor].node
	g.removeFromRot(moved)
	g.adjs[moved].node = dst
	rec := &g.edges[e]
	if rec.adjSource == moved {
		rec.source = dst
	} else {
		rec.target = dst
	}
	g.insertAfter(moved, anchor)
}

func (g *Graph) removeFromRot(a AdjID) {
	n := g.adjs[a].node
	rot := g.nodes[n].rot
	i := g.rotIndex(a)
	g.nodes[n].rot = append(rot[:i], rot[i+1:]...)
}

func (g *Graph) insertAfter(a, anchor AdjID) {
	n := g.adjs[anchor].node
	rot := g.nodes[n].rot
	i := g.rotIndex(anchor)
	rot = append(rot, NilAdj)
	copy(rot[i+2:], rot[i+1:])
	rot[i+1] = a
	g.nodes[n].rot = rot
}

func (g *Graph) rotIndex(a AdjID) int {
	rot := g.nodes[g.adjs[a].node].rot
	for i, x := range rot {
		if x == a {
			return i
		}
	}
	panic(fmt.Sprintf("graph: adjacency %d missing from its rotation", a))
}

// Validate checks arena integrity: every live adjacency entry references a
// live node and edge, and every rotation matches the edge table. Returns
// nil if the graph is consistent.
func (g *Graph) Validate() error {
	for i := range g.adjs {
		a := &g.adjs[i]
		if a.dead {
			continue
		}
		if !g.HasNode(a.node) {
			return fmt.Errorf("adjacency %d: %w", i, ErrDeadNode)
		}
		if !g.HasEdge(a.edge) {
			return fmt.Errorf("adjacency %d: %w", i, ErrDeadEdge)
		}
	}
	for i := range g.nodes {
		if g.nodes[i].dead {
			continue
		}
		for _, a := range g.nodes[i].rot {
			if g.adjs[a].node != NodeID(i) {
				return fmt.Errorf("node %d: %w", i, ErrRotationMismatch)
			}
			rec := g.edges[g.adjs[a].edge]
			if rec.adjSource != a && rec.adjTarget != a {
				return fmt.Errorf("node %d: %w", i, ErrRotationMismatch)
			}
		}
	}
	for i := range g.edges {
		rec := &g.edges[i]
		if rec.dead {
			continue
		}
		if !g.HasNode(rec.source) || !g.HasNode(rec.target) {
			return fmt.Errorf("edge %d: %w", i, ErrDeadNode)
		}
		if g.adjs[rec.adjSource].node != rec.source || g.adjs[rec.adjTarget].node != rec.target {
			return fmt.Errorf("edge %d: %w", i, ErrRotationMismatch)
		}
	}
	return nil
}
