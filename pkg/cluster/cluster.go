package cluster

import (
	"errors"
	"fmt"
	"slices"

	"github.com/planvia/clusterplan/pkg/graph"
)

var (
	// ErrForeignNode is returned by [Tree.Validate] when a cluster holds a
	// node handle the underlying graph does not know.
	ErrForeignNode = errors.New("cluster holds unknown node")

	// ErrMembershipMismatch is returned by [Tree.Validate] when a node's
	// recorded cluster and the cluster's member list disagree.
	ErrMembershipMismatch = errors.New("cluster membership out of sync")
)

// Cluster is one vertex subset in the nested partition. Clusters form a
// tree rooted at [Tree.Root]; every graph node belongs to exactly one
// cluster (its innermost).
type Cluster struct {
	index    int
	parent   *Cluster
	children []*Cluster
	nodes    []graph.NodeID

	// AdjEntries is the cluster's boundary in cyclic order: the adjacency
	// entries of boundary-crossing edges at their inside endpoints. It is
	// empty until an embedding pass fills it.
	AdjEntries []graph.AdjID
}

// Index returns the cluster's stable identifier within its tree.
func (c *Cluster) Index() int { return c.index }

// Parent returns the enclosing cluster, or nil for the root.
func (c *Cluster) Parent() *Cluster { return c.parent }

// Children returns the directly nested clusters. The returned slice is the
// tree's own; treat it as read-only.
func (c *Cluster) Children() []*Cluster { return c.children }

// Nodes returns the cluster's direct member nodes in assignment order.
// The returned slice is the tree's own; treat it as read-only.
func (c *Cluster) Nodes() []graph.NodeID { return c.nodes }

// IsRoot reports whether c is its tree's root cluster.
func (c *Cluster) IsRoot() bool { return c.parent == nil }

// Tree is a rooted hierarchy of clusters over the nodes of one graph.
// New nodes added to the graph after construction must be placed with
// [Tree.ReassignNode] before they are considered members of any cluster;
// until then they implicitly belong to the root.
//
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	graphRef  *graph.Graph
	root      *Cluster
	clusters  []*Cluster // by index; nil entries for deleted clusters
	clusterOf []*Cluster // by NodeID
}

// NewTree creates a cluster tree over g with all current nodes assigned to
// the fresh root cluster.
func NewTree(g *graph.Graph) *Tree {
	t := &Tree{graphRef: g}
	t.root = t.newCluster(nil)
	for _, n := range g.Nodes() {
		t.assign(n, t.root)
	}
	return t
}

// Graph returns the graph this tree partitions.
func (t *Tree) Graph() *graph.Graph { return t.graphRef }

// Root returns the root cluster owning every node not claimed by a
// descendant.
func (t *Tree) Root() *Cluster { return t.root }

// NumClusters returns the number of clusters including the root.
func (t *Tree) NumClusters() int {
	n := 0
	for _, c := range t.clusters {
		if c != nil {
			n++
		}
	}
	return n
}

// ClusterByIndex returns the cluster with the given index, or nil.
func (t *Tree) ClusterByIndex(idx int) *Cluster {
	if idx < 0 || idx >= len(t.clusters) {
		return nil
	}
	return t.clusters[idx]
}

// NewCluster creates an empty cluster nested directly under parent.
func (t *Tree) NewCluster(parent *Cluster) *Cluster {
	if parent == nil {
		panic("cluster: NewCluster requires a parent; the root already exists")
	}
	return t.newCluster(parent)
}

func (t *Tree) newCluster(parent *Cluster) *Cluster {
	c := &Cluster{index: len(t.clusters), parent: parent}
	t.clusters = append(t.clusters, c)
	if parent != nil {
		parent.children = append(parent.children, c)
	}
	return c
}

// DeleteCluster removes an empty, childless, non-root cluster.
func (t *Tree) DeleteCluster(c *Cluster) {
	if c.IsRoot() || len(c.nodes) > 0 || len(c.children) > 0 {
		panic("cluster: DeleteCluster requires an empty non-root cluster")
	}
	c.parent.children = slices.DeleteFunc(c.parent.children, func(x *Cluster) bool { return x == c })
	t.clusters[c.index] = nil
}

// ClusterOf returns the innermost cluster containing n. Nodes never
// assigned explicitly belong to the root.
func (t *Tree) ClusterOf(n graph.NodeID) *Cluster {
	if int(n) < len(t.clusterOf) && t.clusterOf[n] != nil {
		return t.clusterOf[n]
	}
	return t.root
}

// ReassignNode moves n into cluster c, removing it from its current
// cluster's member list.
func (t *Tree) ReassignNode(n graph.NodeID, c *Cluster) {
	old := t.ClusterOf(n)
	if old == c {
		return
	}
	old.nodes = slices.DeleteFunc(old.nodes, func(x graph.NodeID) bool { return x == n })
	t.assign(n, c)
}

func (t *Tree) assign(n graph.NodeID, c *Cluster) {
	for int(n) >= len(t.clusterOf) {
		t.clusterOf = append(t.clusterOf, nil)
	}
	t.clusterOf[n] = c
	c.nodes = append(c.nodes, n)
}

// RemoveNode forgets n entirely, dropping it from its cluster's member
// list. Used when n is deleted from the graph; a later NewNodeWithID
// revival starts out implicitly in the root again.
func (t *Tree) RemoveNode(n graph.NodeID) {
	c := t.ClusterOf(n)
	c.nodes = slices.DeleteFunc(c.nodes, func(x graph.NodeID) bool { return x == n })
	if int(n) < len(t.clusterOf) {
		t.clusterOf[n] = nil
	}
}

// PostOrder returns all clusters children-before-parents, ending with the
// root. The flattening protocol consumes exactly this order.
func (t *Tree) PostOrder() []*Cluster {
	out := make([]*Cluster, 0, len(t.clusters))
	var walk func(c *Cluster)
	walk = func(c *Cluster) {
		for _, ch := range c.children {
			walk(ch)
		}
		out = append(out, c)
	}
	walk(t.root)
	return out
}

// IsBoundaryEdge reports whether the edge of adj crosses c's boundary,
// i.e. adj's node lies in c but the twin's innermost cluster differs.
func (t *Tree) IsBoundaryEdge(c *Cluster, adj graph.AdjID) bool {
	return t.ClusterOf(t.graphRef.TwinNode(adj)) != c
}

// Validate checks tree integrity: every member node is live in the graph
// and membership lists agree with the per-node index. Returns nil if
// consistent.
func (t *Tree) Validate() error {
	for _, c := range t.clusters {
		if c == nil {
			continue
		}
		for _, n := range c.nodes {
			if !t.graphRef.HasNode(n) {
				return fmt.Errorf("cluster %d node %d: %w", c.index, n, ErrForeignNode)
			}
			if t.ClusterOf(n) != c {
				return fmt.Errorf("cluster %d node %d: %w", c.index, n, ErrMembershipMismatch)
			}
		}
	}
	for n, c := range t.clusterOf {
		if c == nil || !t.graphRef.HasNode(graph.NodeID(n)) {
			continue
		}
		if !slices.Contains(c.nodes, graph.NodeID(n)) {
			return fmt.Errorf("node %d: %w", n, ErrMembershipMismatch)
		}
	}
	return nil
}
