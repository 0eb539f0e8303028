package cluster

import (
	"testing"

	"github.com/planvia/clusterplan/pkg/graph"
)

func buildNested(t *testing.T) (*graph.Graph, *Tree, *Cluster, *Cluster) {
	t.Helper()
	g := graph.New()
	for i := 0; i < 4; i++ {
		g.NewNode()
	}
	tree := NewTree(g)
	outer := tree.NewCluster(tree.Root())
	inner := tree.NewCluster(outer)
	tree.ReassignNode(0, outer)
	tree.ReassignNode(1, inner)
	return g, tree, outer, inner
}

func TestNewTree_AssignsAllToRoot(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	tree := NewTree(g)

	if tree.ClusterOf(a) != tree.Root() || tree.ClusterOf(b) != tree.Root() {
		t.Error("ClusterOf(new node) != Root()")
	}
	if got := len(tree.Root().Nodes()); got != 2 {
		t.Errorf("len(Root().Nodes()) = %d, want 2", got)
	}
}

func TestReassignNode_MovesMembership(t *testing.T) {
	_, tree, outer, inner := buildNested(t)

	if tree.ClusterOf(1) != inner {
		t.Fatalf("ClusterOf(1) = cluster %d, want inner", tree.ClusterOf(1).Index())
	}
	tree.ReassignNode(1, outer)
	if tree.ClusterOf(1) != outer {
		t.Errorf("ClusterOf(1) = cluster %d after reassign, want outer", tree.ClusterOf(1).Index())
	}
	if len(inner.Nodes()) != 0 {
		t.Errorf("inner.Nodes() = %v, want empty", inner.Nodes())
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestPostOrder_ChildrenBeforeParents(t *testing.T) {
	_, tree, outer, inner := buildNested(t)

	order := tree.PostOrder()

	pos := make(map[int]int, len(order))
	for i, c := range order {
		pos[c.Index()] = i
	}
	if pos[inner.Index()] > pos[outer.Index()] {
		t.Error("inner cluster ordered after its parent")
	}
	if order[len(order)-1] != tree.Root() {
		t.Errorf("last cluster = %d, want root", order[len(order)-1].Index())
	}
}

func TestIsBoundaryEdge(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	g.NewEdge(a, b)
	g.NewEdge(a, c)
	tree := NewTree(g)
	inner := tree.NewCluster(tree.Root())
	tree.ReassignNode(a, inner)
	tree.ReassignNode(b, inner)

	adjs := g.Adjacencies(a)
	if tree.IsBoundaryEdge(inner, adjs[0]) {
		t.Error("edge a-b flagged as boundary, both ends inside")
	}
	if !tree.IsBoundaryEdge(inner, adjs[1]) {
		t.Error("edge a-c not flagged as boundary")
	}
}

func TestDeleteCluster(t *testing.T) {
	_, tree, outer, inner := buildNested(t)
	tree.ReassignNode(1, outer)

	tree.DeleteCluster(inner)

	if tree.ClusterByIndex(inner.Index()) != nil {
		t.Error("deleted cluster still resolvable by index")
	}
	if got := tree.NumClusters(); got != 2 {
		t.Errorf("NumClusters() = %d, want 2", got)
	}
}
