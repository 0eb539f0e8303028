package planar

import (
	"testing"

	"github.com/planvia/clusterplan/pkg/graph"
)

func TestComputeComponents(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	d := g.NewNode()
	g.NewEdge(a, b)
	g.NewEdge(c, d)

	comps := ComputeComponents(g)

	if comps.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", comps.Count())
	}
	if !comps.SameComponent(a, b) {
		t.Error("SameComponent(a, b) = false, want true")
	}
	if comps.SameComponent(a, c) {
		t.Error("SameComponent(a, c) = true, want false")
	}
}

func TestBiconnectedComponents_TriangleWithPendant(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	d := g.NewNode()
	ab := g.NewEdge(a, b)
	bc := g.NewEdge(b, c)
	ca := g.NewEdge(c, a)
	cd := g.NewEdge(c, d) // bridge

	comp, count := BiconnectedComponents(g)

	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if comp[ab] != comp[bc] || comp[bc] != comp[ca] {
		t.Errorf("triangle edges in components %d, %d, %d, want equal", comp[ab], comp[bc], comp[ca])
	}
	if comp[cd] == comp[ab] {
		t.Errorf("bridge shares component %d with triangle", comp[cd])
	}
}

func TestBiconnectedComponents_ParallelEdges(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	e1 := g.NewEdge(a, b)
	e2 := g.NewEdge(a, b)

	comp, count := BiconnectedComponents(g)

	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if comp[e1] != comp[e2] {
		t.Errorf("parallel edges in components %d, %d, want equal", comp[e1], comp[e2])
	}
}
