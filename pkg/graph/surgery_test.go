package graph

import "testing"

func TestSplitEdge_NewHalfKeepsCyclicPosition(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	x := g.NewNode()
	ab := g.NewEdge(a, b)
	g.NewEdge(x, b) // b rotation: [ab, xb]
	p := g.NewNode()
	c := g.NewNode()

	adjT := g.SplitEdge(g.SourceAdj(ab), p, c)

	if g.Target(ab) != p {
		t.Fatalf("Target(ab) = %d, want %d", g.Target(ab), p)
	}
	half := g.AdjEdge(adjT)
	if g.Source(half) != c || g.Target(half) != b {
		t.Errorf("new half = %d->%d, want %d->%d", g.Source(half), g.Target(half), c, b)
	}
	rot := g.Adjacencies(b)
	if g.AdjEdge(rot[0]) != half {
		t.Errorf("rotation of b = %v, new half must occupy the split edge's old slot", rot)
	}
	if g.Degree(p) != 1 || g.Degree(c) != 1 {
		t.Errorf("Degree(p), Degree(c) = %d, %d, want 1, 1", g.Degree(p), g.Degree(c))
	}
}

func TestSplitEdge_ReversedEntryKeepsDirections(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	ba := g.NewEdge(b, a)
	p := g.NewNode()
	c := g.NewNode()

	// Split from the target-side entry at a.
	adjT := g.SplitEdge(g.TargetAdj(ba), p, c)

	if g.Source(ba) != p || g.Target(ba) != a {
		t.Errorf("kept half = %d->%d, want %d->%d", g.Source(ba), g.Target(ba), p, a)
	}
	half := g.AdjEdge(adjT)
	if g.Source(half) != b || g.Target(half) != c {
		t.Errorf("new half = %d->%d, want %d->%d", g.Source(half), g.Target(half), b, c)
	}
}

func TestJoinEdge_InvertsSplit(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	x := g.NewNode()
	ab := g.NewEdge(a, b)
	g.NewEdge(a, x)
	g.NewEdge(x, b) // a rotation: [ab, ax]; b rotation: [ab, xb]
	rotA := g.Adjacencies(a)
	rotB := g.Adjacencies(b)
	p := g.NewNode()
	c := g.NewNode()

	g.SplitEdge(g.SourceAdj(ab), p, c)
	g.JoinEdge(g.FirstAdj(p), g.FirstAdj(c))

	if g.Source(ab) != a || g.Target(ab) != b {
		t.Fatalf("rejoined edge = %d->%d, want %d->%d", g.Source(ab), g.Target(ab), a, b)
	}
	if g.Degree(p) != 0 || g.Degree(c) != 0 {
		t.Errorf("Degree(p), Degree(c) = %d, %d, want 0, 0", g.Degree(p), g.Degree(c))
	}
	if g.CompareCyclicOrder(a, rotA) != OrderSame {
		t.Errorf("rotation of a = %v, want %v", g.Adjacencies(a), rotA)
	}
	if g.CompareCyclicOrder(b, rotB) != OrderSame {
		t.Errorf("rotation of b = %v, want %v", g.Adjacencies(b), rotB)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestCompareCyclicOrder(t *testing.T) {
	g := New()
	hub := g.NewNode()
	for i := 0; i < 4; i++ {
		g.NewEdge(hub, g.NewNode())
	}
	rot := g.Adjacencies(hub)

	rotated := []AdjID{rot[2], rot[3], rot[0], rot[1]}
	if got := g.CompareCyclicOrder(hub, rotated); got != OrderSame {
		t.Errorf("CompareCyclicOrder(rotated) = %v, want same", got)
	}

	reversed := []AdjID{rot[1], rot[0], rot[3], rot[2]}
	if got := g.CompareCyclicOrder(hub, reversed); got != OrderReversed {
		t.Errorf("CompareCyclicOrder(reversed) = %v, want reversed", got)
	}

	different := []AdjID{rot[0], rot[2], rot[1], rot[3]}
	if got := g.CompareCyclicOrder(hub, different); got != OrderDifferent {
		t.Errorf("CompareCyclicOrder(different) = %v, want different", got)
	}
}

func TestMoveAdjToFrontAndBack(t *testing.T) {
	g := New()
	hub := g.NewNode()
	for i := 0; i < 3; i++ {
		g.NewEdge(hub, g.NewNode())
	}
	rot := g.Adjacencies(hub)

	g.MoveAdjToFront(rot[1])
	if got := g.Adjacencies(hub); got[0] != rot[1] || got[1] != rot[2] || got[2] != rot[0] {
		t.Errorf("after MoveAdjToFront: %v, want [%d %d %d]", got, rot[1], rot[2], rot[0])
	}
	if g.CompareCyclicOrder(hub, rot) != OrderSame {
		t.Error("MoveAdjToFront changed the cyclic order")
	}

	g.MoveAdjToBack(rot[1])
	if got := g.Adjacencies(hub); got[2] != rot[1] {
		t.Errorf("after MoveAdjToBack: %v, want %d last", got, rot[1])
	}
	if g.CompareCyclicOrder(hub, rot) != OrderSame {
		t.Error("MoveAdjToBack changed the cyclic order")
	}
}
