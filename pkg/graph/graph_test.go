package graph

import "testing"

func TestNewEdge_AppendsToRotations(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	x := g.NewNode()
	e0 := g.NewEdge(a, b)
	e1 := g.NewEdge(a, x)

	if got := g.Degree(a); got != 2 {
		t.Errorf("Degree(a) = %d, want 2", got)
	}
	rot := g.Adjacencies(a)
	if g.AdjEdge(rot[0]) != e0 || g.AdjEdge(rot[1]) != e1 {
		t.Errorf("rotation of a = %v, want [e0 e1]", rot)
	}
	if g.Source(e0) != a || g.Target(e0) != b {
		t.Errorf("e0 = %d->%d, want %d->%d", g.Source(e0), g.Target(e0), a, b)
	}
	if g.TwinNode(rot[0]) != b {
		t.Errorf("TwinNode(e0 at a) = %d, want %d", g.TwinNode(rot[0]), b)
	}
}

func TestDelEdge_RemovesRotationEntries(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	e0 := g.NewEdge(a, b)
	e1 := g.NewEdge(a, b)

	g.DelEdge(e0)

	if g.NumEdges() != 1 {
		t.Fatalf("NumEdges() = %d, want 1", g.NumEdges())
	}
	if g.HasEdge(e0) {
		t.Error("HasEdge(e0) = true after DelEdge")
	}
	if got := g.Degree(a); got != 1 {
		t.Errorf("Degree(a) = %d, want 1", got)
	}
	if g.AdjEdge(g.FirstAdj(a)) != e1 {
		t.Errorf("remaining edge at a = %d, want %d", g.AdjEdge(g.FirstAdj(a)), e1)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestDelNode_RemovesIncidentEdges(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	g.NewEdge(a, b)
	g.NewEdge(b, c)

	g.DelNode(b)

	if g.NumEdges() != 0 {
		t.Errorf("NumEdges() = %d, want 0", g.NumEdges())
	}
	if g.Degree(a) != 0 || g.Degree(c) != 0 {
		t.Errorf("Degree(a), Degree(c) = %d, %d, want 0, 0", g.Degree(a), g.Degree(c))
	}
}

func TestNewNodeWithID_RevivesSlot(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	g.DelNode(a)

	got := g.NewNodeWithID(a)

	if got != a {
		t.Fatalf("NewNodeWithID(%d) = %d, want %d", a, got, a)
	}
	if !g.HasNode(a) || g.NumNodes() != 2 {
		t.Errorf("HasNode(a), NumNodes() = %v, %d, want true, 2", g.HasNode(a), g.NumNodes())
	}
	_ = b
}

func TestReverseEdge_KeepsRotations(t *testing.T) {
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	e := g.NewEdge(a, b)
	adjA := g.FirstAdj(a)

	g.ReverseEdge(e)

	if g.Source(e) != b || g.Target(e) != a {
		t.Errorf("reversed edge = %d->%d, want %d->%d", g.Source(e), g.Target(e), b, a)
	}
	if g.FirstAdj(a) != adjA {
		t.Errorf("rotation of a changed: FirstAdj = %d, want %d", g.FirstAdj(a), adjA)
	}
	if g.IsSource(adjA) {
		t.Error("IsSource(adj at a) = true after reverse, want false")
	}
}

func TestReverseAdjEdges(t *testing.T) {
	g := New()
	hub := g.NewNode()
	var spokes [3]NodeID
	for i := range spokes {
		spokes[i] = g.NewNode()
		g.NewEdge(hub, spokes[i])
	}

	before := g.Adjacencies(hub)
	g.ReverseAdjEdges(hub)
	after := g.Adjacencies(hub)

	for i := range before {
		if after[i] != before[len(before)-1-i] {
			t.Fatalf("rotation after reverse = %v, want reverse of %v", after, before)
		}
	}
}

func TestCyclicSuccPred_Wrap(t *testing.T) {
	g := New()
	hub := g.NewNode()
	for i := 0; i < 3; i++ {
		g.NewEdge(hub, g.NewNode())
	}
	rot := g.Adjacencies(hub)

	if got := g.CyclicSucc(rot[2]); got != rot[0] {
		t.Errorf("CyclicSucc(last) = %d, want %d", got, rot[0])
	}
	if got := g.CyclicPred(rot[0]); got != rot[2] {
		t.Errorf("CyclicPred(first) = %d, want %d", got, rot[2])
	}
}

func TestSortAdj_InstallsOrder(t *testing.T) {
	g := New()
	hub := g.NewNode()
	for i := 0; i < 3; i++ {
		g.NewEdge(hub, g.NewNode())
	}
	rot := g.Adjacencies(hub)
	order := []AdjID{rot[1], rot[2], rot[0]}

	g.SortAdj(hub, order)

	got := g.Adjacencies(hub)
	for i := range order {
		if got[i] != order[i] {
			t.Fatalf("Adjacencies() = %v, want %v", got, order)
		}
	}
}

func TestMoveEndAfter_TakesAnchorPosition(t *testing.T) {
	// b has rotation [ab, cb]; moving d->a's a-end after the cb entry must
	// produce rotation [ab, cb, da'] with the moved entry owned by b.
	g := New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	d := g.NewNode()
	g.NewEdge(a, b)
	cb := g.NewEdge(c, b)
	da := g.NewEdge(d, a)

	g.MoveEndAfter(g.SourceAdj(da), g.TargetAdj(cb))

	if g.Target(da) != b {
		t.Fatalf("Target(da) = %d, want %d", g.Target(da), b)
	}
	rot := g.Adjacencies(b)
	if len(rot) != 3 || g.AdjEdge(rot[2]) != da {
		t.Errorf("rotation of b = %v, want moved entry last", rot)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
