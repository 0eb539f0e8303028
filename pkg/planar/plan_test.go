package planar

import (
	"testing"

	"github.com/planvia/clusterplan/pkg/cluster"
	"github.com/planvia/clusterplan/pkg/graph"
)

// chainInstance is the smallest instance with a real boundary: a path
// a-b-c inside one cluster plus an outside node d reached from a.
type chainInstance struct {
	g          *graph.Graph
	tree       *cluster.Tree
	cl         *cluster.Cluster
	a, b, c, d graph.NodeID
	ab, bc, ad graph.EdgeID
}

func buildChain() *chainInstance {
	g := graph.New()
	in := &chainInstance{g: g}
	in.a = g.NewNode()
	in.b = g.NewNode()
	in.c = g.NewNode()
	in.d = g.NewNode()
	in.ab = g.NewEdge(in.a, in.b)
	in.bc = g.NewEdge(in.b, in.c)
	in.ad = g.NewEdge(in.a, in.d)
	in.tree = cluster.NewTree(g)
	in.cl = in.tree.NewCluster(in.tree.Root())
	for _, n := range []graph.NodeID{in.a, in.b, in.c} {
		in.tree.ReassignNode(n, in.cl)
	}
	return in
}

// snapshotRotations captures every live node's rotation so a round trip
// can be checked against it entry for entry.
func snapshotRotations(g *graph.Graph) map[graph.NodeID][]graph.AdjID {
	out := make(map[graph.NodeID][]graph.AdjID)
	for _, n := range g.Nodes() {
		out[n] = g.Adjacencies(n)
	}
	return out
}

func runToSolved(t *testing.T, p *Plan) {
	t.Helper()
	if !p.MakeReduced() {
		t.Fatalf("MakeReduced() = false, want true")
	}
	if !p.SolveReduced() {
		t.Fatalf("SolveReduced() = false, want true")
	}
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s did not panic", name)
		}
	}()
	fn()
}

func TestNew_FlattensChainIntoOnePipe(t *testing.T) {
	in := buildChain()
	p := New(in.tree)

	if p.State() != StateConstructed {
		t.Fatalf("State() = %v, want %v", p.State(), StateConstructed)
	}
	if got := p.Matchings.Count(); got != 1 {
		t.Fatalf("Matchings.Count() = %d, want 1", got)
	}
	if got := in.g.NumNodes(); got != 6 {
		t.Errorf("NumNodes() = %d, want 6", got)
	}

	// Every member now answers to the root.
	for _, n := range []graph.NodeID{in.a, in.b, in.c, in.d} {
		if c := in.tree.ClusterOf(n); !c.IsRoot() {
			t.Errorf("ClusterOf(%d) = cluster %d, want root", n, c.Index())
		}
	}

	pipe := p.Matchings.Pipes()[0]
	if got := pipe.Degree(in.g); got != 1 {
		t.Errorf("pipe degree = %d, want 1", got)
	}
	if tw := p.Matchings.Twin(pipe.U); tw != pipe.V {
		t.Errorf("Twin(%d) = %d, want %d", pipe.U, tw, pipe.V)
	}

	// The pipe nodes are paired in the registry, never by an edge.
	for _, adj := range in.g.Adjacencies(pipe.U) {
		if in.g.TwinNode(adj) == pipe.V {
			t.Errorf("pipe nodes %d, %d share an edge", pipe.U, pipe.V)
		}
	}

	// The boundary edge keeps its handle but now ends at a pipe node,
	// and a no longer reaches d directly.
	if !in.g.HasEdge(in.ad) {
		t.Fatal("boundary edge handle vanished during flattening")
	}
	if s, tg := in.g.Source(in.ad), in.g.Target(in.ad); s != pipe.V && tg != pipe.V && s != pipe.U && tg != pipe.U {
		t.Errorf("boundary edge runs %d -> %d, want one end on the pipe", s, tg)
	}
	for _, adj := range in.g.Adjacencies(in.a) {
		if in.g.TwinNode(adj) == in.d {
			t.Error("a still reaches d directly after flattening")
		}
	}
	if err := in.g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestRoundTrip_ChainRestoresEverything(t *testing.T) {
	in := buildChain()
	rots := snapshotRotations(in.g)

	p := New(in.tree)
	runToSolved(t, p)
	if err := p.Embed(); err != nil {
		t.Fatalf("Embed() = %v, want nil", err)
	}

	if p.State() != StateEmbedded {
		t.Errorf("State() = %v, want %v", p.State(), StateEmbedded)
	}
	if got := p.UndoLogState(); got != LogDrained {
		t.Errorf("UndoLogState() = %v, want %v", got, LogDrained)
	}
	if got := p.Matchings.Count(); got != 0 {
		t.Errorf("Matchings.Count() = %d, want 0", got)
	}
	if got := in.g.NumNodes(); got != 4 {
		t.Errorf("NumNodes() = %d, want 4", got)
	}
	if got := in.g.NumEdges(); got != 3 {
		t.Errorf("NumEdges() = %d, want 3", got)
	}

	// a-d is a direct edge again, under its original handle and direction.
	if !in.g.HasEdge(in.ad) {
		t.Fatal("edge a-d not restored")
	}
	if s, tg := in.g.Source(in.ad), in.g.Target(in.ad); s != in.a || tg != in.d {
		t.Errorf("restored edge runs %d -> %d, want %d -> %d", s, tg, in.a, in.d)
	}

	// Membership is back.
	for _, n := range []graph.NodeID{in.a, in.b, in.c} {
		if c := in.tree.ClusterOf(n); c != in.cl {
			t.Errorf("ClusterOf(%d) = cluster %d, want %d", n, c.Index(), in.cl.Index())
		}
	}
	if c := in.tree.ClusterOf(in.d); !c.IsRoot() {
		t.Errorf("ClusterOf(d) = cluster %d, want root", c.Index())
	}

	// Rotations match the originals entry for entry.
	for n, rot := range rots {
		if got := in.g.CompareCyclicOrder(n, rot); got != graph.OrderSame {
			t.Errorf("CompareCyclicOrder(%d) = %v, want %v", n, got, graph.OrderSame)
		}
	}

	// The cluster's boundary list holds the inside entry of a-d.
	if len(in.cl.AdjEntries) != 1 {
		t.Fatalf("len(AdjEntries) = %d, want 1", len(in.cl.AdjEntries))
	}
	entry := in.cl.AdjEntries[0]
	if in.g.AdjNode(entry) != in.a || in.g.AdjEdge(entry) != in.ad {
		t.Errorf("boundary entry = node %d edge %d, want node %d edge %d",
			in.g.AdjNode(entry), in.g.AdjEdge(entry), in.a, in.ad)
	}
}

func TestPipeCountMatchesNonRootClusters(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	d := g.NewNode()
	g.NewEdge(a, b)
	g.NewEdge(b, c)
	g.NewEdge(c, d)

	tree := cluster.NewTree(g)
	outer := tree.NewCluster(tree.Root())
	inner := tree.NewCluster(outer)
	tree.ReassignNode(c, outer)
	tree.ReassignNode(a, inner)
	tree.ReassignNode(b, inner)

	p := New(tree)

	if got := p.Matchings.Count(); got != 2 {
		t.Errorf("Matchings.Count() = %d, want 2", got)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestRoundTrip_NestedClusters(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	b := g.NewNode()
	c := g.NewNode()
	d := g.NewNode()
	ab := g.NewEdge(a, b)
	bc := g.NewEdge(b, c)
	cd := g.NewEdge(c, d)

	tree := cluster.NewTree(g)
	outer := tree.NewCluster(tree.Root())
	inner := tree.NewCluster(outer)
	tree.ReassignNode(c, outer)
	tree.ReassignNode(a, inner)
	tree.ReassignNode(b, inner)
	rots := snapshotRotations(g)

	p := New(tree)
	runToSolved(t, p)
	if err := p.Embed(); err != nil {
		t.Fatalf("Embed() = %v, want nil", err)
	}

	if got := g.NumNodes(); got != 4 {
		t.Errorf("NumNodes() = %d, want 4", got)
	}
	for _, e := range []graph.EdgeID{ab, bc, cd} {
		if !g.HasEdge(e) {
			t.Errorf("edge %d not restored", e)
		}
	}
	if s, tg := g.Source(bc), g.Target(bc); s != b || tg != c {
		t.Errorf("restored edge runs %d -> %d, want %d -> %d", s, tg, b, c)
	}
	for n, rot := range rots {
		if got := g.CompareCyclicOrder(n, rot); got != graph.OrderSame {
			t.Errorf("CompareCyclicOrder(%d) = %v, want %v", n, got, graph.OrderSame)
		}
	}
	if got := tree.ClusterOf(a); got != inner {
		t.Errorf("ClusterOf(a) = cluster %d, want %d", got.Index(), inner.Index())
	}
	if got := tree.ClusterOf(c); got != outer {
		t.Errorf("ClusterOf(c) = cluster %d, want %d", got.Index(), outer.Index())
	}
}

func TestPrunePipes_EmptyBoundaryCluster(t *testing.T) {
	g := graph.New()
	x := g.NewNode()
	y := g.NewNode()
	xy := g.NewEdge(x, y)

	tree := cluster.NewTree(g)
	cl := tree.NewCluster(tree.Root())
	tree.ReassignNode(x, cl)
	tree.ReassignNode(y, cl)

	p := New(tree)
	pipe := p.Matchings.Pipes()[0]
	if got := pipe.Degree(g); got != 0 {
		t.Fatalf("pipe degree = %d, want 0", got)
	}
	if got := len(p.Matchings.IncidentEdgeBijection(pipe.U)); got != 0 {
		t.Fatalf("bijection size = %d, want 0", got)
	}

	if got := p.PrunePipes(); got != 1 {
		t.Fatalf("PrunePipes() = %d, want 1", got)
	}
	if got := p.Matchings.Count(); got != 0 {
		t.Errorf("Matchings.Count() = %d, want 0", got)
	}
	if got := g.NumNodes(); got != 2 {
		t.Errorf("NumNodes() = %d, want 2", got)
	}

	runToSolved(t, p)
	if err := p.Embed(); err != nil {
		t.Fatalf("Embed() = %v, want nil", err)
	}
	if got := tree.ClusterOf(x); got != cl {
		t.Errorf("ClusterOf(x) = cluster %d, want %d", got.Index(), cl.Index())
	}
	if got := tree.ClusterOf(y); got != cl {
		t.Errorf("ClusterOf(y) = cluster %d, want %d", got.Index(), cl.Index())
	}
	if !g.HasEdge(xy) || g.Source(xy) != x || g.Target(xy) != y {
		t.Error("internal edge x-y disturbed by prune round trip")
	}
	if got := g.NumNodes(); got != 2 {
		t.Errorf("NumNodes() after embed = %d, want 2", got)
	}
}

func TestEmbed_AugmentationMarksComponentChanges(t *testing.T) {
	g := graph.New()
	a := g.NewNode()
	x := g.NewNode()
	y := g.NewNode()
	ax := g.NewEdge(a, x)
	ay := g.NewEdge(a, y)

	tree := cluster.NewTree(g)
	cl := tree.NewCluster(tree.Root())
	tree.ReassignNode(a, cl)

	var aug []AdjPair
	p := New(tree, WithAugmentation(&aug))
	runToSolved(t, p)
	if err := p.Embed(); err != nil {
		t.Fatalf("Embed() = %v, want nil", err)
	}

	// The two boundary edges are bridges in separate biconnected
	// components, so walking the boundary crosses exactly once.
	if len(aug) != 1 {
		t.Fatalf("len(aug) = %d, want 1", len(aug))
	}
	pair := aug[0]
	if g.AdjNode(pair.First) != a || g.AdjNode(pair.Second) != a {
		t.Errorf("augmentation pair at nodes %d, %d, want both at %d",
			g.AdjNode(pair.First), g.AdjNode(pair.Second), a)
	}
	e1, e2 := g.AdjEdge(pair.First), g.AdjEdge(pair.Second)
	if e1 == e2 {
		t.Errorf("augmentation pair on a single edge %d", e1)
	}
	for _, e := range []graph.EdgeID{e1, e2} {
		if e != ax && e != ay {
			t.Errorf("augmentation pair references edge %d, want %d or %d", e, ax, ay)
		}
	}
}

func TestSolveReduced_FailureSpendsPlan(t *testing.T) {
	in := buildChain()
	p := New(in.tree, WithSolver(rejectingSolver{}))

	if !p.MakeReduced() {
		t.Fatalf("MakeReduced() = false, want true")
	}
	if p.SolveReduced() {
		t.Fatal("SolveReduced() = true, want false")
	}
	if p.State() != StateFailed {
		t.Errorf("State() = %v, want %v", p.State(), StateFailed)
	}
	if got := p.UndoLogState(); got != LogDrained {
		t.Errorf("UndoLogState() = %v, want %v", got, LogDrained)
	}
	mustPanic(t, "Embed after failure", func() { _ = p.Embed() })
}

func TestPlan_StepOrderEnforced(t *testing.T) {
	p := New(buildChain().tree)
	mustPanic(t, "SolveReduced before MakeReduced", func() { p.SolveReduced() })
	mustPanic(t, "Embed before SolveReduced", func() { _ = p.Embed() })

	if !p.MakeReduced() {
		t.Fatalf("MakeReduced() = false, want true")
	}
	mustPanic(t, "PrunePipes after MakeReduced", func() { p.PrunePipes() })
	mustPanic(t, "MakeReduced twice", func() { p.MakeReduced() })
}

// rejectingSolver accepts the reduction pass and rejects the instance.
type rejectingSolver struct{}

func (rejectingSolver) MakeReduced(*Plan) bool  { return true }
func (rejectingSolver) SolveReduced(*Plan) bool { return false }
