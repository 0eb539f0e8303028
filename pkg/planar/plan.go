package planar

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/planvia/clusterplan/pkg/cluster"
	"github.com/planvia/clusterplan/pkg/graph"
)

// State tracks a Plan through its lifecycle. Transitions only move
// forward: Constructed -> Reduced -> Solved -> Embedded, with Failed
// reachable from the two solver transitions.
type State int

const (
	// StateConstructed means flattening is complete and the undo log is
	// recording; the instance is ready for the solver.
	StateConstructed State = iota
	// StateReduced means MakeReduced succeeded.
	StateReduced
	// StateSolved means SolveReduced accepted the instance.
	StateSolved
	// StateEmbedded means the undo log has been replayed and the original
	// clustered embedding restored.
	StateEmbedded
	// StateFailed means the solver reported the instance not
	// cluster-planar; the undo log is discarded and the Plan is spent.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateReduced:
		return "reduced"
	case StateSolved:
		return "solved"
	case StateEmbedded:
		return "embedded"
	default:
		return "failed"
	}
}

// AdjPair is one augmentation hint: two boundary adjacency entries between
// which an extra edge would realize biconnectivity across a cluster
// boundary.
type AdjPair struct {
	First, Second graph.AdjID
}

// Option configures a Plan at construction.
type Option func(*Plan)

// WithLogger attaches a logger; flattening and replay steps are traced at
// debug level. The default logger discards everything.
func WithLogger(l *log.Logger) Option {
	return func(p *Plan) { p.logger = l }
}

// WithSolver injects the reduction/solve procedure. The default is
// [TrivialSolver].
func WithSolver(s Solver) Option {
	return func(p *Plan) { p.solver = s }
}

// WithAugmentation requests an augmentation trace: dst is cleared at
// construction and filled during Embed with boundary-crossing pairs,
// grouped by biconnected component of the solved flattened graph. The
// order within the trace is not canonical beyond that grouping.
func WithAugmentation(dst *[]AdjPair) Option {
	return func(p *Plan) { p.augmentation = dst }
}

// Plan drives one cluster-planarity run: it flattens the cluster hierarchy
// into pipes over the plain graph, hands the reduced instance to the
// solver, and on success replays the undo log to reconstruct the clustered
// embedding.
//
// A Plan owns all mutation of its graph, tree, registry, and log; it is
// strictly single-threaded and must be driven in order. Once the solver
// fails or any step panics on a precondition, the instance is spent and
// must be abandoned, never resumed.
type Plan struct {
	G         *graph.Graph
	T         *cluster.Tree
	Matchings *Matching

	logger       *log.Logger
	solver       Solver
	state        State
	undo         undoLog
	augmentation *[]AdjPair
	components   *Components
}

// New flattens the cluster hierarchy of tree over its graph and returns a
// Plan in state Constructed. Every non-root cluster, in post-order, is
// replaced by a pipe: its boundary-crossing edges are rerouted through a
// fresh matched node pair and its members handed to the root. The single
// recorded undo operation can replay the whole pass backward.
func New(tree *cluster.Tree, opts ...Option) *Plan {
	p := &Plan{
		G:         tree.Graph(),
		T:         tree,
		Matchings: NewMatching(tree.Graph()),
		logger:    log.New(io.Discard),
		solver:    TrivialSolver{},
	}
	for _, o := range opts {
		o(p)
	}
	if p.augmentation != nil {
		*p.augmentation = (*p.augmentation)[:0]
	}

	order := tree.PostOrder()
	op := snapshotClusters(order)
	byIndex := make(map[int]*frozenCluster, len(op.clusters))
	for i := range op.clusters {
		byIndex[op.clusters[i].index] = &op.clusters[i]
	}

	p.logger.Debug("flattening clusters", "clusters", len(order))
	for _, c := range order {
		if c.IsRoot() {
			continue
		}
		p.rerouteCluster(c, byIndex[c.Index()])
	}

	for _, c := range order {
		if c.IsRoot() {
			continue
		}
		for _, n := range append([]graph.NodeID(nil), c.Nodes()...) {
			tree.ReassignNode(n, tree.Root())
		}
	}

	p.components = ComputeComponents(p.G)
	p.Matchings.RebuildHeap()
	p.undo.push(op)
	return p
}

// snapshotClusters freezes the cluster hierarchy before any mutation.
// PostOrder yields children before parents; prepending flips that to
// parents-before-children with the root first, which is the order replay
// consumes.
func snapshotClusters(order []*cluster.Cluster) *undoInitCluster {
	op := &undoInitCluster{clusters: make([]frozenCluster, len(order))}
	at := len(order)
	for _, c := range order {
		at--
		fc := &op.clusters[at]
		fc.index = c.Index()
		fc.parent = -1
		fc.parentNode = graph.NilNode
		if !c.IsRoot() {
			fc.parent = c.Parent().Index()
		}
		fc.nodes = append([]graph.NodeID(nil), c.Nodes()...)
	}
	return op
}

// rerouteCluster replaces cluster c's boundary with a pipe (cn, pn).
func (p *Plan) rerouteCluster(c *cluster.Cluster, fc *frozenCluster) {
	cn := p.G.NewNode()
	pn := p.G.NewNode()
	p.T.ReassignNode(cn, c)
	p.T.ReassignNode(pn, c.Parent())
	fc.parentNode = cn

	var crossing []graph.AdjID
	for _, n := range c.Nodes() {
		if n == cn {
			continue
		}
		for _, adj := range p.G.Adjacencies(n) {
			if p.T.IsBoundaryEdge(c, adj) {
				crossing = append(crossing, adj)
			}
		}
	}
	p.logger.Debug("rerouting perimeter-crossing edges",
		"cluster", c.Index(), "parent", c.Parent().Index(),
		"childNode", cn, "parentNode", pn, "crossing", len(crossing))

	RerouteBoundary(p.G, crossing, cn, pn)
	p.Matchings.MatchNodes(cn, pn)
}

// State returns the Plan's lifecycle state.
func (p *Plan) State() State { return p.state }

// Components returns the connectivity bookkeeping computed over the
// flattened graph at construction time.
func (p *Plan) Components() *Components { return p.components }

// UndoLogState exposes the undo log's lifecycle state.
func (p *Plan) UndoLogState() LogState { return p.undo.state }

// PrunePipes removes every degree-zero pipe, deleting its two isolated
// nodes, and records an undo operation per pipe so replay can restore
// them. Clusters without boundary-crossing edges produce such pipes and
// carry no constraint for the solver. Returns the number pruned.
// Must be called before MakeReduced.
func (p *Plan) PrunePipes() int {
	p.require(StateConstructed, "PrunePipes")
	pruned := 0
	for _, pipe := range p.Matchings.Pipes() {
		if p.G.Degree(pipe.U) != 0 {
			continue
		}
		p.logger.Debug("pruning empty pipe", "u", pipe.U, "v", pipe.V)
		p.Matchings.RemoveMatching(pipe.U, pipe.V)
		p.G.DelNode(pipe.U)
		p.G.DelNode(pipe.V)
		p.T.RemoveNode(pipe.U)
		p.T.RemoveNode(pipe.V)
		p.undo.push(&undoPrunedPipe{u: pipe.U, v: pipe.V})
		pruned++
	}
	if pruned > 0 {
		p.Matchings.RebuildHeap()
	}
	return pruned
}

// MakeReduced freezes the undo log and runs the solver's reduction pass.
// Returns false, moving the Plan to Failed, if the instance already proves
// infeasible during reduction.
func (p *Plan) MakeReduced() bool {
	p.require(StateConstructed, "MakeReduced")
	p.undo.freeze()
	if !p.solver.MakeReduced(p) {
		p.fail()
		return false
	}
	p.state = StateReduced
	return true
}

// SolveReduced decides the reduced instance. Returns false, moving the
// Plan to Failed and discarding the undo log, if the flattened graph is
// not planar under the pipe constraints; the input is then not
// cluster-planar.
func (p *Plan) SolveReduced() bool {
	p.require(StateReduced, "SolveReduced")
	if !p.solver.SolveReduced(p) {
		p.fail()
		return false
	}
	p.state = StateSolved
	return true
}

// Embed replays the undo log in reverse push order, re-joining every pipe
// and restoring cluster membership and boundary adjacency. On return the
// pipe registry is empty and the tree again describes the original
// hierarchy, now carrying the solved embedding. Returns an error only if
// the restored structure fails its consistency check.
func (p *Plan) Embed() error {
	p.require(StateSolved, "Embed")
	p.undo.startReplay()
	for op := p.undo.pop(); op != nil; op = p.undo.pop() {
		p.logger.Debug("replaying", "op", op.opName())
		switch op := op.(type) {
		case *undoInitCluster:
			p.replayInitCluster(op)
		case *undoPrunedPipe:
			p.replayPrunedPipe(op)
		default:
			panic(fmt.Sprintf("planar: unknown undo operation %T", op))
		}
	}
	p.state = StateEmbedded
	if p.Matchings.Count() != 0 {
		return fmt.Errorf("planar: %d pipes left after embed", p.Matchings.Count())
	}
	if err := p.G.Validate(); err != nil {
		return fmt.Errorf("planar: graph after embed: %w", err)
	}
	if err := p.T.Validate(); err != nil {
		return fmt.Errorf("planar: clusters after embed: %w", err)
	}
	return nil
}

// replayPrunedPipe revives a pruned degree-zero pipe under its original
// node handles so replayInitCluster finds a pipe for its cluster.
func (p *Plan) replayPrunedPipe(op *undoPrunedPipe) {
	u := p.G.NewNodeWithID(op.u)
	v := p.G.NewNodeWithID(op.v)
	p.Matchings.MatchNodes(u, v)
}

// replayInitCluster restores the frozen hierarchy: for each non-root
// snapshot it joins the cluster's pipe, collects the cluster's boundary
// cyclic order (and augmentation pairs, when requested), and reassigns the
// frozen members back to their cluster.
func (p *Plan) replayInitCluster(op *undoInitCluster) {
	var bicomps []int
	if p.augmentation != nil {
		bicomps, _ = BiconnectedComponents(p.G)
	}
	root := p.T.Root()
	root.AdjEntries = root.AdjEntries[:0]
	for i := range op.clusters {
		fc := &op.clusters[i]
		c := p.T.ClusterByIndex(fc.index)
		if c == nil {
			panic(fmt.Sprintf("planar: frozen cluster %d no longer exists", fc.index))
		}
		if !c.IsRoot() {
			p.joinCluster(c, fc.parentNode, bicomps)
		}
		for _, n := range fc.nodes {
			p.T.ReassignNode(n, c)
		}
	}
}

// joinCluster consumes the pipe standing in for c and rebuilds c's
// boundary adjacency from the welded edges.
func (p *Plan) joinCluster(c *cluster.Cluster, cn graph.NodeID, bicomps []int) {
	pn := p.Matchings.Twin(cn)
	if pn == graph.NilNode {
		panic(fmt.Sprintf("planar: cluster %d has no pipe at node %d", c.Index(), cn))
	}
	p.logger.Debug("joining cluster pipe",
		"cluster", c.Index(), "childNode", cn, "parentNode", pn, "degree", p.G.Degree(cn))

	bij := p.Matchings.IncidentEdgeBijection(pn)
	p.Matchings.RemoveMatching(cn, pn)
	JoinPipe(p.G, pn, cn, bij)
	p.T.RemoveNode(cn)
	p.T.RemoveNode(pn)

	bcNr := -1
	if bicomps != nil && len(bij) > 0 {
		bcNr = bicomps[p.G.AdjEdge(bij[0].First)]
	}
	pred := graph.NilAdj
	c.AdjEntries = c.AdjEntries[:0]
	for _, pair := range bij {
		curr := p.G.Twin(pair.First)
		c.AdjEntries = append(c.AdjEntries, curr)
		if bicomps != nil {
			if bc := bicomps[p.G.AdjEdge(pair.First)]; bc != bcNr {
				*p.augmentation = append(*p.augmentation, AdjPair{First: pred, Second: curr})
				bcNr = bc
			}
		}
		pred = curr
	}
}

// fail marks the instance not cluster-planar: the undo log is discarded
// without replay and the Plan is spent.
func (p *Plan) fail() {
	p.state = StateFailed
	p.undo.discard()
}

func (p *Plan) require(s State, opName string) {
	if p.state != s {
		panic(fmt.Sprintf("planar: %s requires state %s, Plan is %s", opName, s, p.state))
	}
}
