package planar

import (
	"fmt"

	"github.com/planvia/clusterplan/pkg/graph"
)

// LogState tracks the undo log through its lifecycle. The log only accepts
// pushes while Recording, is handed to the external solver Frozen, and is
// consumed exactly once while Replaying.
type LogState int

const (
	// LogRecording accepts pushes during flattening.
	LogRecording LogState = iota
	// LogFrozen rejects all mutation while the solver runs.
	LogFrozen
	// LogReplaying pops operations in reverse push order.
	LogReplaying
	// LogDrained is the terminal state after a full replay.
	LogDrained
)

// String returns the state name.
func (s LogState) String() string {
	switch s {
	case LogRecording:
		return "recording"
	case LogFrozen:
		return "frozen"
	case LogReplaying:
		return "replaying"
	default:
		return "drained"
	}
}

// undoOp is one reversible flattening step. The set of variants is closed;
// replay dispatches over it with a type switch rather than through dynamic
// behavior on the operations themselves.
type undoOp interface {
	opName() string
}

// frozenCluster is the minimal pre-flattening snapshot of one cluster:
// its identity, its parent, the matched node that stands in for it in the
// flattened graph, and its member nodes in assignment order.
type frozenCluster struct {
	index      int
	parent     int
	parentNode graph.NodeID
	nodes      []graph.NodeID
}

// undoInitCluster reverses the whole perimeter-rerouting pass. Snapshots
// are stored root first, parents before children; replay walks them
// front-to-back, joining each non-root cluster's pipe before restoring its
// membership.
type undoInitCluster struct {
	clusters []frozenCluster
}

func (*undoInitCluster) opName() string { return "UndoInitCluster" }

// undoPrunedPipe restores a degree-zero pipe removed before reduction so
// that undoInitCluster finds a pipe for every non-root cluster.
type undoPrunedPipe struct {
	u, v graph.NodeID
}

func (*undoPrunedPipe) opName() string { return "UndoPrunedPipe" }

// undoLog is an ordered stack of reversible operations. Operations never
// mutate state when pushed, only when replayed, in strict LIFO order.
type undoLog struct {
	ops   []undoOp
	state LogState
}

func (l *undoLog) push(op undoOp) {
	if l.state != LogRecording {
		panic(fmt.Sprintf("planar: push on %s undo log", l.state))
	}
	l.ops = append(l.ops, op)
}

func (l *undoLog) freeze() {
	if l.state != LogRecording {
		panic(fmt.Sprintf("planar: freeze on %s undo log", l.state))
	}
	l.state = LogFrozen
}

func (l *undoLog) startReplay() {
	if l.state != LogFrozen {
		panic(fmt.Sprintf("planar: replay on %s undo log", l.state))
	}
	l.state = LogReplaying
}

// pop returns the most recent operation, or nil once drained.
func (l *undoLog) pop() undoOp {
	if l.state != LogReplaying {
		panic(fmt.Sprintf("planar: pop on %s undo log", l.state))
	}
	if len(l.ops) == 0 {
		l.state = LogDrained
		return nil
	}
	op := l.ops[len(l.ops)-1]
	l.ops = l.ops[:len(l.ops)-1]
	return op
}

// discard abandons the log without replay, used when the solver reports
// the instance infeasible.
func (l *undoLog) discard() {
	l.ops = nil
	l.state = LogDrained
}

func (l *undoLog) len() int { return len(l.ops) }
