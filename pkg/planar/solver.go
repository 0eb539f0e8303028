package planar

// Solver is the external reduction/solve boundary. Implementations consume
// the flattened graph and the pipe registry of a [Plan] in state
// Constructed, and decide whether the instance admits a planar embedding
// in which every pipe's two rotations stay mirror images of each other.
//
// MakeReduced may rewrite the flattened graph as long as pipe degree
// invariants hold; SolveReduced must, on success, leave the graph carrying
// a valid combinatorial embedding with embedding-consistent pipes so that
// the replay's join inverse is order-preserving. Neither method may touch
// the undo log.
type Solver interface {
	MakeReduced(p *Plan) bool
	SolveReduced(p *Plan) bool
}

// TrivialSolver accepts any instance whose pipes are positionally
// consistent, without attempting planarity reasoning. Construction leaves
// every pipe in exactly that shape, so this solver is sufficient for
// flatten/unflatten round trips and for inputs known to be cluster-planar
// as given. Plug in a real reduction procedure for decision power.
type TrivialSolver struct{}

// MakeReduced performs no reductions.
func (TrivialSolver) MakeReduced(p *Plan) bool { return true }

// SolveReduced verifies the pipe degree invariant and accepts.
func (TrivialSolver) SolveReduced(p *Plan) bool {
	for _, pipe := range p.Matchings.Pipes() {
		if p.G.Degree(pipe.U) != p.G.Degree(pipe.V) {
			return false
		}
	}
	return true
}
