package planar

import (
	"fmt"

	"github.com/planvia/clusterplan/pkg/graph"
)

// JoinPipe consumes a pipe: for every aligned pair of the bijection it
// re-welds the two edge halves into a single edge, then deletes the two
// matched nodes u and v, which must have dropped to degree zero.
//
// The bijection is updated in place: each First is replaced by the
// surviving entry at the far end of the welded edge (its twin is the
// re-attached entry at the other far node), and Second is cleared. The
// caller must have removed the matching from the registry first.
func JoinPipe(g *graph.Graph, u, v graph.NodeID, bij PipeBij) {
	if g.Degree(u) != len(bij) || g.Degree(v) != len(bij) {
		panic(fmt.Sprintf("planar: bijection size %d does not match degrees %d, %d",
			len(bij), g.Degree(u), g.Degree(v)))
	}
	for i := range bij {
		far := g.Twin(bij[i].First)
		g.JoinEdge(bij[i].First, bij[i].Second)
		bij[i].First = far
		bij[i].Second = graph.NilAdj
	}
	if g.Degree(u) != 0 || g.Degree(v) != 0 {
		panic("planar: pipe nodes still incident after join")
	}
	g.DelNode(u)
	g.DelNode(v)
}

// RerouteBoundary splits every boundary-crossing entry of bij's First
// column at the node pair (pn, cn): the foreign half of each edge is
// relocated onto pn and a fresh half from cn takes the original entry's
// cyclic position at the inside node. This is the forward half of the
// flattening protocol for one cluster; [JoinPipe] is its inverse.
//
// adjs lists the inside-node entries of the crossing edges in discovery
// order. After all splits, pn's rotation is reversed so that the two new
// nodes carry mirrored rotations, as the pipe bijection requires.
func RerouteBoundary(g *graph.Graph, adjs []graph.AdjID, cn, pn graph.NodeID) {
	for _, adj := range adjs {
		g.SplitEdge(g.Twin(adj), pn, cn)
	}
	if len(adjs) > 0 {
		g.ReverseAdjEdges(pn)
	}
}
