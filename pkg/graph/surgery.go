package graph

// OrderComp is the result of comparing a node's rotation against a
// reference cyclic order.
type OrderComp int

const (
	// OrderSame means the rotation equals the reference order up to rotation.
	OrderSame OrderComp = iota
	// OrderReversed means the rotation equals the reference order read
	// backwards, up to rotation.
	OrderReversed
	// OrderDifferent means the two cyclic orders disagree.
	OrderDifferent
)

// String returns the comparison result name.
func (c OrderComp) String() string {
	switch c {
	case OrderSame:
		return "same"
	case OrderReversed:
		return "reversed"
	default:
		return "different"
	}
}

// SplitEdge splits the edge of adj at a pair of new attachment nodes.
// The edge half incident to adj's node keeps the original edge handle and
// is re-attached to newAdjToNode; a fresh half connects newAdjToTwin to the
// former twin node, taking over the original entry's cyclic position there.
// Both new attachment entries are appended to the end of their rotations.
//
// Returns the adjacency entry of the fresh half at the former twin node.
// Edge directions are preserved on both halves.
func (g *Graph) SplitEdge(adj AdjID, newAdjToNode, newAdjToTwin NodeID) AdjID {
	reverse := !g.IsSource(adj)
	e := g.adjs[adj].edge
	if reverse {
		g.ReverseEdge(e)
	}
	// e: n -> t becomes e: n -> newAdjToNode plus c: newAdjToTwin -> t.
	c := g.splitDirected(e, newAdjToNode, newAdjToTwin)
	adjT := g.edges[c].adjTarget
	if reverse {
		g.ReverseEdge(e)
		g.ReverseEdge(c)
	}
	return adjT
}

// splitDirected splits e = (s -> t) into e = (s -> newAdjToSource) and a
// new edge (newAdjToTarget -> t) whose entry at t replaces e's former
// cyclic position there.
func (g *Graph) splitDirected(e EdgeID, newAdjToSource, newAdjToTarget NodeID) EdgeID {
	oldTarget := g.edges[e].target
	c := g.NewEdge(newAdjToTarget, oldTarget)
	g.MoveAdjAfter(g.edges[c].adjTarget, g.edges[e].adjTarget)
	g.MoveTarget(e, newAdjToSource)
	return c
}

// JoinEdge re-welds two edge halves into a single edge. uAdj and vAdj are
// the entries at the two attachment nodes being removed from the picture;
// the far end of uAdj's edge is kept while its near end is relocated onto
// the far node of vAdj's edge, taking over that entry's cyclic position.
// vAdj's edge is deleted.
//
// Reports whether the two halves pointed in opposing directions, which
// callers use to restore the original edge orientation bookkeeping.
func (g *Graph) JoinEdge(uAdj, vAdj AdjID) bool {
	opposing := g.IsSource(uAdj) == g.IsSource(vAdj)
	g.MoveEndAfter(g.Twin(uAdj), g.Twin(vAdj))
	g.DelEdge(g.adjs[vAdj].edge)
	return opposing
}

// CompareCyclicOrder compares n's rotation against order, a list of n's
// adjacency entries. The comparison is insensitive to the rotation start
// point. Panics if order's length differs from n's degree.
func (g *Graph) CompareCyclicOrder(n NodeID, order []AdjID) OrderComp {
	rot := g.nodes[n].rot
	if len(order) != len(rot) {
		panic("graph: order length does not match degree")
	}
	if len(rot) == 0 {
		return OrderSame
	}
	start := -1
	for i, a := range order {
		if a == rot[0] {
			start = i
			break
		}
	}
	if start < 0 {
		return OrderDifferent
	}
	size := len(rot)
	forward := true
	for i, a := range rot {
		if order[(start+i)%size] != a {
			forward = false
			break
		}
	}
	if forward {
		return OrderSame
	}
	for i, a := range rot {
		if order[((start-i)%size+size)%size] != a {
			return OrderDifferent
		}
	}
	return OrderReversed
}

// MoveAdjToFront rotates the owner's rotation so that a becomes the first
// entry. The cyclic order is unchanged.
func (g *Graph) MoveAdjToFront(a AdjID) {
	g.rotateTo(a, 0)
}

// MoveAdjToBack rotates the owner's rotation so that a becomes the last
// entry. The cyclic order is unchanged.
func (g *Graph) MoveAdjToBack(a AdjID) {
	n := g.adjs[a].node
	g.rotateTo(a, len(g.nodes[n].rot)-1)
}

func (g *Graph) rotateTo(a AdjID, pos int) {
	n := g.adjs[a].node
	rot := g.nodes[n].rot
	i := g.rotIndex(a)
	shift := ((i-pos)%len(rot) + len(rot)) % len(rot)
	if shift == 0 {
		return
	}
	out := make([]AdjID, len(rot))
	for j := range rot {
		out[j] = rot[(j+shift)%len(rot)]
	}
	copy(rot, out)
}
