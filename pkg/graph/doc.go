// Package graph provides the mutable graph substrate used by the
// cluster-planarity engine.
//
// Unlike a plain adjacency-list graph, every node carries an explicit
// cyclic order of its incident edge slots (its rotation). A combinatorial
// embedding is exactly an assignment of rotations, so all transformations
// in this package are careful about where in a rotation an entry lands.
//
// # Handles
//
// Nodes, edges, and adjacency entries are addressed by small integer
// handles ([NodeID], [EdgeID], [AdjID]) into internal arenas. Handles stay
// valid across unrelated mutations; deleting an element marks its slot dead
// without shifting others. Cross-references (twin entries, matched nodes)
// are therefore plain handles, never owning pointers.
//
// # Surgery
//
// [Graph.SplitEdge] and [Graph.JoinEdge] are exact inverses used by the
// flattening protocol: splitting an edge at a pair of new attachment nodes
// preserves the cyclic position of the surviving half at the untouched
// endpoint, and joining two halves re-welds them into a single edge
// occupying the same positions.
package graph
