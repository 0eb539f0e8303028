// Package planar implements the cluster-reduction and undo engine behind
// cluster-planarity testing.
//
// A clustered graph is cluster-planar when it can be drawn without edge
// crossings such that every cluster's region is bounded by a simple closed
// curve no foreign edge crosses. The engine reduces that question to
// ordinary planarity reasoning through reversible transformations:
//
//  1. Flattening ([New]) walks the cluster tree in post-order and replaces
//     every non-root cluster's boundary with a pipe: a matched pair of
//     fresh nodes carrying a positional bijection between their incident
//     edges ([Matching]).
//  2. An external [Solver] consumes the flattened graph plus the pipe
//     registry and decides the reduced instance.
//  3. On success, [Plan.Embed] replays the undo log in reverse, re-welding
//     every pipe ([JoinPipe]) and restoring cluster membership, boundary
//     cyclic orders, and optionally an augmentation trace.
//
// [FilteringBFS] is the restartable traversal primitive used for the
// connectivity bookkeeping around these transformations.
package planar
