// Package cluster provides the nested vertex partition consumed by the
// cluster-planarity engine: a rooted tree of clusters over the nodes of a
// [graph.Graph], with post-order iteration, node reassignment, and
// per-cluster storage for the boundary cyclic order of a finished
// embedding.
package cluster
