// Package pkg provides the core libraries for Clusterplan cluster-planarity
// testing and embedding.
//
// # Overview
//
// Clusterplan decides whether a graph with a hierarchy of clusters can be
// drawn in the plane so that every cluster occupies its own connected region
// with no edge crossing a cluster boundary more than once. The pkg directory
// is organized into these areas:
//
//  1. [graph] - Mutable multigraph with explicit rotations (the embedding substrate)
//  2. [cluster] - The cluster hierarchy over a graph
//  3. [planar] - Flattening, pipe matching, undo log, and replay
//  4. [graphio] - JSON document format for clustered graphs
//  5. [render] - Node-link diagrams via Graphviz
//  6. [pipeline] - Orchestration (parse → flatten → solve → embed → render)
//  7. [cache], [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through Clusterplan:
//
//	Clustered graph document (JSON)
//	         ↓
//	    [graphio] package (parse into graph + cluster tree)
//	         ↓
//	    [planar] package (flatten hierarchy into pipes, solve, replay)
//	         ↓
//	    [render/nodelink] package (DOT / SVG output)
//
// # Quick Start
//
// Decide cluster-planarity and reconstruct the clustered embedding:
//
//	import (
//	    "os"
//	    "github.com/planvia/clusterplan/pkg/graphio"
//	    "github.com/planvia/clusterplan/pkg/planar"
//	)
//
//	// 1. Parse the document
//	f, _ := os.Open("circuit.json")
//	in, _ := graphio.Read(f)
//
//	// 2. Flatten the hierarchy into pipes
//	p := planar.New(in.Tree)
//	p.PrunePipes()
//
//	// 3. Solve and replay
//	if p.MakeReduced() && p.SolveReduced() {
//	    _ = p.Embed() // in.Graph now carries the clustered embedding
//	}
//
// # Main Packages
//
// [graph] - Arena-backed multigraph where every node carries a cyclic
// adjacency order (rotation). Handles stay stable across edge surgery, which
// is what lets the undo machinery refer to "the same slot" across
// transformations.
//
// [cluster] - The recursive cluster hierarchy: a tree of clusters over the
// graph's nodes, with boundary queries and post-order traversal.
//
// [planar] - The reduction engine. Flattens every cluster into a matched
// node pair (a pipe) whose rotations must stay mirror images, hands the
// plain graph to a solver, then replays an undo log to restore the
// hierarchy carrying the solved embedding.
//
// [pipeline] - End-to-end runs with caching: verdicts, embedded documents,
// and rendered artifacts are memoized by document hash.
package pkg
