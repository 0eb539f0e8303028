// Package nodelink renders clustered graphs as node-link diagrams.
//
// # Overview
//
// This package produces graph visualizations using Graphviz, where nodes
// appear as boxes connected by lines and every cluster draws as a rounded
// boundary around its members, nested the way the hierarchy nests.
//
// # Usage
//
// Convert an instance to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(in, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// # DOT Format
//
// The [ToDOT] function produces Graphviz DOT source that can be:
//
//   - Rendered directly via [RenderSVG]
//   - Saved and processed with external Graphviz tools
//   - Customized before rendering
//
// Non-root clusters become "subgraph cluster_*" blocks, which Graphviz
// lays out as enclosing boxes. Flattened instances render their pipe nodes
// dashed and grey so they read as synthetic.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
