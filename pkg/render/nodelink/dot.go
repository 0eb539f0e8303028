package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/planvia/clusterplan/pkg/cluster"
	"github.com/planvia/clusterplan/pkg/graph"
	"github.com/planvia/clusterplan/pkg/graphio"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes graph handles in node labels.
	// When false, only the node ID is shown.
	Detailed bool
}

// ToDOT converts a clustered graph to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using [RenderSVG].
//
// Every non-root cluster becomes a "subgraph cluster_*" block, nested the
// way the hierarchy nests, so Graphviz draws the cluster boundaries. Nodes
// created after parsing (pipe nodes) render under synthetic names.
func ToDOT(in *graphio.Instance, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	members := make(map[*cluster.Cluster][]graph.NodeID)
	for _, n := range in.Graph.Nodes() {
		c := in.Tree.ClusterOf(n)
		members[c] = append(members[c], n)
	}

	for _, n := range members[in.Tree.Root()] {
		writeNode(&buf, in, n, opts, "  ")
	}
	for _, c := range in.Tree.Root().Children() {
		writeCluster(&buf, in, c, members, opts, "  ")
	}

	buf.WriteString("\n")
	for _, e := range in.Graph.Edges() {
		fmt.Fprintf(&buf, "  %q -- %q;\n",
			nodeName(in, in.Graph.Source(e)), nodeName(in, in.Graph.Target(e)))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, in *graphio.Instance, c *cluster.Cluster,
	members map[*cluster.Cluster][]graph.NodeID, opts Options, indent string) {
	fmt.Fprintf(buf, "%ssubgraph cluster_%d {\n", indent, c.Index())
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, clusterLabel(in, c))
	fmt.Fprintf(buf, "%s  style=rounded;\n", indent)
	for _, n := range members[c] {
		writeNode(buf, in, n, opts, indent+"  ")
	}
	for _, child := range c.Children() {
		writeCluster(buf, in, child, members, opts, indent+"  ")
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func writeNode(buf *bytes.Buffer, in *graphio.Instance, n graph.NodeID, opts Options, indent string) {
	name := nodeName(in, n)
	label := name
	if opts.Detailed {
		label = fmt.Sprintf("%s\nnode: %d", name, n)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if in.NodeID(n) == "" {
		// Synthetic pipe node from a flattened instance.
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, name, strings.Join(attrs, ", "))
}

func nodeName(in *graphio.Instance, n graph.NodeID) string {
	if id := in.NodeID(n); id != "" {
		return id
	}
	return fmt.Sprintf("n%d", n)
}

func clusterLabel(in *graphio.Instance, c *cluster.Cluster) string {
	if id := in.ClusterID(c); id != "" {
		return id
	}
	return fmt.Sprintf("cluster %d", c.Index())
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
