// Package graphio reads and writes clustered graphs as JSON documents.
//
// The document format is human-readable and designed for round-trip
// fidelity: import → transform → export → re-import produces identical
// results. Node rotations default to edge order: building a graph from a
// document appends adjacency entries in document order. A node whose
// rotation no longer matches that order (because an embedder reordered it)
// carries an explicit rotation field listing its incidences as edge
// indices, so installed embeddings survive export and re-import.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/planvia/clusterplan/pkg/cluster"
	"github.com/planvia/clusterplan/pkg/errors"
	"github.com/planvia/clusterplan/pkg/graph"
)

// =============================================================================
// Document - Clustered Graph Serialization
// =============================================================================

// Document is the canonical serialization format for clustered graphs.
// Used for file storage, caching, and cross-tool compatibility.
type Document struct {
	Name     string       `json:"name,omitempty"`
	Nodes    []Node       `json:"nodes"`
	Edges    []Edge       `json:"edges"`
	Clusters []ClusterDef `json:"clusters,omitempty"`
}

// Node is one graph vertex. Cluster names the innermost cluster holding the
// node; empty means the root.
//
// Rotation, when present, lists the node's incidences in cyclic order as
// indices into the document's edge array (a self loop's index appears
// twice, source half first). When absent, the rotation is the order in
// which the edge array mentions the node.
type Node struct {
	ID       string `json:"id"`
	Cluster  string `json:"cluster,omitempty"`
	Rotation []int  `json:"rotation,omitempty"`
}

// Edge represents one edge by its endpoint node IDs. Edges are directed in
// the document exactly as in the graph, and parallel edges are allowed.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ClusterDef declares one cluster. Parent names the enclosing cluster;
// empty means a direct child of the root.
type ClusterDef struct {
	ID     string `json:"id"`
	Parent string `json:"parent,omitempty"`
}

// =============================================================================
// Instance - Document ↔ Graph Binding
// =============================================================================

// Instance binds a live graph and cluster tree to the document names they
// were built from, so results can be exported and rendered under the
// caller's identifiers.
type Instance struct {
	Name  string
	Graph *graph.Graph
	Tree  *cluster.Tree

	nodeByID    map[string]graph.NodeID
	idByNode    map[graph.NodeID]string
	clusterByID map[string]*cluster.Cluster
	idByCluster map[int]string
}

// Node resolves a document node ID to its graph handle.
func (in *Instance) Node(id string) (graph.NodeID, bool) {
	n, ok := in.nodeByID[id]
	return n, ok
}

// NodeID returns the document ID of a graph node, or "" for nodes created
// after parsing (such as pipe nodes).
func (in *Instance) NodeID(n graph.NodeID) string { return in.idByNode[n] }

// Cluster resolves a document cluster ID to the live cluster.
func (in *Instance) Cluster(id string) (*cluster.Cluster, bool) {
	c, ok := in.clusterByID[id]
	return c, ok
}

// ClusterID returns the document ID of a cluster, or "" for the root.
func (in *Instance) ClusterID(c *cluster.Cluster) string { return in.idByCluster[c.Index()] }

// =============================================================================
// Document → Instance
// =============================================================================

// ToInstance builds a live graph and cluster tree from a document.
// Returns a coded error if the document references unknown nodes or
// clusters, repeats an ID, or nests clusters cyclically.
func ToInstance(doc Document) (*Instance, error) {
	if doc.Name != "" {
		if err := errors.ValidateGraphName(doc.Name); err != nil {
			return nil, err
		}
	}
	g := graph.New()
	tree := cluster.NewTree(g)
	in := &Instance{
		Name:        doc.Name,
		Graph:       g,
		Tree:        tree,
		nodeByID:    make(map[string]graph.NodeID, len(doc.Nodes)),
		idByNode:    make(map[graph.NodeID]string, len(doc.Nodes)),
		clusterByID: make(map[string]*cluster.Cluster, len(doc.Clusters)),
		idByCluster: make(map[int]string, len(doc.Clusters)),
	}

	defs := make(map[string]ClusterDef, len(doc.Clusters))
	for _, cd := range doc.Clusters {
		if err := errors.ValidateID(cd.ID); err != nil {
			return nil, err
		}
		if _, dup := defs[cd.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidCluster, "duplicate cluster id: %s", cd.ID)
		}
		defs[cd.ID] = cd
	}
	for _, cd := range doc.Clusters {
		if _, err := resolveCluster(in, defs, cd.ID, make(map[string]bool)); err != nil {
			return nil, err
		}
	}

	for _, nd := range doc.Nodes {
		if err := errors.ValidateID(nd.ID); err != nil {
			return nil, err
		}
		if _, dup := in.nodeByID[nd.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node id: %s", nd.ID)
		}
		n := g.NewNode()
		in.nodeByID[nd.ID] = n
		in.idByNode[n] = nd.ID
		if nd.Cluster != "" {
			c, ok := in.clusterByID[nd.Cluster]
			if !ok {
				return nil, errors.New(errors.ErrCodeNotFound,
					"node %s references unknown cluster: %s", nd.ID, nd.Cluster)
			}
			tree.ReassignNode(n, c)
		}
	}

	edges := make([]graph.EdgeID, 0, len(doc.Edges))
	for _, ed := range doc.Edges {
		from, ok := in.nodeByID[ed.From]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "edge references unknown node: %s", ed.From)
		}
		to, ok := in.nodeByID[ed.To]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "edge references unknown node: %s", ed.To)
		}
		edges = append(edges, g.NewEdge(from, to))
	}

	for _, nd := range doc.Nodes {
		if nd.Rotation == nil {
			continue
		}
		order, err := rotationOrder(g, in.nodeByID[nd.ID], nd.Rotation, edges)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %s: invalid rotation", nd.ID)
		}
		g.SortAdj(in.nodeByID[nd.ID], order)
	}

	return in, nil
}

// rotationOrder resolves a rotation field (edge indices) to the node's
// adjacency handles. Every incidence of the node must be named exactly
// once; a self loop's source half binds to the edge's first occurrence.
func rotationOrder(g *graph.Graph, n graph.NodeID, rotation []int, edges []graph.EdgeID) ([]graph.AdjID, error) {
	if len(rotation) != g.Degree(n) {
		return nil, fmt.Errorf("%d entries for degree %d", len(rotation), g.Degree(n))
	}
	used := make(map[graph.AdjID]bool, len(rotation))
	order := make([]graph.AdjID, 0, len(rotation))
	for _, idx := range rotation {
		if idx < 0 || idx >= len(edges) {
			return nil, fmt.Errorf("edge index %d out of range", idx)
		}
		e := edges[idx]
		var a graph.AdjID
		switch {
		case g.Source(e) == n && !used[g.SourceAdj(e)]:
			a = g.SourceAdj(e)
		case g.Target(e) == n && !used[g.TargetAdj(e)]:
			a = g.TargetAdj(e)
		default:
			return nil, fmt.Errorf("edge index %d is not an unused incidence of the node", idx)
		}
		used[a] = true
		order = append(order, a)
	}
	return order, nil
}

// resolveCluster creates the cluster id and all its ancestors, rejecting
// parent cycles.
func resolveCluster(in *Instance, defs map[string]ClusterDef, id string, trail map[string]bool) (*cluster.Cluster, error) {
	if c, ok := in.clusterByID[id]; ok {
		return c, nil
	}
	if trail[id] {
		return nil, errors.New(errors.ErrCodeInvalidCluster, "cluster nesting cycle through: %s", id)
	}
	trail[id] = true

	cd := defs[id]
	parent := in.Tree.Root()
	if cd.Parent != "" {
		if _, ok := defs[cd.Parent]; !ok {
			return nil, errors.New(errors.ErrCodeNotFound,
				"cluster %s references unknown parent: %s", id, cd.Parent)
		}
		p, err := resolveCluster(in, defs, cd.Parent, trail)
		if err != nil {
			return nil, err
		}
		parent = p
	}

	c := in.Tree.NewCluster(parent)
	in.clusterByID[id] = c
	in.idByCluster[c.Index()] = id
	return c, nil
}

// =============================================================================
// Instance → Document
// =============================================================================

// FromInstance converts an instance back to its serialization format.
// Nodes and clusters are sorted by ID for deterministic output; edges keep
// handle order. Nodes whose rotation no longer matches that order (an
// embedder reordered it via SortAdj) get an explicit rotation field, so the
// installed embedding survives the round trip. Nodes and edges created
// after parsing (pipe nodes and their halves) are skipped.
func FromInstance(in *Instance) Document {
	doc := Document{Name: in.Name}

	for _, n := range in.Graph.Nodes() {
		id, ok := in.idByNode[n]
		if !ok {
			continue
		}
		nd := Node{ID: id}
		if c := in.Tree.ClusterOf(n); !c.IsRoot() {
			nd.Cluster = in.idByCluster[c.Index()]
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	slices.SortFunc(doc.Nodes, func(a, b Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	edgeIndex := make(map[graph.EdgeID]int)
	appendOrder := make(map[graph.NodeID][]graph.AdjID)
	for _, e := range in.Graph.Edges() {
		from, okF := in.idByNode[in.Graph.Source(e)]
		to, okT := in.idByNode[in.Graph.Target(e)]
		if !okF || !okT {
			continue
		}
		edgeIndex[e] = len(doc.Edges)
		doc.Edges = append(doc.Edges, Edge{From: from, To: to})
		src, tgt := in.Graph.Source(e), in.Graph.Target(e)
		appendOrder[src] = append(appendOrder[src], in.Graph.SourceAdj(e))
		appendOrder[tgt] = append(appendOrder[tgt], in.Graph.TargetAdj(e))
	}

	for i := range doc.Nodes {
		n := in.nodeByID[doc.Nodes[i].ID]
		doc.Nodes[i].Rotation = rotationField(in, n, edgeIndex, appendOrder[n])
	}

	for id, c := range in.clusterByID {
		cd := ClusterDef{ID: id}
		if p := c.Parent(); p != nil && !p.IsRoot() {
			cd.Parent = in.idByCluster[p.Index()]
		}
		doc.Clusters = append(doc.Clusters, cd)
	}
	slices.SortFunc(doc.Clusters, func(a, b ClusterDef) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	return doc
}

// rotationField returns a node's rotation as edge indices, or nil when the
// document's edge order alone already reproduces it on parse. appendOrder
// is the adjacency order edge-by-edge construction would yield.
func rotationField(in *Instance, n graph.NodeID, edgeIndex map[graph.EdgeID]int, appendOrder []graph.AdjID) []int {
	rot := in.Graph.Adjacencies(n)
	if slices.Equal(rot, appendOrder) {
		return nil
	}
	field := make([]int, 0, len(rot))
	for _, a := range rot {
		idx, ok := edgeIndex[in.Graph.AdjEdge(a)]
		if !ok {
			// An incidence that is not exported (a pipe half); the
			// rotation cannot be expressed over the document's edges.
			return nil
		}
		field = append(field, idx)
	}
	return field
}

// =============================================================================
// Encoding
// =============================================================================

// UnmarshalDocument deserializes JSON bytes to a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "failed to decode document")
	}
	return doc, nil
}

// MarshalDocument serializes a Document to indented JSON.
func MarshalDocument(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to encode document")
	}
	return data, nil
}

// Read parses an instance from JSON on r.
func Read(r io.Reader) (*Instance, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to read document")
	}
	doc, err := UnmarshalDocument(data)
	if err != nil {
		return nil, err
	}
	return ToInstance(doc)
}

// Write serializes an instance as indented JSON to w.
func Write(w io.Writer, in *Instance) error {
	data, err := MarshalDocument(FromInstance(in))
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}
