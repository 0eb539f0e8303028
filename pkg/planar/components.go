package planar

import "github.com/planvia/clusterplan/pkg/graph"

// Components records the connected component of every node, computed once
// over the flattened graph as part of the orchestrator's connectivity
// bookkeeping.
type Components struct {
	comp  []int
	count int
}

// ComputeComponents labels every live node with a component id using a
// filtering BFS with permissive predicates.
func ComputeComponents(g *graph.Graph) *Components {
	c := &Components{comp: make([]int, g.MaxNodeID()+1)}
	for i := range c.comp {
		c.comp[i] = -1
	}
	for _, n := range g.Nodes() {
		if c.comp[n] >= 0 {
			continue
		}
		bfs := NewFilteringBFS(g, []graph.NodeID{n}, nil, nil)
		for bfs.Valid() {
			c.comp[bfs.Current()] = c.count
			bfs.Next()
		}
		c.count++
	}
	return c
}

// Count returns the number of connected components.
func (c *Components) Count() int { return c.count }

// Of returns the component id of n, or -1 for nodes created after the
// computation.
func (c *Components) Of(n graph.NodeID) int {
	if int(n) >= len(c.comp) {
		return -1
	}
	return c.comp[n]
}

// SameComponent reports whether u and v were connected at computation time.
func (c *Components) SameComponent(u, v graph.NodeID) bool {
	return c.Of(u) >= 0 && c.Of(u) == c.Of(v)
}

// BiconnectedComponents labels every live edge with the id of its
// biconnected component using the classic lowpoint DFS, and returns the
// labels indexed by EdgeID together with the component count. Bridges form
// singleton components; self-loops each get their own id.
func BiconnectedComponents(g *graph.Graph) ([]int, int) {
	maxEdge := -1
	for _, e := range g.Edges() {
		if int(e) > maxEdge {
			maxEdge = int(e)
		}
	}
	comp := make([]int, maxEdge+1)
	for i := range comp {
		comp[i] = -1
	}

	num := make([]int, g.MaxNodeID()+1)
	low := make([]int, g.MaxNodeID()+1)
	var stack []graph.EdgeID
	count := 0
	timer := 0

	var dfs func(n graph.NodeID, parent graph.EdgeID)
	dfs = func(n graph.NodeID, parent graph.EdgeID) {
		timer++
		num[n] = timer
		low[n] = timer
		for _, adj := range g.Adjacencies(n) {
			e := g.AdjEdge(adj)
			w := g.TwinNode(adj)
			if w == n {
				if comp[e] < 0 {
					comp[e] = count
					count++
				}
				continue
			}
			if e == parent {
				continue
			}
			if num[w] == 0 {
				stack = append(stack, e)
				dfs(w, e)
				if low[w] < low[n] {
					low[n] = low[w]
				}
				if low[w] >= num[n] {
					for {
						top := stack[len(stack)-1]
						stack = stack[:len(stack)-1]
						comp[top] = count
						if top == e {
							break
						}
					}
					count++
				}
			} else if num[w] < num[n] {
				stack = append(stack, e)
				if num[w] < low[n] {
					low[n] = num[w]
				}
			}
		}
	}

	for _, n := range g.Nodes() {
		if num[n] == 0 {
			dfs(n, graph.NilEdge)
		}
	}
	return comp, count
}
