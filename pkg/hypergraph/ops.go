package hypergraph

import "sort"

// Union returns a new hypergraph containing every edge of g and other. When
// both define the same edge id the node sets are unioned rather than
// replaced, so accumulating fragments over multiple documents never drops
// membership. Union is associative and commutative in the node sets it
// combines; fragment merge order does not affect the result. Metadata from g
// wins on conflict, missing entries are filled from other.
func (g *Hypergraph) Union(other *Hypergraph) *Hypergraph {
	out := g.Clone()
	out.UnionInPlace(other)
	return out
}

// UnionInPlace merges other into g. See Union for the edge-id semantics.
func (g *Hypergraph) UnionInPlace(other *Hypergraph) {
	if other == nil {
		return
	}
	for id, set := range other.incidence {
		dst, ok := g.incidence[id]
		if !ok {
			dst = make(map[string]struct{}, len(set))
			g.incidence[id] = dst
		}
		for n := range set {
			dst[n] = struct{}{}
		}
	}
	for id, m := range other.meta {
		if _, ok := g.meta[id]; !ok {
			g.meta[id] = m
		}
	}
	g.dirty = true
}

// ConnectedComponents partitions the nodes into components of the shared-edge
// adjacency relation (two nodes are adjacent iff they co-occur in at least one
// edge). Components are returned largest-first; ties and component membership
// are ordered lexicographically so the same incidence map always yields the
// same result.
func (g *Hypergraph) ConnectedComponents() [][]string {
	nodes := g.Nodes()
	visited := make(map[string]struct{}, len(nodes))
	var components [][]string

	for _, start := range nodes {
		if _, ok := visited[start]; ok {
			continue
		}
		// BFS from start over the neighbor relation.
		component := []string{}
		queue := []string{start}
		visited[start] = struct{}{}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			component = append(component, n)
			for _, nb := range g.Neighbors(n) {
				if _, ok := visited[nb]; !ok {
					visited[nb] = struct{}{}
					queue = append(queue, nb)
				}
			}
		}
		sort.Strings(component)
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})
	return components
}

// RestrictToNodes returns a new hypergraph keeping only edges that intersect
// the given node set, with each kept edge's membership restricted to the
// intersection. This can shrink a multi-node edge but never adds nodes.
func (g *Hypergraph) RestrictToNodes(nodes []string) *Hypergraph {
	keep := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		keep[n] = struct{}{}
	}
	out := New()
	for id, set := range g.incidence {
		var members []string
		for n := range set {
			if _, ok := keep[n]; ok {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			continue
		}
		out.AddEdge(id, members)
		if m, ok := g.meta[id]; ok {
			out.meta[id] = m
		}
	}
	return out
}

// RestrictToEdges returns a new hypergraph keeping only the named edges, with
// their membership untouched.
func (g *Hypergraph) RestrictToEdges(edgeIDs []string) *Hypergraph {
	keep := make(map[string]struct{}, len(edgeIDs))
	for _, id := range edgeIDs {
		keep[id] = struct{}{}
	}
	return g.FilterEdges(func(id string, _ []string) bool {
		_, ok := keep[id]
		return ok
	})
}

// FilterEdges returns a new hypergraph keeping edges for which the predicate
// returns true. No node rewriting takes place.
func (g *Hypergraph) FilterEdges(pred func(id string, nodes []string) bool) *Hypergraph {
	out := New()
	for _, id := range g.Edges() {
		nodes := g.EdgeNodes(id)
		if !pred(id, nodes) {
			continue
		}
		out.AddEdge(id, nodes)
		if m, ok := g.meta[id]; ok {
			out.meta[id] = m
		}
	}
	return out
}
