// Package hypergraph implements the set-based incidence structure that backs
// the knowledge graph: each hyperedge maps to an arbitrary-size set of nodes.
//
// The incidence map (edge id -> node set) is the single source of truth.
// The node adjacency view (node -> incident edge ids) is a derived index,
// rebuilt lazily after structural mutation. Transforming operations (Union,
// RestrictToNodes, FilterEdges, ...) return new instances; only AddEdge,
// RemoveEdge, RemoveNode and UnionInPlace mutate the receiver, and those are
// not safe for concurrent use on a shared instance.
package hypergraph

import "sort"

// EdgeMeta carries the relation and provenance of a hyperedge as structured
// fields. Historically this information was packed into the edge identifier
// ("<relation>_chunk<id>_<n>") and recovered with a string split; keeping it
// structured makes label extraction unambiguous. ParseLegacyEdgeID remains as
// a fallback for graphs loaded without metadata.
type EdgeMeta struct {
	Relation string   `json:"relation,omitempty"`
	ChunkID  string   `json:"chunk_id,omitempty"`
	Sources  []string `json:"sources,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

// Hypergraph is a mapping from edge identifier to a set of node identifiers.
// A node exists in the graph iff it appears in at least one edge. Edges are
// never stored with zero members.
type Hypergraph struct {
	incidence map[string]map[string]struct{}
	meta      map[string]EdgeMeta

	// adjacency is the derived node -> incident edges index.
	adjacency map[string]map[string]struct{}
	dirty     bool
}

// New creates an empty hypergraph.
func New() *Hypergraph {
	return &Hypergraph{
		incidence: make(map[string]map[string]struct{}),
		meta:      make(map[string]EdgeMeta),
		dirty:     true,
	}
}

// FromIncidence creates a hypergraph from a caller-supplied incidence map.
// Edges with empty member lists are skipped.
func FromIncidence(incidence map[string][]string) *Hypergraph {
	g := New()
	for id, nodes := range incidence {
		g.AddEdge(id, nodes)
	}
	return g
}

// AddEdge upserts an edge. Replacing an existing id replaces its member set
// entirely. Adding an edge with no members is a no-op: an edge with zero
// members is meaningless and must not be stored.
func (g *Hypergraph) AddEdge(id string, nodes []string) {
	if len(nodes) == 0 {
		return
	}
	set := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		set[n] = struct{}{}
	}
	g.incidence[id] = set
	g.dirty = true
}

// AddEdgeWithMeta upserts an edge along with its relation/provenance metadata.
func (g *Hypergraph) AddEdgeWithMeta(id string, nodes []string, meta EdgeMeta) {
	if len(nodes) == 0 {
		return
	}
	g.AddEdge(id, nodes)
	g.meta[id] = meta
}

// RemoveEdge deletes an edge and its metadata. Unknown ids are ignored.
func (g *Hypergraph) RemoveEdge(id string) {
	if _, ok := g.incidence[id]; !ok {
		return
	}
	delete(g.incidence, id)
	delete(g.meta, id)
	g.dirty = true
}

// RemoveNode removes the node from every edge it participates in. Edges whose
// member set becomes empty are deleted entirely.
func (g *Hypergraph) RemoveNode(node string) {
	changed := false
	for id, set := range g.incidence {
		if _, ok := set[node]; !ok {
			continue
		}
		delete(set, node)
		changed = true
		if len(set) == 0 {
			delete(g.incidence, id)
			delete(g.meta, id)
		}
	}
	if changed {
		g.dirty = true
	}
}

// HasNode reports whether the node appears in at least one edge.
func (g *Hypergraph) HasNode(node string) bool {
	g.ensureAdjacency()
	_, ok := g.adjacency[node]
	return ok
}

// HasEdge reports whether the edge id is present.
func (g *Hypergraph) HasEdge(id string) bool {
	_, ok := g.incidence[id]
	return ok
}

// NumNodes returns the number of distinct nodes.
func (g *Hypergraph) NumNodes() int {
	g.ensureAdjacency()
	return len(g.adjacency)
}

// NumEdges returns the number of edges.
func (g *Hypergraph) NumEdges() int {
	return len(g.incidence)
}

// Nodes returns all node identifiers in lexicographic order.
func (g *Hypergraph) Nodes() []string {
	g.ensureAdjacency()
	nodes := make([]string, 0, len(g.adjacency))
	for n := range g.adjacency {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Edges returns all edge identifiers in lexicographic order.
func (g *Hypergraph) Edges() []string {
	edges := make([]string, 0, len(g.incidence))
	for id := range g.incidence {
		edges = append(edges, id)
	}
	sort.Strings(edges)
	return edges
}

// EdgeNodes returns the members of an edge in lexicographic order, or nil for
// an unknown edge.
func (g *Hypergraph) EdgeNodes(id string) []string {
	set, ok := g.incidence[id]
	if !ok {
		return nil
	}
	nodes := make([]string, 0, len(set))
	for n := range set {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// Meta returns the metadata recorded for an edge.
func (g *Hypergraph) Meta(id string) (EdgeMeta, bool) {
	m, ok := g.meta[id]
	return m, ok
}

// SetMeta records metadata for an existing edge. Unknown ids are ignored.
func (g *Hypergraph) SetMeta(id string, meta EdgeMeta) {
	if _, ok := g.incidence[id]; !ok {
		return
	}
	g.meta[id] = meta
}

// Degree returns the number of edges containing the node; 0 for unknown nodes.
func (g *Hypergraph) Degree(node string) int {
	g.ensureAdjacency()
	return len(g.adjacency[node])
}

// IncidentEdges returns the ids of edges containing the node, sorted.
// Returns nil for unknown nodes.
func (g *Hypergraph) IncidentEdges(node string) []string {
	g.ensureAdjacency()
	set, ok := g.adjacency[node]
	if !ok {
		return nil
	}
	edges := make([]string, 0, len(set))
	for id := range set {
		edges = append(edges, id)
	}
	sort.Strings(edges)
	return edges
}

// Neighbors returns the union of all other members of every edge containing
// the node, sorted. The node itself is always excluded. Returns nil for
// unknown nodes.
func (g *Hypergraph) Neighbors(node string) []string {
	g.ensureAdjacency()
	edgeSet, ok := g.adjacency[node]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for id := range edgeSet {
		for n := range g.incidence[id] {
			if n != node {
				seen[n] = struct{}{}
			}
		}
	}
	neighbors := make([]string, 0, len(seen))
	for n := range seen {
		neighbors = append(neighbors, n)
	}
	sort.Strings(neighbors)
	return neighbors
}

// Clone returns a deep copy.
func (g *Hypergraph) Clone() *Hypergraph {
	out := New()
	for id, set := range g.incidence {
		cp := make(map[string]struct{}, len(set))
		for n := range set {
			cp[n] = struct{}{}
		}
		out.incidence[id] = cp
	}
	for id, m := range g.meta {
		out.meta[id] = m
	}
	return out
}

// ensureAdjacency rebuilds the derived node index if a structural mutation
// invalidated it.
func (g *Hypergraph) ensureAdjacency() {
	if !g.dirty {
		return
	}
	g.adjacency = make(map[string]map[string]struct{})
	for id, set := range g.incidence {
		for n := range set {
			edges, ok := g.adjacency[n]
			if !ok {
				edges = make(map[string]struct{})
				g.adjacency[n] = edges
			}
			edges[id] = struct{}{}
		}
	}
	g.dirty = false
}
