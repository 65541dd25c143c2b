// Package paths finds evidence connections between matched hypergraph nodes
// using bounded breadth-first search over the shared-edge adjacency relation.
//
// Every call is a fresh BFS with its own visited set; no traversal state is
// shared across queries. Adjacency is consumed in sorted order so the same
// graph always yields the same path.
package paths

import "github.com/soundprediction/legame/pkg/hypergraph"

// Finder runs bounded searches over one graph snapshot.
type Finder struct {
	graph *hypergraph.Hypergraph
}

// New creates a Finder over the given graph.
func New(g *hypergraph.Hypergraph) *Finder {
	return &Finder{graph: g}
}

// FindPath returns the first-found shortest path between source and target,
// or nil if either endpoint is absent or no path exists within the bound.
// maxLength bounds the number of nodes in the returned path, inclusive of
// both endpoints. source == target returns a single-node path immediately.
func (f *Finder) FindPath(source, target string, maxLength int) []string {
	if maxLength < 1 || !f.graph.HasNode(source) || !f.graph.HasNode(target) {
		return nil
	}
	if source == target {
		return []string{source}
	}

	type entry struct {
		node string
		path []string
	}
	visited := map[string]struct{}{source: {}}
	queue := []entry{{node: source, path: []string{source}}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if len(cur.path) >= maxLength {
			continue
		}
		for _, nb := range f.graph.Neighbors(cur.node) {
			if _, ok := visited[nb]; ok {
				continue
			}
			path := append(append([]string{}, cur.path...), nb)
			if nb == target {
				return path
			}
			visited[nb] = struct{}{}
			queue = append(queue, entry{node: nb, path: path})
		}
	}
	return nil
}

// FindShortestPaths computes pairwise shortest paths among the given nodes.
// When three or more nodes are given it additionally searches for paths that
// pass through more than one target simultaneously, to surface hub-like
// connecting concepts. Duplicate node sequences are collapsed; the input
// order of pairs determines output order.
func (f *Finder) FindShortestPaths(nodes []string, maxLength int) [][]string {
	var results [][]string
	seen := make(map[string]struct{})

	record := func(path []string) {
		if path == nil {
			return
		}
		key := pathKey(path)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		results = append(results, path)
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			record(f.FindPath(nodes[i], nodes[j], maxLength))
		}
	}

	if len(nodes) >= 3 {
		for _, path := range f.findMultiTargetPaths(nodes, maxLength) {
			record(path)
		}
	}
	return results
}

// findMultiTargetPaths searches, from each given node, for paths that visit
// more than one of the other given nodes. The BFS tracks which targets each
// branch has collected so far.
func (f *Finder) findMultiTargetPaths(nodes []string, maxLength int) [][]string {
	targets := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		targets[n] = struct{}{}
	}

	type entry struct {
		node string
		path []string
		hits int // targets other than the start visited along this branch
	}

	var results [][]string
	for _, start := range nodes {
		if !f.graph.HasNode(start) {
			continue
		}
		visited := map[string]struct{}{start: {}}
		queue := []entry{{node: start, path: []string{start}}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if len(cur.path) >= maxLength {
				continue
			}
			for _, nb := range f.graph.Neighbors(cur.node) {
				if _, ok := visited[nb]; ok {
					continue
				}
				visited[nb] = struct{}{}
				path := append(append([]string{}, cur.path...), nb)
				hits := cur.hits
				if _, ok := targets[nb]; ok {
					hits++
					if hits >= 2 {
						results = append(results, path)
					}
				}
				queue = append(queue, entry{node: nb, path: path, hits: hits})
			}
		}
	}
	return results
}

// pathKey builds a collision-free key for a node sequence.
func pathKey(path []string) string {
	key := ""
	for _, n := range path {
		key += n + "\x00"
	}
	return key
}
