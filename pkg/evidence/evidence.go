// Package evidence renders hypergraph edges and paths as natural-language
// sentences and assembles them into a token-budgeted context string for
// answer generation.
//
// Sentence sets are deduplicated and sorted lexicographically so identical
// inputs always produce identical context strings.
package evidence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/soundprediction/legame/pkg/hypergraph"
)

// TruncationMarker is appended when the budget cuts sentences off, with the
// omitted count substituted in.
const TruncationMarker = "(... and %d more)"

// charsPerToken is the approximation used to convert a token budget into a
// character budget.
const charsPerToken = 4

// EdgeSentence renders one edge as a sentence. Full structured metadata
// produces the directional "<sources> <relation> <targets>."; a relation
// label without source/target lists (legacy identifiers, partial metadata)
// is rendered non-directionally, since the sorted membership carries no
// ordering; with no label at all, a two-node edge falls back to
// "<a> is related to <b>." and larger edges to a comma-joined enumeration.
func EdgeSentence(g *hypergraph.Hypergraph, edgeID string) string {
	members := g.EdgeNodes(edgeID)
	if len(members) == 0 {
		return ""
	}

	if meta, ok := g.Meta(edgeID); ok && meta.Relation != "" &&
		len(meta.Sources) > 0 && len(meta.Targets) > 0 {
		return fmt.Sprintf("%s %s %s.",
			joinNames(meta.Sources), meta.Relation, joinNames(meta.Targets))
	}

	relation := g.RelationLabel(edgeID)

	switch {
	case len(members) == 1:
		return fmt.Sprintf("%s stands alone.", members[0])
	case relation != "" && len(members) == 2:
		return fmt.Sprintf("%s is related to %s (%s).", members[0], members[1], relation)
	case relation != "":
		return fmt.Sprintf("%s are related (%s).", joinNames(members), relation)
	case len(members) == 2:
		return fmt.Sprintf("%s is related to %s.", members[0], members[1])
	default:
		return fmt.Sprintf("%s are related.", joinNames(members))
	}
}

// GraphSentences renders every edge of a graph, deduplicated and sorted.
func GraphSentences(g *hypergraph.Hypergraph) []string {
	sentences := make([]string, 0, g.NumEdges())
	for _, id := range g.Edges() {
		if s := EdgeSentence(g, id); s != "" {
			sentences = append(sentences, s)
		}
	}
	return dedupeSorted(sentences)
}

// PathSentences renders a node path by finding, for each consecutive pair,
// the edges both nodes share, and rendering those edges. The result is
// deduplicated and sorted.
func PathSentences(g *hypergraph.Hypergraph, path []string) []string {
	var sentences []string
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(path); i++ {
		for _, id := range sharedEdges(g, path[i], path[i+1]) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if s := EdgeSentence(g, id); s != "" {
				sentences = append(sentences, s)
			}
		}
	}
	return dedupeSorted(sentences)
}

// NodeSentences renders up to maxEdges incident edges of a single node, for
// the retrieval fallback when no path connects the matched nodes.
func NodeSentences(g *hypergraph.Hypergraph, node string, maxEdges int) []string {
	edges := g.IncidentEdges(node)
	if maxEdges > 0 && len(edges) > maxEdges {
		edges = edges[:maxEdges]
	}
	sentences := make([]string, 0, len(edges))
	for _, id := range edges {
		if s := EdgeSentence(g, id); s != "" {
			sentences = append(sentences, s)
		}
	}
	return dedupeSorted(sentences)
}

// FormatContext joins sentences under an approximate token budget, with each
// sentence on its own line after the header. When the budget cuts sentences
// off, a "(... and N more)" marker line is appended and the omitted count is
// returned so callers can detect truncation.
func FormatContext(sentences []string, maxTokens int, header string) (string, int) {
	sentences = dedupeSorted(sentences)

	var b strings.Builder
	budget := maxTokens * charsPerToken
	if header != "" {
		b.WriteString(header)
		b.WriteString("\n")
	}

	included := 0
	for _, s := range sentences {
		if maxTokens > 0 && b.Len()+len(s)+1 > budget {
			break
		}
		b.WriteString(s)
		b.WriteString("\n")
		included++
	}

	omitted := len(sentences) - included
	if omitted > 0 {
		b.WriteString(fmt.Sprintf(TruncationMarker, omitted))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), omitted
}

// sharedEdges returns the ids of edges containing both nodes, sorted.
func sharedEdges(g *hypergraph.Hypergraph, a, b string) []string {
	inB := make(map[string]struct{})
	for _, id := range g.IncidentEdges(b) {
		inB[id] = struct{}{}
	}
	var shared []string
	for _, id := range g.IncidentEdges(a) {
		if _, ok := inB[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)
	return shared
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func dedupeSorted(sentences []string) []string {
	seen := make(map[string]struct{}, len(sentences))
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
