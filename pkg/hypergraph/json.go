package hypergraph

import (
	"encoding/json"
	"regexp"
	"strings"
)

// graphJSON is the persisted form. The "incidence_dict" key with sorted node
// arrays is a compatibility surface with third-party hypergraph tooling and
// must remain stable; "edge_meta" is our structured extension and is optional.
type graphJSON struct {
	IncidenceDict map[string][]string `json:"incidence_dict"`
	EdgeMeta      map[string]EdgeMeta `json:"edge_meta,omitempty"`
}

// MarshalJSON serializes the graph with sorted node arrays for deterministic
// diffs.
func (g *Hypergraph) MarshalJSON() ([]byte, error) {
	out := graphJSON{
		IncidenceDict: make(map[string][]string, len(g.incidence)),
	}
	for id := range g.incidence {
		out.IncidenceDict[id] = g.EdgeNodes(id)
	}
	if len(g.meta) > 0 {
		out.EdgeMeta = g.meta
	}
	return json.Marshal(out)
}

// UnmarshalJSON loads a graph from its persisted form.
func (g *Hypergraph) UnmarshalJSON(data []byte) error {
	var in graphJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*g = *FromIncidence(in.IncidenceDict)
	for id, m := range in.EdgeMeta {
		g.SetMeta(id, m)
	}
	return nil
}

// legacyEdgeID matches the historical "<relation>_chunk<id>_<n>" identifier
// convention, in which the relation name had spaces replaced by underscores.
var legacyEdgeID = regexp.MustCompile(`^(.+)_chunk([^_]+)_(\d+)$`)

// ParseLegacyEdgeID recovers the relation label and chunk id from a legacy
// edge identifier. The relation is normalized by converting underscores back
// to spaces. Returns ok=false when the id does not follow the convention.
func ParseLegacyEdgeID(id string) (relation, chunkID string, ok bool) {
	m := legacyEdgeID.FindStringSubmatch(id)
	if m == nil {
		return "", "", false
	}
	return strings.ReplaceAll(m[1], "_", " "), m[2], true
}

// RelationLabel returns the best-available relation label for an edge:
// structured metadata first, then the legacy identifier convention, then "".
func (g *Hypergraph) RelationLabel(id string) string {
	if m, ok := g.meta[id]; ok && m.Relation != "" {
		return m.Relation
	}
	if relation, _, ok := ParseLegacyEdgeID(id); ok {
		return relation
	}
	return ""
}
