// Package legame builds and queries hypergraph knowledge bases for
// retrieval-augmented generation.
//
// Facts extracted from documents become hyperedges connecting arbitrary-size
// node sets. Queries are answered by matching keywords to nodes, finding
// bounded paths between the matches, and rendering the connecting edges as
// natural-language evidence for an LLM to answer from.
//
// The deterministic core (hypergraph algebra, similarity, simplification,
// path finding, context assembly) lives in the pkg subpackages and performs
// no I/O; this package wires it to the injected LLM and embedding clients.
package legame
