package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
)

// Neo4jStore persists snapshots in a Neo4j database. Entities become
// (:Entity {name}) nodes carrying their embedding as a float list, and
// hyperedges become (:Hyperedge {id, ...}) nodes with MEMBER relationships
// to their entities, so membership stays first class for Cypher queries.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
}

// OpenNeo4jStore connects to a Neo4j instance. An empty username selects
// no authentication; an empty database selects "neo4j".
func OpenNeo4jStore(uri, username, password, database string) (*Neo4jStore, error) {
	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	client, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if database == "" {
		database = "neo4j"
	}
	return &Neo4jStore{client: client, database: database}, nil
}

// Save implements Store. The previous snapshot is replaced inside a single
// write transaction.
func (s *Neo4jStore) Save(ctx context.Context, g *hypergraph.Hypergraph, emb *embeddings.Store) error {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	entities := make([]map[string]any, 0, g.NumNodes())
	for _, node := range g.Nodes() {
		row := map[string]any{"name": node}
		if vector := emb.Get(node); vector != nil {
			row["embedding"] = toFloat64s(vector)
		}
		entities = append(entities, row)
	}

	edges := make([]map[string]any, 0, g.NumEdges())
	for _, id := range g.Edges() {
		row := map[string]any{
			"id":      id,
			"members": g.EdgeNodes(id),
		}
		if meta, ok := g.Meta(id); ok {
			row["relation"] = meta.Relation
			row["chunk_id"] = meta.ChunkID
			row["sources"] = meta.Sources
			row["targets"] = meta.Targets
		}
		edges = append(edges, row)
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MATCH (n) WHERE n:Entity OR n:Hyperedge
			DETACH DELETE n
		`, nil); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
			UNWIND $entities AS row
			CREATE (n:Entity {name: row.name})
			SET n.embedding = row.embedding
		`, map[string]any{"entities": entities}); err != nil {
			return nil, err
		}

		if _, err := tx.Run(ctx, `
			UNWIND $edges AS row
			CREATE (e:Hyperedge {id: row.id})
			SET e.relation = row.relation,
			    e.chunk_id = row.chunk_id,
			    e.sources = row.sources,
			    e.targets = row.targets
			WITH e, row
			UNWIND row.members AS member
			MATCH (n:Entity {name: member})
			CREATE (e)-[:MEMBER]->(n)
		`, map[string]any{"edges": edges}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("saving snapshot to neo4j: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *Neo4jStore) Load(ctx context.Context) (*hypergraph.Hypergraph, *embeddings.Store, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	g := hypergraph.New()
	emb := embeddings.NewStore()

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (e:Hyperedge)
			OPTIONAL MATCH (e)-[:MEMBER]->(n:Entity)
			RETURN e.id AS id, e.relation AS relation, e.chunk_id AS chunk_id,
			       e.sources AS sources, e.targets AS targets,
			       collect(n.name) AS members
		`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			record := res.Record()
			id, _ := record.Get("id")
			members, _ := record.Get("members")
			meta := hypergraph.EdgeMeta{
				Relation: stringOrEmpty(record, "relation"),
				ChunkID:  stringOrEmpty(record, "chunk_id"),
				Sources:  toStrings(valueOf(record, "sources")),
				Targets:  toStrings(valueOf(record, "targets")),
			}
			g.AddEdgeWithMeta(id.(string), toStrings(members), meta)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
			MATCH (n:Entity) WHERE n.embedding IS NOT NULL
			RETURN n.name AS name, n.embedding AS embedding
		`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			record := res.Record()
			name, _ := record.Get("name")
			vector, _ := record.Get("embedding")
			if err := emb.Set(name.(string), toFloat32s(vector)); err != nil {
				return nil, err
			}
		}
		return nil, res.Err()
	})
	if err != nil {
		return nil, nil, fmt.Errorf("loading snapshot from neo4j: %w", err)
	}

	if g.NumEdges() == 0 && g.NumNodes() == 0 {
		return nil, nil, ErrNotFound
	}
	return g, emb, nil
}

// Close implements Store.
func (s *Neo4jStore) Close() error {
	return s.client.Close(context.Background())
}

func valueOf(record *neo4j.Record, key string) any {
	value, _ := record.Get(key)
	return value
}

func stringOrEmpty(record *neo4j.Record, key string) string {
	if value, ok := record.Get(key); ok {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

func toStrings(value any) []string {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toFloat64s(vector []float32) []float64 {
	out := make([]float64, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}

func toFloat32s(value any) []float32 {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]float32, len(list))
	for i, item := range list {
		if f, ok := item.(float64); ok {
			out[i] = float32(f)
		}
	}
	return out
}
