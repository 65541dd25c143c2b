// Package export writes merge-audit records and graph edges to Parquet files
// for offline analysis.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/simplify"
)

// ParquetWriter handles writing merge records and edges to Parquet files
type ParquetWriter struct {
	baseDir string
}

// NewParquetWriter creates a new Parquet writer
// baseDir should be the directory where parquet files will be stored
func NewParquetWriter(baseDir string) (*ParquetWriter, error) {
	dirs := []string{"merges", "edges"}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(baseDir, d), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}
	return &ParquetWriter{baseDir: baseDir}, nil
}

// ParquetMergeRecord represents the schema for a merge-audit row in Parquet
type ParquetMergeRecord struct {
	Kept          string     `parquet:"kept"`
	Removed       string     `parquet:"removed"`
	Score         float64    `parquet:"score"`
	KeptDegree    int32      `parquet:"kept_degree"`
	RemovedDegree int32      `parquet:"removed_degree"`
	CreatedAt     *time.Time `parquet:"created_at"`
}

// ParquetEdge represents the schema for a hypergraph edge in Parquet
type ParquetEdge struct {
	ID       string   `parquet:"id"`
	Relation string   `parquet:"relation"`
	ChunkID  string   `parquet:"chunk_id"`
	Members  []string `parquet:"members"`
	Sources  []string `parquet:"sources"`
	Targets  []string `parquet:"targets"`
}

// WriteMergeRecords writes a simplification pass's audit trail to Parquet
func (w *ParquetWriter) WriteMergeRecords(ctx context.Context, records []simplify.MergeRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]ParquetMergeRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, ParquetMergeRecord{
			Kept:          rec.Kept,
			Removed:       rec.Removed,
			Score:         rec.Score,
			KeptDegree:    int32(rec.KeptDegree),
			RemovedDegree: int32(rec.RemovedDegree),
			CreatedAt:     &now,
		})
	}

	filename := fmt.Sprintf("merges_%d.parquet", now.UnixNano())
	path := filepath.Join(w.baseDir, "merges", filename)

	return parquet.WriteFile(path, rows)
}

// WriteEdges writes every edge of a graph with its relation metadata to Parquet
func (w *ParquetWriter) WriteEdges(ctx context.Context, g *hypergraph.Hypergraph) error {
	if g.NumEdges() == 0 {
		return nil
	}

	rows := make([]ParquetEdge, 0, g.NumEdges())
	for _, id := range g.Edges() {
		row := ParquetEdge{
			ID:       id,
			Relation: g.RelationLabel(id),
			Members:  g.EdgeNodes(id),
		}
		if meta, ok := g.Meta(id); ok {
			row.ChunkID = meta.ChunkID
			row.Sources = meta.Sources
			row.Targets = meta.Targets
		} else if _, chunkID, ok := hypergraph.ParseLegacyEdgeID(id); ok {
			row.ChunkID = chunkID
		}
		rows = append(rows, row)
	}

	filename := fmt.Sprintf("edges_%d.parquet", time.Now().UnixNano())
	path := filepath.Join(w.baseDir, "edges", filename)

	return parquet.WriteFile(path, rows)
}

// Close implements a closer interface, currently no-op as we write file-per-call
func (w *ParquetWriter) Close() error {
	return nil
}
