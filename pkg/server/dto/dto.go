// Package dto holds the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"
)

// MaxContentLength bounds a single document's content.
const MaxContentLength = 1 << 20

// ErrContentTooLong is returned when a document exceeds MaxContentLength.
var ErrContentTooLong = errors.New("content exceeds maximum length")

// Document is one unit of ingestion.
type Document struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content" binding:"required"`
}

// Validate performs validation on Document
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Content) == "" {
		return errors.New("content cannot be empty")
	}
	if len(d.Content) > MaxContentLength {
		return ErrContentTooLong
	}
	return nil
}

// IngestRequest asks to extract facts from documents and merge them into the
// graph.
type IngestRequest struct {
	Documents []Document `json:"documents" binding:"required"`
}

// IngestResponse acknowledges an accepted async ingestion.
type IngestResponse struct {
	ProcessID string `json:"process_id"`
	Accepted  int    `json:"accepted"`
}

// QueryRequest asks a question against the current graph.
type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

// SimplifyRequest configures a node-deduplication pass.
type SimplifyRequest struct {
	Threshold           float64  `json:"threshold,omitempty"`
	ExcludedSuffixes    []string `json:"excluded_suffixes,omitempty"`
	RecomputeEmbeddings bool     `json:"recompute_embeddings,omitempty"`
}

// SimplifyResponse reports a completed pass.
type SimplifyResponse struct {
	Merges       int `json:"merges"`
	NodesRemoved int `json:"nodes_removed"`
	EdgesRemoved int `json:"edges_removed"`
}

// NodeResponse describes one graph node.
type NodeResponse struct {
	Name      string   `json:"name"`
	Degree    int      `json:"degree"`
	Neighbors []string `json:"neighbors"`
	Edges     []string `json:"edges"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
