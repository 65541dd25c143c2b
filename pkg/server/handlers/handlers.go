// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/simplify"
)

// KnowledgeService is the surface the handlers need from the server.
type KnowledgeService interface {
	Ingest(ctx context.Context, docs []legame.Document) (*legame.BuildResult, error)
	Ask(ctx context.Context, query string) (*legame.RAGResponse, error)
	RetrieveEvidence(ctx context.Context, query string) (*legame.RAGContext, error)
	SimplifyGraph(ctx context.Context, opts simplify.Options) (*simplify.Result, error)
	GraphStats() legame.GraphStats
	NodeInfo(name string) (*dto.NodeResponse, bool)
}

// GraphHandler handles graph ingestion and query requests
type GraphHandler struct {
	service KnowledgeService
	logger  *slog.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(service KnowledgeService, logger *slog.Logger) *GraphHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHandler{service: service, logger: logger}
}

// generateProcessID generates a unique process ID for tracking async operations
func generateProcessID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("proc_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("proc_%s", hex.EncodeToString(bytes))
}

func writeError(c *gin.Context, status int, errCode, message string) {
	c.JSON(status, dto.ErrorResponse{Error: errCode, Message: message})
}

// Ingest handles POST /api/v1/ingest. Extraction runs in the background;
// the response acknowledges acceptance with a process id for log correlation.
func (h *GraphHandler) Ingest(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(c, http.StatusBadRequest, "invalid_request", "documents array cannot be empty")
		return
	}
	for i := range req.Documents {
		if err := req.Documents[i].Validate(); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_request",
				fmt.Sprintf("document %d: %v", i, err))
			return
		}
	}

	docs := make([]legame.Document, len(req.Documents))
	for i, d := range req.Documents {
		docs[i] = legame.Document{ID: d.ID, Content: d.Content}
	}

	processID := generateProcessID()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("panic in ingestion", "process_id", processID, "panic", r)
			}
		}()

		result, err := h.service.Ingest(context.Background(), docs)
		if err != nil {
			h.logger.Error("ingestion failed", "process_id", processID, "error", err)
			return
		}
		h.logger.Info("ingestion complete",
			"process_id", processID,
			"documents", result.Documents,
			"failed", len(result.Failed),
			"facts", result.Facts)
	}()

	c.JSON(http.StatusAccepted, dto.IngestResponse{
		ProcessID: processID,
		Accepted:  len(docs),
	})
}

// Query handles POST /api/v1/query
func (h *GraphHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	response, err := h.service.Ask(c.Request.Context(), req.Query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, legame.ErrEmbeddingFailed) || errors.Is(err, legame.ErrGenerationFailed) {
			status = http.StatusBadGateway
		}
		writeError(c, status, "query_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, response)
}

// Retrieve handles POST /api/v1/retrieve, returning the evidence bundle
// without answer generation for transparency and debugging.
func (h *GraphHandler) Retrieve(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.service.RetrieveEvidence(c.Request.Context(), req.Query)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, legame.ErrEmbeddingFailed) || errors.Is(err, legame.ErrGenerationFailed) {
			status = http.StatusBadGateway
		}
		writeError(c, status, "retrieve_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// Simplify handles POST /api/v1/simplify
func (h *GraphHandler) Simplify(c *gin.Context) {
	var req dto.SimplifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.service.SimplifyGraph(c.Request.Context(), simplify.Options{
		Threshold:           req.Threshold,
		ExcludedSuffixes:    req.ExcludedSuffixes,
		RecomputeEmbeddings: req.RecomputeEmbeddings,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "simplify_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.SimplifyResponse{
		Merges:       result.Merges,
		NodesRemoved: result.NodesRemoved,
		EdgesRemoved: result.EdgesRemoved,
	})
}

// Stats handles GET /api/v1/stats
func (h *GraphHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GraphStats())
}

// Node handles GET /api/v1/node/:name
func (h *GraphHandler) Node(c *gin.Context) {
	name := c.Param("name")
	info, ok := h.service.NodeInfo(name)
	if !ok {
		writeError(c, http.StatusNotFound, "not_found", fmt.Sprintf("node %q not found", name))
		return
	}
	c.JSON(http.StatusOK, info)
}
