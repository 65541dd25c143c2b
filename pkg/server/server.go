// Package server exposes the knowledge base over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/embeddings"
	"github.com/soundprediction/legame/pkg/hypergraph"
	"github.com/soundprediction/legame/pkg/server/dto"
	"github.com/soundprediction/legame/pkg/server/handlers"
	"github.com/soundprediction/legame/pkg/simplify"
	"github.com/soundprediction/legame/pkg/store"
)

// Server owns the in-memory graph snapshot and serves it over HTTP. All
// access to the snapshot goes through the mutex; writers (ingest, simplify)
// replace or extend it and persist the result.
type Server struct {
	config *config.Config
	client *legame.Client
	store  store.Store
	logger *slog.Logger

	mu    sync.RWMutex
	graph *hypergraph.Hypergraph
	emb   *embeddings.Store

	router     *gin.Engine
	httpServer *http.Server
}

// New creates a server and loads the persisted snapshot if one exists.
func New(cfg *config.Config, client *legame.Client, st store.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	g, emb, err := st.Load(context.Background())
	if errors.Is(err, store.ErrNotFound) {
		g, emb = hypergraph.New(), embeddings.NewStore()
		logger.Info("no persisted snapshot, starting empty")
	} else if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	} else {
		logger.Info("loaded snapshot", "nodes", g.NumNodes(), "edges", g.NumEdges())
	}

	return &Server{
		config: cfg,
		client: client,
		store:  st,
		logger: logger,
		graph:  g,
		emb:    emb,
	}, nil
}

// Setup initializes the router and routes.
func (s *Server) Setup() error {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()
	return nil
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler()
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/live", healthHandler.Live)
	s.router.GET("/ready", healthHandler.Ready)

	graphHandler := handlers.NewGraphHandler(s, s.logger)
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/ingest", graphHandler.Ingest)
		v1.POST("/query", graphHandler.Query)
		v1.POST("/retrieve", graphHandler.Retrieve)
		v1.POST("/simplify", graphHandler.Simplify)
		v1.GET("/stats", graphHandler.Stats)
		v1.GET("/node/:name", graphHandler.Node)
	}
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	if s.router == nil {
		if err := s.Setup(); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	s.logger.Info("starting server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("stopping server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the configured engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Snapshot returns the current graph and embeddings under a read lock.
func (s *Server) Snapshot() (*hypergraph.Hypergraph, *embeddings.Store) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph, s.emb
}

// Ingest extracts facts from the documents, merges the resulting fragment
// into the live graph and persists the snapshot. New nodes are embedded when
// an embedder is configured.
func (s *Server) Ingest(ctx context.Context, docs []legame.Document) (*legame.BuildResult, error) {
	result, err := s.client.AddDocuments(ctx, docs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph.UnionInPlace(result.Graph)
	if s.client.GetEmbedder() != nil {
		if _, err := s.client.EmbedNodes(ctx, s.graph, s.emb); err != nil {
			s.logger.Warn("embedding new nodes failed", "error", err)
		}
	}
	if err := s.store.Save(ctx, s.graph, s.emb); err != nil {
		return nil, fmt.Errorf("persisting snapshot: %w", err)
	}
	return result, nil
}

// Ask answers a question against the current snapshot.
func (s *Server) Ask(ctx context.Context, query string) (*legame.RAGResponse, error) {
	g, emb := s.Snapshot()
	return s.client.Answer(ctx, g, emb, query)
}

// RetrieveEvidence assembles the evidence bundle without answer generation.
func (s *Server) RetrieveEvidence(ctx context.Context, query string) (*legame.RAGContext, error) {
	g, emb := s.Snapshot()
	return s.client.Retrieve(ctx, g, emb, query)
}

// SimplifyGraph runs a deduplication pass, swaps in the rewritten snapshot
// and persists it.
func (s *Server) SimplifyGraph(ctx context.Context, opts simplify.Options) (*simplify.Result, error) {
	if opts.Threshold == 0 {
		opts.Threshold = s.config.Simplify.Threshold
	}
	if len(opts.ExcludedSuffixes) == 0 {
		opts.ExcludedSuffixes = s.config.Simplify.ExcludedSuffixes
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.client.Simplify(ctx, s.graph, s.emb, opts)
	if err != nil {
		return nil, err
	}
	s.graph = result.Graph
	s.emb = result.Embeddings
	if err := s.store.Save(ctx, s.graph, s.emb); err != nil {
		return nil, fmt.Errorf("persisting snapshot: %w", err)
	}
	return result, nil
}

// GraphStats summarizes the current snapshot.
func (s *Server) GraphStats() legame.GraphStats {
	g, _ := s.Snapshot()
	return legame.Stats(g)
}

// NodeInfo describes one node of the current snapshot.
func (s *Server) NodeInfo(name string) (*dto.NodeResponse, bool) {
	g, _ := s.Snapshot()
	if !g.HasNode(name) {
		return nil, false
	}
	return &dto.NodeResponse{
		Name:      name,
		Degree:    g.Degree(name),
		Neighbors: g.Neighbors(name),
		Edges:     g.IncidentEdges(name),
	}, true
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
