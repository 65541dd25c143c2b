package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/legame"
	"github.com/soundprediction/legame/pkg/config"
	"github.com/soundprediction/legame/pkg/store"
)

// stubLLM answers keyword-extraction prompts with canned keywords and every
// other prompt with a fixed string.
type stubLLM struct {
	keywords []string
	answer   string
}

func (s *stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.answer, nil
}

func (s *stubLLM) GenerateStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	var value any
	switch {
	case strings.Contains(systemPrompt, "keyword") || strings.Contains(systemPrompt, "entities"):
		value = s.keywords
	default:
		value = []legame.Fact{
			{Sources: []string{"Marie Curie"}, Relation: "discovered", Targets: []string{"polonium"}},
		}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (s *stubLLM) Close() error { return nil }

func newTestServer(t *testing.T, llm *stubLLM) *Server {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Server.Mode = "test"

	client, err := legame.NewClient(llm, nil, nil, nil)
	require.NoError(t, err)

	st := store.NewJSONStore(filepath.Join(t.TempDir(), "snapshot.json"))
	srv, err := New(cfg, client, st, nil)
	require.NoError(t, err)
	require.NoError(t, srv.Setup())
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})
	for _, path := range []string{"/health", "/live", "/ready"} {
		w := doJSON(t, srv, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestIngestAcceptsAndBuildsGraph(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest", map[string]any{
		"documents": []map[string]string{{"id": "d1", "content": "Marie Curie discovered polonium."}},
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["process_id"])
	assert.Equal(t, float64(1), resp["accepted"])

	// Ingestion is asynchronous; poll the snapshot.
	require.Eventually(t, func() bool {
		g, _ := srv.Snapshot()
		return g.HasNode("Marie Curie")
	}, 2*time.Second, 10*time.Millisecond)

	g, _ := srv.Snapshot()
	assert.True(t, g.HasEdge("discovered_chunkd1_0"))
}

func TestIngestRejectsEmptyDocuments(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/ingest", map[string]any{
		"documents": []map[string]string{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/ingest", map[string]any{
		"documents": []map[string]string{{"id": "d1", "content": "   "}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryAnswersFromGraph(t *testing.T) {
	srv := newTestServer(t, &stubLLM{
		keywords: []string{"Marie Curie", "polonium"},
		answer:   "She discovered polonium.",
	})
	seedGraph(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/query", map[string]string{
		"query": "What did Marie Curie discover?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp legame.RAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "She discovered polonium.", resp.Answer)
	assert.Contains(t, resp.Sentences, "Marie Curie discovered polonium.")
}

func TestRetrieveReturnsEvidenceBundle(t *testing.T) {
	srv := newTestServer(t, &stubLLM{keywords: []string{"Marie Curie", "polonium"}})
	seedGraph(t, srv)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/retrieve", map[string]string{
		"query": "Marie Curie and polonium",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp legame.RAGContext
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Marie Curie", "polonium"}, resp.Keywords)
	assert.Contains(t, resp.Context, "Evidence:")
}

func TestStatsAndNode(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})
	seedGraph(t, srv)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats legame.GraphStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Nodes)
	assert.Equal(t, 1, stats.Edges)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/node/polonium", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var node map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &node))
	assert.Equal(t, "polonium", node["name"])
	assert.Equal(t, float64(1), node["degree"])

	w = doJSON(t, srv, http.MethodGet, "/api/v1/node/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQueryWithoutBodyFails(t *testing.T) {
	srv := newTestServer(t, &stubLLM{})
	w := doJSON(t, srv, http.MethodPost, "/api/v1/query", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// seedGraph ingests one fixed fact synchronously through the service layer.
func seedGraph(t *testing.T, srv *Server) {
	t.Helper()
	_, err := srv.Ingest(context.Background(), []legame.Document{
		{ID: "d1", Content: fmt.Sprintf("seed document %d", time.Now().UnixNano())},
	})
	require.NoError(t, err)
}
