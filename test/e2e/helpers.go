//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clearhaven/lore/internal/api/handlers"
	"github.com/clearhaven/lore/internal/index"
	"github.com/clearhaven/lore/internal/jobs"
	"github.com/clearhaven/lore/internal/openai"
	"github.com/clearhaven/lore/internal/profile"
	"github.com/clearhaven/lore/internal/server"
	"github.com/clearhaven/lore/internal/service"
	"github.com/clearhaven/lore/internal/storage"
	"github.com/clearhaven/lore/internal/testutil"
)

// stubEmbedder gives deterministic byte-histogram vectors so search ranking
// is stable without an embedding API.
type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 1024)
		for _, b := range []byte(text) {
			v[int(b)]++
		}
		out[i] = v
	}
	return out, nil
}

// stubCompleter answers with a canned completion so the ask pipeline runs
// end to end without an LLM endpoint.
type stubCompleter struct{}

func (stubCompleter) Complete(ctx context.Context, messages []openai.Message) (*openai.Completion, error) {
	return &openai.Completion{
		Content:  "stub answer",
		Provider: "test",
		Model:    "test-model",
	}, nil
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	HTTPClient *http.Client
}

// SetupE2EEnv starts a pgvector container and an in-process API server
// backed by a filesystem content store.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../internal/database/migrations")

	semanticIndex := index.NewPgVector(pool, stubEmbedder{})
	store := storage.NewFileStore(t.TempDir())
	gate := jobs.NewGate(4)
	profileStore := profile.NewStore(t.TempDir())

	knowledgeSvc := service.NewKnowledgeService(
		semanticIndex, store, nil, nil, gate,
		service.ChunkingConfig{ChunkSize: 200, ChunkOverlap: 40, UpsertBatch: 10},
	)
	searchSvc := service.NewSearchService(semanticIndex, gate)
	ragSvc := service.NewRAGService(
		searchSvc, nil, stubCompleter{}, profileStore, gate,
		service.RAGPolicy{
			TopK:            5,
			HighThreshold:   0.6,
			MinLocalResults: 1,
			AIAnswerEnabled: true,
		},
	)

	router := server.NewRouter(server.RouterConfig{
		KnowledgeHandler: handlers.NewKnowledgeHandler(knowledgeSvc),
		AskHandler:       handlers.NewAskHandler(ragSvc, searchSvc),
		ProfileHandler:   handlers.NewProfileHandler(profileStore),
	})

	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Server:     srv,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup tears down the server and containers
func (env *E2ETestEnv) Cleanup() {
	env.Server.Close()
	env.Pool.Close()
	env.PostgresC.Terminate(env.Ctx)
}

// APIResponse mirrors the standard response envelope
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request against the test server
func (env *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return env.do(http.MethodGet, path, nil)
}

// Post performs a POST request against the test server
func (env *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return env.do(http.MethodPost, path, body)
}

// Put performs a PUT request against the test server
func (env *E2ETestEnv) Put(path string, body interface{}) (*APIResponse, error) {
	return env.do(http.MethodPut, path, body)
}

// Delete performs a DELETE request against the test server
func (env *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return env.do(http.MethodDelete, path, nil)
}

func (env *E2ETestEnv) do(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (%d): %s", resp.StatusCode, string(respBody))
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}
