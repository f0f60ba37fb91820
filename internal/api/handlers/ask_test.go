package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/service"
)

type MockAskService struct {
	mock.Mock
}

func (m *MockAskService) Ask(ctx context.Context, question string) (*service.Answer, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Answer), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Search(ctx context.Context, query string, topK int, tagFilter string) ([]domain.SearchResult, error) {
	args := m.Called(ctx, query, topK, tagFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchResult), args.Error(1)
}

func TestAskHandler_Ask_Success(t *testing.T) {
	mockRAG := new(MockAskService)
	handler := NewAskHandler(mockRAG, new(MockSearchService))

	answer := &service.Answer{
		Content:         "the answer",
		Sources:         []domain.Source{{Title: "Alpha", Tier: domain.TierHigh, Relevance: 0.8}},
		AIKnowledgeUsed: false,
	}
	mockRAG.On("Ask", mock.Anything, "what is raft?").Return(answer, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte(`{"question":"what is raft?"}`)))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data service.Answer `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Data.Content)
	require.Len(t, resp.Data.Sources, 1)
	assert.Equal(t, domain.TierHigh, resp.Data.Sources[0].Tier)
}

func TestAskHandler_Ask_MissingQuestion(t *testing.T) {
	handler := NewAskHandler(new(MockAskService), new(MockSearchService))

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskHandler_Ask_UpstreamFailure(t *testing.T) {
	mockRAG := new(MockAskService)
	handler := NewAskHandler(mockRAG, new(MockSearchService))

	mockRAG.On("Ask", mock.Anything, "q").
		Return(nil, domain.WrapUpstream("completion", assert.AnError))

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte(`{"question":"q"}`)))
	w := httptest.NewRecorder()

	handler.Ask(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestAskHandler_Search_Success(t *testing.T) {
	mockSearch := new(MockSearchService)
	handler := NewAskHandler(new(MockAskService), mockSearch)

	results := []domain.SearchResult{
		{ChunkID: "kb_a_chunk0", Content: "text", Title: "Alpha", Relevance: 0.73, ItemID: "kb_a"},
	}
	mockSearch.On("Search", mock.Anything, "raft", 3, "go").Return(results, nil)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{"query":"raft","top_k":3,"tag":"go"}`)))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []SearchResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "kb_a", resp.Data[0].ItemID)
	assert.InDelta(t, 0.73, resp.Data[0].Relevance, 1e-9)
}

func TestAskHandler_Search_MissingQuery(t *testing.T) {
	handler := NewAskHandler(new(MockAskService), new(MockSearchService))

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Search(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
