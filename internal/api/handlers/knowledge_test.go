package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/service"
)

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) Add(ctx context.Context, input service.AddInput) (*service.AddOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AddOutput), args.Error(1)
}

func (m *MockKnowledgeService) Update(ctx context.Context, input service.UpdateInput) (*service.UpdateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UpdateOutput), args.Error(1)
}

func (m *MockKnowledgeService) Delete(ctx context.Context, id string) (*service.DeleteOutput, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeleteOutput), args.Error(1)
}

func (m *MockKnowledgeService) List(ctx context.Context, tag string, limit int) ([]service.ItemSummary, error) {
	args := m.Called(ctx, tag, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ItemSummary), args.Error(1)
}

func (m *MockKnowledgeService) Get(ctx context.Context, id string) (*service.GetOutput, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GetOutput), args.Error(1)
}

func (m *MockKnowledgeService) GetStats(ctx context.Context) (*service.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Stats), args.Error(1)
}

func (m *MockKnowledgeService) ImportDocument(ctx context.Context, input service.ImportInput) (*service.AddOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AddOutput), args.Error(1)
}

// requestWithID routes a request through chi so URL params resolve.
func requestWithID(id string, req *http.Request) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestKnowledgeHandler_Create_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Add", mock.Anything, mock.MatchedBy(func(input service.AddInput) bool {
		return input.Content == "note body" && input.Title == "Note"
	})).Return(&service.AddOutput{ID: "kb_a1b2c3d4", Title: "Note", Tags: []string{"go"}, ChunkCount: 1}, nil)

	body := `{"content":"note body","title":"Note","tags":["go"]}`
	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data ItemCreatedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "kb_a1b2c3d4", resp.Data.ID)
	assert.Equal(t, 1, resp.Data.ChunkCount)
}

func TestKnowledgeHandler_Create_MissingContent(t *testing.T) {
	handler := NewKnowledgeHandler(new(MockKnowledgeService))

	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(`{"title":"x"}`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKnowledgeHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewKnowledgeHandler(new(MockKnowledgeService))

	req := httptest.NewRequest(http.MethodPost, "/knowledge", bytes.NewReader([]byte(`{not json`)))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKnowledgeHandler_Update_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Update", mock.Anything, service.UpdateInput{ID: "kb_a1b2c3d4", Title: "Renamed"}).
		Return(&service.UpdateOutput{ID: "kb_a1b2c3d4", ChunkCount: 2}, nil)

	req := httptest.NewRequest(http.MethodPut, "/knowledge/kb_a1b2c3d4", bytes.NewReader([]byte(`{"title":"Renamed"}`)))
	w := httptest.NewRecorder()

	handler.Update(w, requestWithID("kb_a1b2c3d4", req))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestKnowledgeHandler_Update_NothingToUpdate(t *testing.T) {
	handler := NewKnowledgeHandler(new(MockKnowledgeService))

	req := httptest.NewRequest(http.MethodPut, "/knowledge/kb_a1b2c3d4", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	handler.Update(w, requestWithID("kb_a1b2c3d4", req))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKnowledgeHandler_Delete_NotFoundIsOK(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Delete", mock.Anything, "kb_missing0").
		Return(&service.DeleteOutput{ID: "kb_missing0", Found: false}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/knowledge/kb_missing0", nil)
	w := httptest.NewRecorder()

	handler.Delete(w, requestWithID("kb_missing0", req))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data ItemDeletedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Found)
}

func TestKnowledgeHandler_List_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	items := []service.ItemSummary{
		{ID: "kb_a", Title: "Alpha", ChunkCount: 2, Preview: "alpha..."},
	}
	mockSvc.On("List", mock.Anything, "go", 5).Return(items, nil)

	req := httptest.NewRequest(http.MethodGet, "/knowledge?tag=go&limit=5", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []ItemSummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "kb_a", resp.Data[0].ID)
}

func TestKnowledgeHandler_List_InvalidLimit(t *testing.T) {
	handler := NewKnowledgeHandler(new(MockKnowledgeService))

	req := httptest.NewRequest(http.MethodGet, "/knowledge?limit=nope", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKnowledgeHandler_Get_NotFound(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("Get", mock.Anything, "kb_missing0").Return(nil, domain.ErrItemNotFound)

	req := httptest.NewRequest(http.MethodGet, "/knowledge/kb_missing0", nil)
	w := httptest.NewRecorder()

	handler.Get(w, requestWithID("kb_missing0", req))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestKnowledgeHandler_Stats(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("GetStats", mock.Anything).Return(&service.Stats{Items: 4, Chunks: 17}, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	w := httptest.NewRecorder()

	handler.Stats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chunks":17`)
}

func TestKnowledgeHandler_Import_Success(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("ImportDocument", mock.Anything, service.ImportInput{Source: "https://example.com"}).
		Return(&service.AddOutput{ID: "kb_a1b2c3d4", Title: "Example", ChunkCount: 3}, nil)

	req := httptest.NewRequest(http.MethodPost, "/knowledge/import", bytes.NewReader([]byte(`{"source":"https://example.com"}`)))
	w := httptest.NewRecorder()

	handler.Import(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestKnowledgeHandler_Import_Unsupported(t *testing.T) {
	mockSvc := new(MockKnowledgeService)
	handler := NewKnowledgeHandler(mockSvc)

	mockSvc.On("ImportDocument", mock.Anything, mock.Anything).
		Return(nil, domain.ErrUnsupportedDocument)

	req := httptest.NewRequest(http.MethodPost, "/knowledge/import", bytes.NewReader([]byte(`{"source":"/tmp/x.xyz"}`)))
	w := httptest.NewRecorder()

	handler.Import(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
