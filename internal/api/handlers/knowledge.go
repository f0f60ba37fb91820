package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clearhaven/lore/internal/api"
	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/service"
	"github.com/go-chi/chi/v5"
)

type KnowledgeService interface {
	Add(ctx context.Context, input service.AddInput) (*service.AddOutput, error)
	Update(ctx context.Context, input service.UpdateInput) (*service.UpdateOutput, error)
	Delete(ctx context.Context, id string) (*service.DeleteOutput, error)
	List(ctx context.Context, tag string, limit int) ([]service.ItemSummary, error)
	Get(ctx context.Context, id string) (*service.GetOutput, error)
	GetStats(ctx context.Context) (*service.Stats, error)
	ImportDocument(ctx context.Context, input service.ImportInput) (*service.AddOutput, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type CreateItemRequest struct {
	Content string   `json:"content"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Source  string   `json:"source"`
}

type UpdateItemRequest struct {
	Content string   `json:"content"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
}

type ImportItemRequest struct {
	Source string   `json:"source"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags"`
}

type ItemCreatedResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	ChunkCount int      `json:"chunk_count"`
}

type ItemUpdatedResponse struct {
	ID            string `json:"id"`
	ChunkCount    int    `json:"chunk_count"`
	ContentUpdate bool   `json:"content_update"`
}

type ItemDeletedResponse struct {
	ID            string `json:"id"`
	Found         bool   `json:"found"`
	ChunksRemoved int    `json:"chunks_removed"`
}

type ItemSummaryResponse struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	Source     string   `json:"source"`
	ChunkCount int      `json:"chunk_count"`
	Preview    string   `json:"preview"`
}

type ItemResponse struct {
	ID         string             `json:"id"`
	Content    string             `json:"content"`
	Attachment *domain.Attachment `json:"attachment,omitempty"`
}

func addOutputToResponse(out *service.AddOutput) *ItemCreatedResponse {
	return &ItemCreatedResponse{
		ID:         out.ID,
		Title:      out.Title,
		Tags:       out.Tags,
		ChunkCount: out.ChunkCount,
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" {
		api.Error(w, http.StatusBadRequest, "content is required")
		return
	}

	out, err := h.svc.Add(r.Context(), service.AddInput{
		Content: req.Content,
		Title:   req.Title,
		Tags:    req.Tags,
		Source:  req.Source,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, addOutputToResponse(out))
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Content == "" && req.Title == "" && req.Tags == nil {
		api.Error(w, http.StatusBadRequest, "nothing to update")
		return
	}

	out, err := h.svc.Update(r.Context(), service.UpdateInput{
		ID:      id,
		Content: req.Content,
		Title:   req.Title,
		Tags:    req.Tags,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ItemUpdatedResponse{
		ID:            out.ID,
		ChunkCount:    out.ChunkCount,
		ContentUpdate: out.ContentUpdate,
	})
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	out, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ItemDeletedResponse{
		ID:            out.ID,
		Found:         out.Found,
		ChunksRemoved: out.ChunksRemoved,
	})
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	items, err := h.svc.List(r.Context(), tag, limit)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]ItemSummaryResponse, len(items))
	for i, item := range items {
		resp[i] = ItemSummaryResponse{
			ID:         item.ID,
			Title:      item.Title,
			Tags:       item.Tags,
			Source:     item.Source,
			ChunkCount: item.ChunkCount,
			Preview:    item.Preview,
		}
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	out, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, &ItemResponse{
		ID:         out.ID,
		Content:    out.Content,
		Attachment: out.Attachment,
	})
}

func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}

func (h *KnowledgeHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Source == "" {
		api.Error(w, http.StatusBadRequest, "source is required")
		return
	}

	out, err := h.svc.ImportDocument(r.Context(), service.ImportInput{
		Source: req.Source,
		Title:  req.Title,
		Tags:   req.Tags,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, addOutputToResponse(out))
}
