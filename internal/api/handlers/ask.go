package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clearhaven/lore/internal/api"
	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/service"
)

type AskService interface {
	Ask(ctx context.Context, question string) (*service.Answer, error)
}

type SearchService interface {
	Search(ctx context.Context, query string, topK int, tagFilter string) ([]domain.SearchResult, error)
}

type AskHandler struct {
	rag    AskService
	search SearchService
}

func NewAskHandler(rag AskService, search SearchService) *AskHandler {
	return &AskHandler{rag: rag, search: search}
}

type AskRequest struct {
	Question string `json:"question"`
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
	Tag   string `json:"tag"`
}

type SearchResultResponse struct {
	ChunkID        string   `json:"chunk_id"`
	Content        string   `json:"content"`
	Title          string   `json:"title"`
	Tags           []string `json:"tags"`
	Source         string   `json:"source"`
	Relevance      float64  `json:"relevance"`
	ItemID         string   `json:"item_id"`
	RawContentPath string   `json:"raw_content_path,omitempty"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := h.rag.Ask(r.Context(), req.Question)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, answer)
}

func (h *AskHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.search.Search(r.Context(), req.Query, req.TopK, req.Tag)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]SearchResultResponse, len(results))
	for i, result := range results {
		resp[i] = SearchResultResponse{
			ChunkID:        result.ChunkID,
			Content:        result.Content,
			Title:          result.Title,
			Tags:           result.Tags,
			Source:         result.Source,
			Relevance:      result.Relevance,
			ItemID:         result.ItemID,
			RawContentPath: result.RawContentPath,
		}
	}
	api.Success(w, http.StatusOK, resp)
}
