package service

import (
	"context"
	"strings"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/index"
	"github.com/clearhaven/lore/internal/jobs"
	"github.com/clearhaven/lore/internal/telemetry"
)

// SearchService issues semantic queries against the index and normalizes
// native distances into relevance scores.
type SearchService struct {
	index SemanticIndex
	gate  *jobs.Gate
}

func NewSearchService(idx SemanticIndex, gate *jobs.Gate) *SearchService {
	return &SearchService{index: idx, gate: gate}
}

// Search returns up to topK results ranked by relevance. Relevance is
// 1 - distance; for cosine distance this lands in [0,1] for non-negative
// embeddings and is not clamped. An empty index yields an empty sequence,
// not an error.
func (s *SearchService) Search(ctx context.Context, query string, topK int, tagFilter string) ([]domain.SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = 5
	}

	var records []index.Record
	err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
		var gerr error
		records, gerr = s.index.Query(ctx, query, topK, index.Filter{Tag: tagFilter})
		return gerr
	})
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, len(records))
	for i, r := range records {
		results[i] = domain.SearchResult{
			ChunkID:        r.ID,
			Content:        r.Content,
			Title:          r.Metadata.Title,
			Tags:           r.Metadata.Tags,
			Source:         r.Metadata.Source,
			Relevance:      1 - r.Distance,
			ItemID:         r.Metadata.ItemID,
			RawContentPath: r.Metadata.RawContentPath,
		}
	}
	return results, nil
}
