package service

import (
	"context"
	"log"
	"strings"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/jobs"
	"github.com/clearhaven/lore/internal/openai"
	"github.com/clearhaven/lore/internal/telemetry"
	"github.com/clearhaven/lore/internal/websearch"
)

const webSnippetRunes = 600

// Retriever is the local retrieval collaborator of the RAG engine.
type Retriever interface {
	Search(ctx context.Context, query string, topK int, tagFilter string) ([]domain.SearchResult, error)
}

// WebSearcher is the web search/fetch collaborator.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
	Fetch(ctx context.Context, url string) (*websearch.Page, error)
}

// ProfileProvider supplies a user-preference summary for prompt
// interpolation and records asked topics. Absence of a profile yields an
// empty summary, never an error.
type ProfileProvider interface {
	Summary() string
	RecordTopic(topic string)
}

// RAGPolicy carries the tiering and fallback configuration for one engine.
type RAGPolicy struct {
	TopK               int
	HighThreshold      float64
	WebFallbackEnabled bool
	MinLocalResults    int
	WebResults         int
	AIAnswerEnabled    bool
}

// RAGService is the retrieval-and-answer orchestration engine: it classifies
// retrieval results into confidence tiers, falls back to web search when
// local knowledge is insufficient, assembles a layered context and selects a
// prompt strategy for the completion service.
type RAGService struct {
	retriever Retriever
	web       WebSearcher
	completer Completer
	profile   ProfileProvider
	gate      *jobs.Gate
	policy    RAGPolicy
}

// NewRAGService creates a RAGService. web and profile are optional; without
// a web searcher fallback is effectively disabled.
func NewRAGService(
	retriever Retriever,
	web WebSearcher,
	completer Completer,
	profile ProfileProvider,
	gate *jobs.Gate,
	policy RAGPolicy,
) *RAGService {
	if policy.TopK <= 0 {
		policy.TopK = 5
	}
	if policy.WebResults <= 0 {
		policy.WebResults = 3
	}
	return &RAGService{
		retriever: retriever,
		web:       web,
		completer: completer,
		profile:   profile,
		gate:      gate,
		policy:    policy,
	}
}

// Classify partitions results into high and low tiers by a single threshold,
// inclusive on the high side. Every local result lands in exactly one tier.
func Classify(results []domain.SearchResult, highThreshold float64) (high, low []domain.SearchResult) {
	for _, r := range results {
		if r.Relevance >= highThreshold {
			high = append(high, r)
		} else {
			low = append(low, r)
		}
	}
	return high, low
}

// ShouldFallback reports whether web search should supplement local results.
func ShouldFallback(highCount, minLocalResults int, fallbackEnabled bool) bool {
	return fallbackEnabled && highCount < minLocalResults
}

// AssembleContext builds the ordered context bundle: high-tier entries first
// (in retrieval order), then low, then web, plus a sources list carrying
// provenance for citation display independent of the prompt text.
func AssembleContext(high, low, web []domain.SearchResult) *domain.RAGContext {
	ragCtx := &domain.RAGContext{Entries: []domain.ContextEntry{}, Sources: []domain.Source{}}
	appendTier := func(tier domain.RelevanceTier, results []domain.SearchResult) {
		for _, r := range results {
			ragCtx.Entries = append(ragCtx.Entries, domain.ContextEntry{Tier: tier, Result: r})
			ragCtx.Sources = append(ragCtx.Sources, domain.Source{
				Title:          r.Title,
				Relevance:      r.Relevance,
				Tier:           tier,
				RawContentPath: r.RawContentPath,
				ItemID:         r.ItemID,
				Snippet:        truncateRunes(r.Content, 150),
				URL:            r.URL,
				FromWeb:        r.FromWeb,
			})
		}
	}
	appendTier(domain.TierHigh, high)
	appendTier(domain.TierLow, low)
	appendTier(domain.TierWeb, web)
	return ragCtx
}

// Answer is the synthesized response handed back to the caller.
type Answer struct {
	Content         string          `json:"content"`
	Sources         []domain.Source `json:"sources"`
	AIKnowledgeUsed bool            `json:"ai_knowledge_used"`
	Provider        string          `json:"provider,omitempty"`
	Model           string          `json:"model,omitempty"`
	Usage           openai.Usage    `json:"usage"`
}

// Ask runs the full pipeline for one question: retrieve, classify, fall back
// to the web if needed, assemble context, pick a prompt strategy and call the
// completion service. Fallback is always resolved before the completion call.
func (s *RAGService) Ask(ctx context.Context, question string) (*Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "RAGService.Ask", telemetry.SpanAttributes{
		Operation: "ask",
	})
	defer span.End()

	if strings.TrimSpace(question) == "" {
		return nil, domain.ErrEmptyQuery
	}

	results, err := s.retriever.Search(ctx, question, s.policy.TopK, "")
	if err != nil {
		return nil, err
	}

	high, low := Classify(results, s.policy.HighThreshold)

	var web []domain.SearchResult
	if ShouldFallback(len(high), s.policy.MinLocalResults, s.policy.WebFallbackEnabled) {
		web = s.webFallback(ctx, question)
	}

	ragCtx := AssembleContext(high, low, web)

	// The model is known to be leaning on general knowledge when there was
	// no context at all, or when high-tier results stayed below the fallback
	// minimum even though low/web context existed.
	aiKnowledgeUsed := ragCtx.Empty() || len(high) < s.policy.MinLocalResults

	state := deriveState(ragCtx.Count(domain.TierHigh), ragCtx.Count(domain.TierLow), ragCtx.Count(domain.TierWeb))
	if state == stateNoContext && !s.policy.AIAnswerEnabled {
		return &Answer{
			Content:         noKnowledgeMessage,
			Sources:         ragCtx.Sources,
			AIKnowledgeUsed: aiKnowledgeUsed,
		}, nil
	}

	systemPrompt := buildSystemPrompt(state, renderContext(ragCtx.Entries), s.profileSummary())

	var completion *openai.Completion
	err = s.gate.Do(ctx, jobs.CallCompletion, func(ctx context.Context) error {
		var gerr error
		completion, gerr = s.completer.Complete(ctx, []openai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		})
		return gerr
	})
	if err != nil {
		span.SetError(err)
		return nil, domain.WrapUpstream("completion", err)
	}

	s.recordTopic(question)

	return &Answer{
		Content:         completion.Content,
		Sources:         ragCtx.Sources,
		AIKnowledgeUsed: aiKnowledgeUsed,
		Provider:        completion.Provider,
		Model:           completion.Model,
		Usage:           completion.Usage,
	}, nil
}

// webFallback queries the web searcher and wraps each hit as a synthetic
// web-tier result with relevance 0. Any failure here is logged and the
// pipeline proceeds with whatever local tiers exist.
func (s *RAGService) webFallback(ctx context.Context, query string) []domain.SearchResult {
	if s.web == nil {
		return nil
	}

	var hits []websearch.Result
	err := s.gate.Do(ctx, jobs.CallWeb, func(ctx context.Context) error {
		var gerr error
		hits, gerr = s.web.Search(ctx, query, s.policy.WebResults)
		return gerr
	})
	if err != nil {
		log.Printf("web fallback failed, continuing with local context: %v", err)
		telemetry.AddBreadcrumb(ctx, "rag", "web fallback failed: "+err.Error())
		return nil
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		snippet := hit.Snippet
		var page *websearch.Page
		err := s.gate.Do(ctx, jobs.CallWeb, func(ctx context.Context) error {
			var gerr error
			page, gerr = s.web.Fetch(ctx, hit.URL)
			return gerr
		})
		if err == nil && page != nil && page.Content != "" {
			snippet = page.Content
		}
		results = append(results, domain.SearchResult{
			Title:   hit.Title,
			Content: truncateRunes(snippet, webSnippetRunes),
			URL:     hit.URL,
			FromWeb: true,
		})
	}
	return results
}

func (s *RAGService) profileSummary() string {
	if s.profile == nil {
		return ""
	}
	return s.profile.Summary()
}

func (s *RAGService) recordTopic(question string) {
	if s.profile == nil {
		return
	}
	s.profile.RecordTopic(truncateRunes(question, 60))
}
