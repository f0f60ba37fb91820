package domain

// RelevanceTier classifies a retrieval result as high-confidence local,
// low-confidence local, or web-sourced.
type RelevanceTier string

const (
	TierHigh RelevanceTier = "high"
	TierLow  RelevanceTier = "low"
	TierWeb  RelevanceTier = "web"
)

// SearchResult is a scored retrieval record normalized from the index's
// native distance metric, or a synthetic web-sourced record.
type SearchResult struct {
	ChunkID        string
	Content        string
	Title          string
	Tags           []string
	Source         string
	Relevance      float64
	ItemID         string
	RawContentPath string
	URL            string
	FromWeb        bool
}

// Source describes where a piece of answer context came from. The sources
// list is returned to the caller for citation display, independent of the
// prompt text built from the same results.
type Source struct {
	Title          string        `json:"title"`
	Relevance      float64       `json:"relevance"`
	Tier           RelevanceTier `json:"tier"`
	RawContentPath string        `json:"raw_content_path,omitempty"`
	ItemID         string        `json:"item_id,omitempty"`
	Snippet        string        `json:"snippet"`
	URL            string        `json:"url,omitempty"`
	FromWeb        bool          `json:"from_web"`
}

// ContextEntry pairs a retrieval result with the tier it was classified into.
type ContextEntry struct {
	Tier   RelevanceTier
	Result SearchResult
}

// RAGContext is the ordered context bundle handed to the answer synthesizer:
// high-tier entries first, then low, then web, plus the derived sources list.
type RAGContext struct {
	Entries []ContextEntry
	Sources []Source
}

// Count returns the number of entries in the given tier.
func (c *RAGContext) Count(tier RelevanceTier) int {
	n := 0
	for _, e := range c.Entries {
		if e.Tier == tier {
			n++
		}
	}
	return n
}

// Empty reports whether the bundle carries no context at all.
func (c *RAGContext) Empty() bool {
	return len(c.Entries) == 0
}
