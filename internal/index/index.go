// Package index implements the semantic index collaborator: chunk records
// are embedded internally on write and queried by vector distance. Callers
// never see vectors, only records and distances.
package index

import "github.com/clearhaven/lore/internal/domain"

// Record is one indexed chunk. Distance is populated on query results only;
// it is the index's native cosine distance, not a relevance score.
type Record struct {
	ID       string
	Content  string
	Metadata domain.ChunkMetadata
	Distance float64
}

// Filter restricts get/query operations. Zero values mean no restriction.
type Filter struct {
	ItemID string
	Tag    string
}
