package domain

import (
	"fmt"
	"strings"
	"time"
)

// ItemIDPrefix is the prefix of every generated knowledge item id.
const ItemIDPrefix = "kb_"

// KnowledgeItem represents a logical knowledge entry (one imported document
// or note) identified by a stable id and composed of one or more chunks.
type KnowledgeItem struct {
	ID             string
	Title          string
	Tags           []string
	Source         string
	RawContentPath string
	ChunkCount     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Chunk is a bounded, possibly overlapping segment of an item's text, the
// unit actually indexed for retrieval. Chunks are created in a batch when an
// item is added or its content replaced; they are never mutated individually.
type Chunk struct {
	ID       string
	Text     string
	Ordinal  int
	Metadata ChunkMetadata
}

// ChunkMetadata is the denormalized snapshot stored alongside every chunk so
// retrieval results can be displayed without a join. Field names form a
// stable contract for downstream tooling.
type ChunkMetadata struct {
	Title          string
	Tags           []string
	Source         string
	ItemID         string
	ChunkIndex     int
	TotalChunks    int
	RawContentPath string
}

// ChunkID derives a chunk id from the parent item id and the chunk ordinal.
func ChunkID(itemID string, ordinal int) string {
	return fmt.Sprintf("%s_chunk%d", itemID, ordinal)
}

// JoinTags renders a tag set in the comma-joined form persisted with chunks.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// SplitTags parses a comma-joined tag string, dropping empty entries.
func SplitTags(joined string) []string {
	if strings.TrimSpace(joined) == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ValidateItemID rejects malformed identifiers before any external call.
// Item ids end up in index filters and file names, so they must be non-empty
// and free of whitespace and path separators.
func ValidateItemID(id string) error {
	if id == "" {
		return ErrInvalidItemID
	}
	if strings.ContainsAny(id, " \t\n/\\") {
		return ErrInvalidItemID
	}
	return nil
}

// Validate checks a metadata snapshot at the write boundary.
func (m ChunkMetadata) Validate() error {
	if err := ValidateItemID(m.ItemID); err != nil {
		return err
	}
	if m.ChunkIndex < 0 {
		return NewDomainError(ErrCodeValidation, "chunk index cannot be negative")
	}
	if m.TotalChunks <= m.ChunkIndex {
		return NewDomainError(ErrCodeValidation, "total chunks must exceed chunk index")
	}
	return nil
}
