package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/index"
	"github.com/clearhaven/lore/internal/jobs"
	"github.com/clearhaven/lore/internal/openai"
	"github.com/clearhaven/lore/internal/parser"
	"github.com/clearhaven/lore/internal/telemetry"
)

// SemanticIndex is the index collaborator consumed by the services. Embedding
// happens inside the index and is opaque here.
type SemanticIndex interface {
	Upsert(ctx context.Context, records []index.Record) error
	Query(ctx context.Context, query string, n int, filter index.Filter) ([]index.Record, error)
	Get(ctx context.Context, filter index.Filter, limit int) ([]index.Record, error)
	DeleteByItem(ctx context.Context, itemID string) (int, error)
	UpdateMetadata(ctx context.Context, itemID, title, tags, source string) (int, error)
	Count(ctx context.Context) (int, error)
}

// ContentStore persists raw item content and original-format attachments by
// item id.
type ContentStore interface {
	SaveRaw(ctx context.Context, id string, data []byte) (string, error)
	GetRaw(ctx context.Context, id string) ([]byte, error)
	DeleteRaw(ctx context.Context, id string) error
	SaveAttachment(ctx context.Context, id, srcPath string) (string, error)
	FindAttachment(ctx context.Context, id string) (*domain.Attachment, error)
	DeleteAttachments(ctx context.Context, id string) error
}

// Completer is the completion-service collaborator.
type Completer interface {
	Complete(ctx context.Context, messages []openai.Message) (*openai.Completion, error)
}

// DocumentParser extracts text from an importable file or URL.
type DocumentParser interface {
	Parse(ctx context.Context, source string) (*parser.Document, error)
}

// IDGenerator produces candidate item id suffixes (for testing).
type IDGenerator interface {
	NewID() (string, error)
}

// RandomIDGenerator is the default generator: kb_ plus 8 hex chars.
type RandomIDGenerator struct{}

func (g *RandomIDGenerator) NewID() (string, error) {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.ItemIDPrefix + raw[:8], nil
}

// ChunkingConfig carries the chunking and batching parameters the record
// manager uses on every add/update.
type ChunkingConfig struct {
	ChunkSize    int
	ChunkOverlap int
	UpsertBatch  int
}

const (
	idGenerationAttempts = 3
	defaultUpsertBatch   = 10
	listPreviewRunes     = 100
)

// KnowledgeService owns the lifecycle of knowledge items: create, update,
// list, get, delete, document import and stats.
type KnowledgeService struct {
	index     SemanticIndex
	store     ContentStore
	completer Completer
	parsers   DocumentParser
	gate      *jobs.Gate
	idGen     IDGenerator
	chunking  ChunkingConfig
}

// NewKnowledgeService creates a KnowledgeService. completer and parsers are
// optional: without a completer, title/tag generation is skipped; without
// parsers, ImportDocument is unavailable.
func NewKnowledgeService(
	idx SemanticIndex,
	store ContentStore,
	completer Completer,
	parsers DocumentParser,
	gate *jobs.Gate,
	chunking ChunkingConfig,
) *KnowledgeService {
	if chunking.UpsertBatch <= 0 {
		chunking.UpsertBatch = defaultUpsertBatch
	}
	return &KnowledgeService{
		index:     idx,
		store:     store,
		completer: completer,
		parsers:   parsers,
		gate:      gate,
		idGen:     &RandomIDGenerator{},
		chunking:  chunking,
	}
}

// NewKnowledgeServiceWithIDGen creates a KnowledgeService with a custom id
// generator (for testing).
func NewKnowledgeServiceWithIDGen(
	idx SemanticIndex,
	store ContentStore,
	completer Completer,
	parsers DocumentParser,
	gate *jobs.Gate,
	chunking ChunkingConfig,
	idGen IDGenerator,
) *KnowledgeService {
	s := NewKnowledgeService(idx, store, completer, parsers, gate, chunking)
	s.idGen = idGen
	return s
}

// AddInput represents the input for creating a knowledge item.
type AddInput struct {
	Content string
	Title   string
	Tags    []string
	Source  string
}

// AddOutput reports the created item.
type AddOutput struct {
	ID         string
	Title      string
	Tags       []string
	ChunkCount int
}

// Add creates a new knowledge item: generates an id, persists raw content,
// chunks it and writes the chunks to the index in fixed-size sequential
// batches.
func (s *KnowledgeService) Add(ctx context.Context, input AddInput) (*AddOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Add", telemetry.SpanAttributes{
		Operation: "add",
	})
	defer span.End()

	if strings.TrimSpace(input.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	id, err := s.newItemID(ctx)
	if err != nil {
		return nil, err
	}

	title, tags, source := s.resolveMetadata(ctx, input)

	chunks, err := Split(input.Content, s.chunking.ChunkSize, s.chunking.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	rawPath, err := s.store.SaveRaw(ctx, id, renderRaw(title, tags, source, input.Content))
	if err != nil {
		return nil, err
	}

	if err := s.indexChunks(ctx, id, chunks, title, tags, source, rawPath); err != nil {
		return nil, err
	}

	return &AddOutput{ID: id, Title: title, Tags: tags, ChunkCount: len(chunks)}, nil
}

// UpdateInput represents the input for updating a knowledge item. An empty
// Content means metadata-only patch; nil Tags means keep existing tags.
type UpdateInput struct {
	ID      string
	Content string
	Title   string
	Tags    []string
}

// UpdateOutput reports what the update touched.
type UpdateOutput struct {
	ID            string
	ChunkCount    int
	ContentUpdate bool
}

// Update either replaces an item's content wholesale (re-chunk and re-index
// under the same id) or patches the metadata snapshot on its existing chunks
// without re-embedding.
func (s *KnowledgeService) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Update", telemetry.SpanAttributes{
		ItemID:    input.ID,
		Operation: "update",
	})
	defer span.End()

	if err := domain.ValidateItemID(input.ID); err != nil {
		return nil, err
	}

	existing, err := s.itemSnapshot(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	title := existing.Title
	if input.Title != "" {
		title = input.Title
	}
	tags := existing.Tags
	if input.Tags != nil {
		tags = input.Tags
	}

	if strings.TrimSpace(input.Content) == "" {
		// Metadata-only patch; vectors stay untouched.
		joined := domain.JoinTags(tags)
		var patched int
		err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
			var gerr error
			patched, gerr = s.index.UpdateMetadata(ctx, input.ID, title, joined, existing.Source)
			return gerr
		})
		if err != nil {
			return nil, err
		}
		return &UpdateOutput{ID: input.ID, ChunkCount: patched}, nil
	}

	chunks, err := Split(input.Content, s.chunking.ChunkSize, s.chunking.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	// Full content replace: old chunks are superseded before the new set is
	// written, keeping the replacement atomic from the caller's view.
	err = s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
		_, gerr := s.index.DeleteByItem(ctx, input.ID)
		return gerr
	})
	if err != nil {
		return nil, err
	}

	rawPath, err := s.store.SaveRaw(ctx, input.ID, renderRaw(title, tags, existing.Source, input.Content))
	if err != nil {
		return nil, err
	}

	if err := s.indexChunks(ctx, input.ID, chunks, title, tags, existing.Source, rawPath); err != nil {
		return nil, err
	}

	return &UpdateOutput{ID: input.ID, ChunkCount: len(chunks), ContentUpdate: true}, nil
}

// DeleteOutput reports the outcome of a delete. Deleting an unknown id is not
// an error; Found is false instead.
type DeleteOutput struct {
	ID            string
	Found         bool
	ChunksRemoved int
}

// Delete removes every chunk carrying the item id plus its raw content and
// any attachment. Delete is idempotent.
func (s *KnowledgeService) Delete(ctx context.Context, id string) (*DeleteOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Delete", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "delete",
	})
	defer span.End()

	if err := domain.ValidateItemID(id); err != nil {
		return nil, err
	}

	var removed int
	err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
		var gerr error
		removed, gerr = s.index.DeleteByItem(ctx, id)
		return gerr
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteRaw(ctx, id); err != nil {
		return nil, err
	}
	if err := s.store.DeleteAttachments(ctx, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{ID: id, Found: removed > 0, ChunksRemoved: removed}, nil
}

// ItemSummary is one entry in a list result: one record per distinct item.
type ItemSummary struct {
	ID         string
	Title      string
	Tags       []string
	Source     string
	ChunkCount int
	Preview    string
}

// List returns one summary per distinct item, optionally restricted to items
// carrying a tag, capped at limit items.
func (s *KnowledgeService) List(ctx context.Context, tag string, limit int) ([]ItemSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.List", telemetry.SpanAttributes{
		Operation: "list",
	})
	defer span.End()

	if limit <= 0 {
		limit = 20
	}

	var records []index.Record
	err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
		var gerr error
		records, gerr = s.index.Get(ctx, index.Filter{Tag: tag}, 0)
		return gerr
	})
	if err != nil {
		return nil, err
	}

	summaries := []ItemSummary{}
	byItem := map[string]int{}
	for _, r := range records {
		if pos, seen := byItem[r.Metadata.ItemID]; seen {
			if r.Metadata.ChunkIndex == 0 {
				summaries[pos].Preview = truncateRunes(r.Content, listPreviewRunes)
			}
			continue
		}
		if len(summaries) >= limit {
			continue
		}
		byItem[r.Metadata.ItemID] = len(summaries)
		summaries = append(summaries, ItemSummary{
			ID:         r.Metadata.ItemID,
			Title:      r.Metadata.Title,
			Tags:       r.Metadata.Tags,
			Source:     r.Metadata.Source,
			ChunkCount: r.Metadata.TotalChunks,
			Preview:    truncateRunes(r.Content, listPreviewRunes),
		})
	}
	return summaries, nil
}

// GetOutput carries an item's raw content and, when present, a descriptor of
// its original-format attachment.
type GetOutput struct {
	ID         string
	Content    string
	Attachment *domain.Attachment
}

// Get returns the raw content for an item. Unlike Delete, addressing an
// unknown id here is an error.
func (s *KnowledgeService) Get(ctx context.Context, id string) (*GetOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Get", telemetry.SpanAttributes{
		ItemID:    id,
		Operation: "get",
	})
	defer span.End()

	if err := domain.ValidateItemID(id); err != nil {
		return nil, err
	}

	data, err := s.store.GetRaw(ctx, id)
	if err != nil {
		if err == domain.ErrRawContentNotFound {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}

	attachment, err := s.store.FindAttachment(ctx, id)
	if err != nil {
		return nil, err
	}

	return &GetOutput{ID: id, Content: string(data), Attachment: attachment}, nil
}

// Stats summarizes the index: distinct items, total chunks and per-item tag
// and source frequencies.
type Stats struct {
	Items   int            `json:"items"`
	Chunks  int            `json:"chunks"`
	Tags    map[string]int `json:"tags"`
	Sources map[string]int `json:"sources"`
}

// GetStats counts distinct items and chunks in the index. Tag and source
// frequencies count items, not chunks; the metadata snapshot is identical on
// every chunk of an item, so the first chunk seen speaks for the item.
func (s *KnowledgeService) GetStats(ctx context.Context) (*Stats, error) {
	var records []index.Record
	err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
		var gerr error
		records, gerr = s.index.Get(ctx, index.Filter{}, 0)
		return gerr
	})
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Chunks:  len(records),
		Tags:    map[string]int{},
		Sources: map[string]int{},
	}
	seen := map[string]struct{}{}
	for _, r := range records {
		if _, ok := seen[r.Metadata.ItemID]; ok {
			continue
		}
		seen[r.Metadata.ItemID] = struct{}{}
		for _, tag := range r.Metadata.Tags {
			stats.Tags[tag]++
		}
		if r.Metadata.Source != "" {
			stats.Sources[r.Metadata.Source]++
		}
	}
	stats.Items = len(seen)
	return stats, nil
}

// ImportInput represents the input for importing a document by path or URL.
type ImportInput struct {
	Source string
	Title  string
	Tags   []string
}

// ImportDocument parses a file or URL into text and adds it as a knowledge
// item. Local files in a recognized format are kept as attachments.
func (s *KnowledgeService) ImportDocument(ctx context.Context, input ImportInput) (*AddOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.ImportDocument", telemetry.SpanAttributes{
		Operation: "import",
	})
	defer span.End()

	if s.parsers == nil {
		return nil, domain.ErrUnsupportedDocument
	}

	doc, err := s.parsers.Parse(ctx, input.Source)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	title := input.Title
	if title == "" {
		title = doc.Title
	}

	out, err := s.Add(ctx, AddInput{
		Content: doc.Content,
		Title:   title,
		Tags:    input.Tags,
		Source:  doc.DocType + ":" + input.Source,
	})
	if err != nil {
		return nil, err
	}

	// Keep the original file retrievable alongside the extracted text. The
	// attachment is best effort: a copy failure does not undo the import.
	if doc.DocType != "html" {
		if _, err := s.store.SaveAttachment(ctx, out.ID, input.Source); err != nil {
			telemetry.AddBreadcrumb(ctx, "import", "attachment not saved: "+err.Error())
		}
	}

	return out, nil
}

// newItemID generates a fresh id and verifies it is unused, retrying a few
// times before giving up.
func (s *KnowledgeService) newItemID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < idGenerationAttempts; attempt++ {
		id, err := s.idGen.NewID()
		if err != nil {
			return "", err
		}

		var existing []index.Record
		err = s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
			var gerr error
			existing, gerr = s.index.Get(ctx, index.Filter{ItemID: id}, 1)
			return gerr
		})
		if err != nil {
			return "", err
		}
		if len(existing) == 0 {
			return id, nil
		}
	}
	return "", domain.NewDomainError(domain.ErrCodeInternalError, "could not generate a unique item id")
}

// indexChunks writes chunk records in fixed-size sequential batches. Batches
// are not rolled back on partial failure: a later batch failing leaves the
// item partially indexed.
func (s *KnowledgeService) indexChunks(ctx context.Context, id string, chunks []string, title string, tags []string, source, rawPath string) error {
	records := make([]index.Record, len(chunks))
	for i, text := range chunks {
		records[i] = index.Record{
			ID:      domain.ChunkID(id, i),
			Content: text,
			Metadata: domain.ChunkMetadata{
				Title:          title,
				Tags:           tags,
				Source:         source,
				ItemID:         id,
				ChunkIndex:     i,
				TotalChunks:    len(chunks),
				RawContentPath: rawPath,
			},
		}
	}

	for start := 0; start < len(records); start += s.chunking.UpsertBatch {
		end := start + s.chunking.UpsertBatch
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
			return s.index.Upsert(ctx, batch)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// itemSnapshot loads the current metadata snapshot for an item from its
// first chunk.
func (s *KnowledgeService) itemSnapshot(ctx context.Context, id string) (*domain.ChunkMetadata, error) {
	var records []index.Record
	err := s.gate.Do(ctx, jobs.CallIndex, func(ctx context.Context) error {
		var gerr error
		records, gerr = s.index.Get(ctx, index.Filter{ItemID: id}, 1)
		return gerr
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrItemNotFound
	}
	meta := records[0].Metadata
	return &meta, nil
}

// resolveMetadata fills in missing title/tags/source, asking the completion
// service when one is wired. Generation failure falls back to safe defaults
// and never aborts the add.
func (s *KnowledgeService) resolveMetadata(ctx context.Context, input AddInput) (title string, tags []string, source string) {
	title = strings.TrimSpace(input.Title)
	tags = input.Tags
	source = input.Source
	if source == "" {
		source = "manual"
	}

	if title != "" && len(tags) > 0 {
		return title, tags, source
	}

	if s.completer != nil {
		genTitle, genTags := s.generateMetadata(ctx, input.Content)
		if title == "" {
			title = genTitle
		}
		if len(tags) == 0 {
			tags = genTags
		}
	}
	if title == "" {
		title = fallbackTitle(input.Content)
	}
	return title, tags, source
}

type generatedMetadata struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// generateMetadata asks the completion service for a title and tags. Any
// failure yields empty results.
func (s *KnowledgeService) generateMetadata(ctx context.Context, content string) (string, []string) {
	sample := truncateRunes(content, 1500)
	messages := []openai.Message{
		{Role: "system", Content: metadataPrompt},
		{Role: "user", Content: sample},
	}

	var completion *openai.Completion
	err := s.gate.Do(ctx, jobs.CallCompletion, func(ctx context.Context) error {
		var gerr error
		completion, gerr = s.completer.Complete(ctx, messages)
		return gerr
	})
	if err != nil {
		telemetry.AddBreadcrumb(ctx, "metadata", "generation failed: "+err.Error())
		return "", nil
	}

	var meta generatedMetadata
	if err := json.Unmarshal([]byte(stripCodeFence(completion.Content)), &meta); err != nil {
		return "", nil
	}
	return strings.TrimSpace(meta.Title), meta.Tags
}

// renderRaw formats raw item content with a small frontmatter header so the
// content store holds a self-describing markdown file.
func renderRaw(title string, tags []string, source, content string) []byte {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + title + "\n")
	b.WriteString("tags: " + domain.JoinTags(tags) + "\n")
	b.WriteString("source: " + source + "\n")
	b.WriteString("created: " + time.Now().UTC().Format(time.RFC3339) + "\n")
	b.WriteString("---\n\n")
	b.WriteString(content)
	return []byte(b.String())
}

// fallbackTitle derives a title from the first content line when generation
// is unavailable.
func fallbackTitle(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimLeft(line, "# ")
	return truncateRunes(strings.TrimSpace(line), 50)
}

func truncateRunes(s string, n int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
