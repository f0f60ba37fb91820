//go:build integration

package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/clearhaven/lore/internal/testutil"
)

// stubEmbedder produces deterministic byte-histogram vectors so similarity
// ordering is predictable without an embedding API.
type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 1024)
		for _, b := range []byte(text) {
			v[int(b)]++
		}
		out[i] = v
	}
	return out, nil
}

func testRecord(itemID string, ord int, content string, tags []string) Record {
	return Record{
		ID:      domain.ChunkID(itemID, ord),
		Content: content,
		Metadata: domain.ChunkMetadata{
			Title:          "Title " + itemID,
			Tags:           tags,
			Source:         "test",
			ItemID:         itemID,
			ChunkIndex:     ord,
			TotalChunks:    2,
			RawContentPath: "raw/" + itemID + ".md",
		},
	}
}

func TestPgVector_UpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../database/migrations")
	defer pool.Close()

	idx := NewPgVector(pool, stubEmbedder{})

	records := []Record{
		testRecord("kb_aaaa1111", 0, "raft elects a leader per term", []string{"consensus", "raft"}),
		testRecord("kb_aaaa1111", 1, "followers replicate the leader log", []string{"consensus", "raft"}),
	}
	require.NoError(t, idx.Upsert(ctx, records))

	got, err := idx.Get(ctx, Filter{ItemID: "kb_aaaa1111"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "kb_aaaa1111_chunk0", got[0].ID)
	assert.Equal(t, []string{"consensus", "raft"}, got[0].Metadata.Tags)
	assert.Equal(t, 2, got[0].Metadata.TotalChunks)
	assert.Equal(t, "raw/kb_aaaa1111.md", got[0].Metadata.RawContentPath)

	// Re-upserting the same id replaces the row instead of duplicating it.
	records[0].Content = "raft elects exactly one leader per term"
	require.NoError(t, idx.Upsert(ctx, records[:1]))

	got, err = idx.Get(ctx, Filter{ItemID: "kb_aaaa1111"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "raft elects exactly one leader per term", got[0].Content)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	removed, err := idx.DeleteByItem(ctx, "kb_aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = idx.DeleteByItem(ctx, "kb_aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestPgVector_QueryOrdersByDistance(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../database/migrations")
	defer pool.Close()

	idx := NewPgVector(pool, stubEmbedder{})

	// Empty index yields an empty slice, not an error.
	results, err := idx.Query(ctx, "anything", 5, Filter{})
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, idx.Upsert(ctx, []Record{
		testRecord("kb_aaaa1111", 0, "raft consensus leader election", []string{"consensus"}),
		testRecord("kb_bbbb2222", 0, "sourdough bread hydration ratios", []string{"baking"}),
	}))

	results, err = idx.Query(ctx, "raft consensus leader election", 5, Filter{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "kb_aaaa1111", results[0].Metadata.ItemID)
	assert.InDelta(t, 0.0, results[0].Distance, 1e-6)
	assert.Less(t, results[0].Distance, results[1].Distance)

	// n larger than the index is clamped.
	results, err = idx.Query(ctx, "bread", 50, Filter{})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	// Tag filter restricts candidates before ranking.
	results, err = idx.Query(ctx, "raft consensus leader election", 5, Filter{Tag: "baking"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb_bbbb2222", results[0].Metadata.ItemID)
}

func TestPgVector_UpdateMetadata(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../database/migrations")
	defer pool.Close()

	idx := NewPgVector(pool, stubEmbedder{})

	require.NoError(t, idx.Upsert(ctx, []Record{
		testRecord("kb_aaaa1111", 0, "raft consensus leader election", []string{"consensus"}),
		testRecord("kb_aaaa1111", 1, "followers replicate the leader log", []string{"consensus"}),
	}))

	patched, err := idx.UpdateMetadata(ctx, "kb_aaaa1111", "Raft notes", "consensus,raft", "manual")
	require.NoError(t, err)
	assert.Equal(t, 2, patched)

	got, err := idx.Get(ctx, Filter{ItemID: "kb_aaaa1111"}, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Raft notes", got[0].Metadata.Title)
	assert.Equal(t, []string{"consensus", "raft"}, got[0].Metadata.Tags)
	assert.Equal(t, "manual", got[0].Metadata.Source)

	// Vectors are untouched: the original content still ranks first.
	results, err := idx.Query(ctx, "raft consensus leader election", 1, Filter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "kb_aaaa1111_chunk0", results[0].ID)
}
