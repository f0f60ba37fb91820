package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMissingFileActsEmpty(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.Empty(t, store.Summary())
	p := store.Get()
	assert.Empty(t, p.Level)
	assert.NotNil(t, p.FrequentTopics)
}

func TestStoreCorruptFileActsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "memory"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "memory", "profile.json"), []byte("{not json"), 0o644))

	store := NewStore(dir)
	assert.Empty(t, store.Summary())
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.SetLevel("intermediate"))
	require.NoError(t, store.SetInterests([]string{"go", "databases"}))
	require.NoError(t, store.SetPreferences([]string{"concise answers"}))

	p := store.Get()
	assert.Equal(t, "intermediate", p.Level)
	assert.Equal(t, []string{"go", "databases"}, p.Interests)
	assert.NotEmpty(t, p.UpdatedAt)
}

func TestStoreRecordTopic(t *testing.T) {
	store := NewStore(t.TempDir())

	store.RecordTopic("vectors")
	store.RecordTopic("vectors")
	store.RecordTopic("chunking")
	store.RecordTopic("  ")

	p := store.Get()
	assert.Equal(t, 2, p.FrequentTopics["vectors"])
	assert.Equal(t, 1, p.FrequentTopics["chunking"])
	assert.Len(t, p.FrequentTopics, 2)
}

func TestSummaryRendersKnownFields(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.SetLevel("expert"))
	require.NoError(t, store.SetInterests([]string{"distributed systems"}))
	store.RecordTopic("raft")
	store.RecordTopic("raft")
	store.RecordTopic("paxos")

	summary := store.Summary()
	assert.Contains(t, summary, "## About the user")
	assert.Contains(t, summary, "Level: expert")
	assert.Contains(t, summary, "Interests: distributed systems")
	assert.Contains(t, summary, "Frequent topics: raft, paxos")
}

func TestTopTopicsOrdering(t *testing.T) {
	topics := topTopics(map[string]int{"a": 1, "b": 3, "c": 3, "d": 2}, 3)
	assert.Equal(t, []string{"b", "c", "d"}, topics)
}
