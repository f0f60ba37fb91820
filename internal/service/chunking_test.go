package service

import (
	"strings"
	"testing"

	"github.com/clearhaven/lore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr error
	}{
		{"zero size", 0, 0, domain.ErrInvalidChunkSize},
		{"negative size", -1, 0, domain.ErrInvalidChunkSize},
		{"negative overlap", 100, -1, domain.ErrInvalidChunkOverlap},
		{"overlap equals size", 100, 100, domain.ErrInvalidChunkOverlap},
		{"overlap exceeds size", 100, 150, domain.ErrInvalidChunkOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.size, tt.overlap)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitTrivialInputs(t *testing.T) {
	t.Run("empty input yields empty sequence", func(t *testing.T) {
		chunks, err := Split("", 500, 50)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("whitespace-only input yields empty sequence", func(t *testing.T) {
		chunks, err := Split("  \n\t ", 500, 50)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("short input yields a single trimmed chunk", func(t *testing.T) {
		chunks, err := Split("  short text  ", 500, 50)
		require.NoError(t, err)
		assert.Equal(t, []string{"short text"}, chunks)
	})
}

func TestSplitBreaksAtSentenceBoundary(t *testing.T) {
	chunks, err := Split("Sentence one. Sentence two. Sentence three.", 20, 5)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// The first window must end at a sentence-ending marker near position
	// 20, not mid-word.
	assert.Equal(t, "Sentence one.", chunks[0])
	for _, c := range chunks {
		assert.NotEmpty(t, c)
		assert.LessOrEqual(t, len([]rune(c)), 20)
	}
}

func TestSplitPrefersParagraphBreak(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph follows with more text after it."
	chunks, err := Split(text, 30, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, "First paragraph here.", chunks[0])
}

func TestSplitHardCutWithoutBreaks(t *testing.T) {
	text := strings.Repeat("a", 100)
	chunks, err := Split(text, 40, 10)
	require.NoError(t, err)

	// No natural breaks: hard cuts every 40 runes, each window starting
	// 10 runes before the previous end.
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("a", 40), chunks[0])
	assert.Equal(t, strings.Repeat("a", 40), chunks[1])
	assert.Equal(t, strings.Repeat("a", 40), chunks[2])
}

func TestSplitOverlapIsShared(t *testing.T) {
	text := strings.Repeat("0123456789", 8)
	chunks, err := Split(text, 50, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	// Adjacent chunks share a suffix/prefix of chunkOverlap runes when no
	// natural break shortened the window.
	assert.Equal(t, text[:50], chunks[0])
	assert.Equal(t, text[30:], chunks[1])
	suffix := chunks[0][len(chunks[0])-20:]
	assert.Equal(t, suffix, chunks[1][:20])
}

func TestSplitCoversOriginalText(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota kappa. Lambda mu nu xi omicron pi."
	chunks, err := Split(text, 30, 8)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Every chunk is a substring of the source, in order: the windows
	// cover the original without gaps.
	cursor := 0
	for _, c := range chunks {
		idx := strings.Index(text[cursor:], c)
		require.GreaterOrEqual(t, idx, 0, "chunk %q not found after offset %d", c, cursor)
		cursor += idx
	}
}

func TestSplitMultibyteRunes(t *testing.T) {
	text := strings.Repeat("知识就是力量。", 20)
	chunks, err := Split(text, 25, 5)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 25)
		// Windows end on the CJK full stop, never mid-sentence.
		assert.True(t, strings.HasSuffix(c, "。"), "chunk %q should end at sentence break", c)
	}
}
