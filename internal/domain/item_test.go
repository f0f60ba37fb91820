package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkID(t *testing.T) {
	assert.Equal(t, "kb_a1b2c3d4_chunk0", ChunkID("kb_a1b2c3d4", 0))
	assert.Equal(t, "kb_a1b2c3d4_chunk12", ChunkID("kb_a1b2c3d4", 12))
}

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid generated id", "kb_a1b2c3d4", false},
		{"valid plain id", "my-note-1", false},
		{"empty", "", true},
		{"contains space", "kb_a1 b2", true},
		{"contains slash", "kb/../etc", true},
		{"contains backslash", "kb\\x", true},
		{"contains newline", "kb_a1\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidItemID)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJoinSplitTags(t *testing.T) {
	t.Run("join", func(t *testing.T) {
		assert.Equal(t, "go,testing", JoinTags([]string{"go", "testing"}))
		assert.Equal(t, "", JoinTags(nil))
	})

	t.Run("split trims and drops empties", func(t *testing.T) {
		assert.Equal(t, []string{"go", "testing"}, SplitTags(" go , testing ,"))
		assert.Nil(t, SplitTags("  "))
		assert.Nil(t, SplitTags(""))
	})
}

func TestChunkMetadataValidate(t *testing.T) {
	valid := ChunkMetadata{
		Title:       "Notes",
		Tags:        []string{"go"},
		Source:      "notes",
		ItemID:      "kb_a1b2c3d4",
		ChunkIndex:  0,
		TotalChunks: 3,
	}
	assert.NoError(t, valid.Validate())

	t.Run("rejects bad item id", func(t *testing.T) {
		m := valid
		m.ItemID = ""
		assert.Error(t, m.Validate())
	})

	t.Run("rejects negative index", func(t *testing.T) {
		m := valid
		m.ChunkIndex = -1
		assert.Error(t, m.Validate())
	})

	t.Run("rejects index beyond total", func(t *testing.T) {
		m := valid
		m.ChunkIndex = 3
		m.TotalChunks = 3
		assert.Error(t, m.Validate())
	})
}
