package service

import (
	"strings"

	"github.com/clearhaven/lore/internal/domain"
)

// breakMarkers are the natural break points Split prefers, in priority
// order: paragraph break, line break, then sentence-ending punctuation
// (CJK and Latin).
var breakMarkers = []string{"\n\n", "\n", "。", "！", "？", ". ", "! ", "? ", "；"}

// Split cuts text into overlapping segments of at most chunkSize runes,
// preferring to end each segment at a natural break found in the second
// half of the window. Adjacent segments share chunkOverlap runes unless a
// break point shortened the window.
func Split(text string, chunkSize, chunkOverlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, domain.ErrInvalidChunkOverlap
	}

	clean := strings.TrimSpace(text)
	if clean == "" {
		return []string{}, nil
	}
	runes := []rune(clean)
	if len(runes) <= chunkSize {
		return []string{clean}, nil
	}

	chunks := make([]string, 0, len(runes)/chunkSize+1)
	start := 0
	for start < len(runes) {
		end := start + chunkSize

		if end >= len(runes) {
			if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		// Right-most natural break in the second half of the window wins;
		// a hard cut at end is kept when none is found.
		if cut := lastBreakBefore(runes, start+chunkSize/2, end); cut > start {
			end = cut
		}

		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := end - chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// lastBreakBefore scans runes[from:to] for the right-most occurrence of any
// break marker and returns the index just past it, or -1 when none matches.
func lastBreakBefore(runes []rune, from, to int) int {
	if from < 0 {
		from = 0
	}
	best := -1
	for _, marker := range breakMarkers {
		m := []rune(marker)
		for pos := to - len(m); pos >= from; pos-- {
			if matchAt(runes, pos, m) {
				if cut := pos + len(m); cut > best {
					best = cut
				}
				break
			}
		}
	}
	return best
}

func matchAt(runes []rune, pos int, marker []rune) bool {
	if pos < 0 || pos+len(marker) > len(runes) {
		return false
	}
	for i, r := range marker {
		if runes[pos+i] != r {
			return false
		}
	}
	return true
}
