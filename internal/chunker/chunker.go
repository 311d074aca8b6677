package chunker

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docbase/docbase/pkg/types"
)

const (
	// DefaultChunkSize is the default maximum character count per chunk.
	DefaultChunkSize = 1000

	// DefaultOverlap is the default character overlap between adjacent
	// chunks.
	DefaultOverlap = 200
)

// Chunk splits text into ordered, overlapping segments of at most
// chunkSize characters. overlap must be non-negative and strictly
// smaller than chunkSize.
//
// Empty or all-whitespace text yields no chunks. Text that fits in a
// single chunk is returned trimmed and whole.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", types.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", types.ErrInvalidConfig, overlap, chunkSize)
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) <= chunkSize {
		return []string{trimmed}, nil
	}

	var chunks []string
	cursor := 0
	for cursor < len(trimmed) {
		remaining := trimmed[cursor:]
		if len(remaining) <= chunkSize {
			if piece := strings.TrimSpace(remaining); piece != "" {
				chunks = append(chunks, piece)
			}
			break
		}

		split := findBreakPoint(remaining[:windowEnd(remaining, chunkSize)])
		if piece := strings.TrimSpace(remaining[:split]); piece != "" {
			chunks = append(chunks, piece)
		}

		// Advance by the actual chunk length minus the overlap, but
		// always move forward: boundary correction can make the chunk
		// shorter than chunkSize-overlap, and a zero advance would loop
		// forever.
		advance := split - overlap
		if advance < 1 {
			advance = 1
		}
		cursor += advance
		for cursor < len(trimmed) && !utf8.RuneStart(trimmed[cursor]) {
			cursor++
		}
	}

	return chunks, nil
}

// windowEnd clamps limit back to the nearest rune boundary so the
// window never ends inside a multi-byte character. A single rune wider
// than the limit is kept whole.
func windowEnd(s string, limit int) int {
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	if end == 0 {
		_, size := utf8.DecodeRuneInString(s)
		end = size
	}
	return end
}

// findBreakPoint picks a split position within the window: the last
// paragraph break, else the last sentence end, else the last whitespace
// in the second half, else the full window.
func findBreakPoint(window string) int {
	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return idx
	}

	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '.' || window[i] == '!' || window[i] == '?' {
			if i == len(window)-1 || unicode.IsSpace(rune(window[i+1])) {
				return i + 1
			}
		}
	}

	for i := len(window) - 1; i >= len(window)/2; i-- {
		if unicode.IsSpace(rune(window[i])) {
			return i
		}
	}

	return len(window)
}
