package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docbase/docbase/pkg/types"
)

func TestChunk_EmptyText(t *testing.T) {
	chunks, err := Chunk("", DefaultChunkSize, DefaultOverlap)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = Chunk("   \n\t  ", DefaultChunkSize, DefaultOverlap)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_FitsInSingleChunk(t *testing.T) {
	chunks, err := Chunk("  hello world  ", DefaultChunkSize, DefaultOverlap)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunk_InvalidConfig(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Chunk("some text", tc.chunkSize, tc.overlap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidConfig))
		})
	}
}

func TestChunk_BoundaryFreeText(t *testing.T) {
	// 2500 characters with no break points splits into exactly three
	// windows with the default 1000/200 parameters.
	text := strings.Repeat("a", 2500)

	chunks, err := Chunk(text, 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1000, len(chunks[0]))
	assert.Equal(t, 1000, len(chunks[1]))
	assert.Equal(t, 900, len(chunks[2]))
}

func TestChunk_RespectsMaxSize(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)

	chunks, err := Chunk(text, 500, 100)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.LessOrEqual(t, len(c), 500, "chunk %d exceeds max size", i)
		assert.NotEmpty(t, strings.TrimSpace(c), "chunk %d is blank", i)
	}
}

func TestChunk_PrefersParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("x", 400)
	para2 := strings.Repeat("y", 400)
	text := para1 + "\n\n" + para2

	chunks, err := Chunk(text, 500, 50)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, para1, chunks[0])
}

func TestChunk_PrefersSentenceBoundary(t *testing.T) {
	sentence := "This is a complete sentence that ends properly. "
	text := strings.Repeat(sentence, 30)

	chunks, err := Chunk(text, 300, 50)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Every non-final chunk should end at a sentence boundary.
	for _, c := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(c, "."), "chunk should end at a sentence: %q", c[len(c)-20:])
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := strings.Repeat("Some documentation text. It spans sentences. ", 100)

	first, err := Chunk(text, 800, 150)
	require.NoError(t, err)
	second, err := Chunk(text, 800, 150)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChunk_CoversAllContent(t *testing.T) {
	// Boundary-free text: with overlap, the concatenated chunk windows
	// must cover every position of the input.
	text := strings.Repeat("abcdefghij", 500)

	chunks, err := Chunk(text, 1000, 200)
	require.NoError(t, err)

	covered := 0
	for _, c := range chunks {
		covered += len(c)
	}
	// Total coverage including overlap regions must be at least the
	// input length.
	assert.GreaterOrEqual(t, covered, len(text))
}

func TestChunk_ForwardProgressWithLargeOverlap(t *testing.T) {
	// Overlap one below chunk size forces the minimum advance path. The
	// call must terminate and still produce chunks.
	text := strings.Repeat("z", 50)

	chunks, err := Chunk(text, 10, 9)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestChunk_MultiByteText(t *testing.T) {
	// Boundary-free CJK text: every chunk must stay valid UTF-8 even
	// though the size limit never lands on a rune boundary.
	text := strings.Repeat("文", 400)

	chunks, err := Chunk(text, 1000, 200)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk %d is not valid UTF-8", i)
		assert.LessOrEqual(t, len(c), 1000)
	}
}

func TestChunk_MultiByteMixedContent(t *testing.T) {
	// Emoji and accented prose mixed with ASCII, split with a small
	// window so boundaries fall inside multi-byte sequences often.
	text := strings.Repeat("café naïve 🚀 ", 100)

	chunks, err := Chunk(text, 50, 10)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk %d is not valid UTF-8", i)
	}
}

func TestWindowEnd(t *testing.T) {
	t.Run("ascii boundary untouched", func(t *testing.T) {
		assert.Equal(t, 4, windowEnd("abcdef", 4))
	})

	t.Run("backs off to rune start", func(t *testing.T) {
		// "文" is 3 bytes; a limit of 4 lands inside the second rune.
		assert.Equal(t, 3, windowEnd("文文", 4))
	})

	t.Run("keeps a single wide rune whole", func(t *testing.T) {
		assert.Equal(t, 4, windowEnd("🚀🚀", 2))
	})
}

func TestFindBreakPoint(t *testing.T) {
	t.Run("paragraph break wins", func(t *testing.T) {
		window := "first paragraph\n\nsecond. part"
		assert.Equal(t, strings.Index(window, "\n\n"), findBreakPoint(window))
	})

	t.Run("sentence end", func(t *testing.T) {
		window := "A sentence ends here. And continues"
		idx := findBreakPoint(window)
		assert.Equal(t, strings.Index(window, ".")+1, idx)
	})

	t.Run("whitespace in second half", func(t *testing.T) {
		window := strings.Repeat("a", 40) + " " + strings.Repeat("b", 30)
		assert.Equal(t, 40, findBreakPoint(window))
	})

	t.Run("no boundary at all", func(t *testing.T) {
		window := strings.Repeat("a", 50)
		assert.Equal(t, 50, findBreakPoint(window))
	})
}
