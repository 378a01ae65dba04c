package chunker

import (
	"strings"
	"testing"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = domain.ChunkMetadata{
	Subject: "Mathematics",
	Grade:   "Class 5",
	Chapter: "Chapter 2",
}

func TestChunk_Deterministic(t *testing.T) {
	doc := strings.Repeat("Addition is combining numbers. Subtraction is taking away.\n\n", 20)
	cfg := Config{ChunkSize: 200, Overlap: 40}

	first, err := Chunk(doc, cfg, testMeta)
	require.NoError(t, err)
	second, err := Chunk(doc, cfg, testMeta)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunk_RespectsMaxSize(t *testing.T) {
	doc := strings.Repeat("The number line helps students see order and distance. ", 50)
	cfg := Config{ChunkSize: 150, Overlap: 30}

	chunks, err := Chunk(doc, cfg, testMeta)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), cfg.ChunkSize)
	}
}

func TestChunk_ExactOverlap(t *testing.T) {
	doc := strings.Repeat("Multiplication is repeated addition of equal groups. ", 40)
	cfg := Config{ChunkSize: 180, Overlap: 25}

	chunks, err := Chunk(doc, cfg, testMeta)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		next := []rune(chunks[i].Text)
		require.GreaterOrEqual(t, len(prev), cfg.Overlap)
		require.GreaterOrEqual(t, len(next), cfg.Overlap)
		assert.Equal(t, string(prev[len(prev)-cfg.Overlap:]), string(next[:cfg.Overlap]))
	}
}

func TestChunk_PrefersParagraphBoundaries(t *testing.T) {
	doc := "First paragraph about fractions and their parts in daily life examples.\n\n" +
		"Second paragraph about decimals." +
		strings.Repeat(" More decimal discussion follows here.", 10)
	cfg := Config{ChunkSize: 100, Overlap: 10}

	chunks, err := Chunk(doc, cfg, testMeta)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// First cut lands just past the paragraph break, not mid-sentence.
	assert.True(t, strings.HasSuffix(chunks[0].Text, "\n\n"))
}

func TestChunk_HardSliceFallback(t *testing.T) {
	// No separators at all: must fall back to hard character slicing.
	doc := strings.Repeat("x", 500)
	cfg := Config{ChunkSize: 120, Overlap: 20}

	chunks, err := Chunk(doc, cfg, testMeta)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), cfg.ChunkSize)
	}

	// Full coverage: stitching chunks back together (minus overlap) restores
	// the original document.
	rebuilt := chunks[0].Text
	for i := 1; i < len(chunks); i++ {
		rebuilt += chunks[i].Text[cfg.Overlap:]
	}
	assert.Equal(t, doc, rebuilt)
}

func TestChunk_SmallDocumentSingleChunk(t *testing.T) {
	doc := "Short note about even numbers."
	chunks, err := Chunk(doc, Config{ChunkSize: 500, Overlap: 50}, testMeta)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, doc, chunks[0].Text)
	assert.Equal(t, testMeta, chunks[0].Metadata)
}

func TestChunk_ConfigValidation(t *testing.T) {
	_, err := Chunk("some text", Config{ChunkSize: 100, Overlap: 100}, testMeta)
	assert.ErrorIs(t, err, domain.ErrOverlapTooLarge)

	_, err = Chunk("some text", Config{ChunkSize: 100, Overlap: 150}, testMeta)
	assert.ErrorIs(t, err, domain.ErrOverlapTooLarge)

	_, err = Chunk("some text", Config{ChunkSize: 0, Overlap: 0}, testMeta)
	assert.ErrorIs(t, err, domain.ErrInvalidChunkSize)

	_, err = Chunk("", Config{ChunkSize: 100, Overlap: 10}, testMeta)
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}
