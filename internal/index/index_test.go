package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder returns canned vectors keyed by text.
type fakeEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]int // remaining failures per text
	mu      sync.Mutex
	calls   int
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if remaining, ok := f.failOn[text]; ok && remaining > 0 {
		f.failOn[text] = remaining - 1
		return nil, errors.New("embedding provider unavailable")
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

func chunkFixture(id, text string, vec []float32) domain.Chunk {
	return domain.Chunk{
		ID:        id,
		Text:      text,
		Embedding: vec,
		Metadata:  domain.ChunkMetadata{Subject: "Mathematics", Grade: "Class 5", Chapter: "Chapter 2"},
	}
}

func TestBuild_EmbedsAllChunks(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"addition": {1, 0, 0},
		"fraction": {0, 1, 0},
	}}
	chunks := []domain.Chunk{
		{ID: "c1", Text: "addition"},
		{ID: "c2", Text: "fraction"},
	}

	ix, err := Build(context.Background(), embedder, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Size())
	assert.Equal(t, 3, ix.Dimension())
	assert.False(t, ix.BuiltAt().IsZero())
}

func TestBuild_RetriesTransientFailures(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float32{"addition": {1, 0, 0}},
		failOn:  map[string]int{"addition": 2},
	}

	ix, err := Build(context.Background(), embedder, []domain.Chunk{{ID: "c1", Text: "addition"}})
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Size())
	assert.Equal(t, 3, embedder.calls)
}

func TestBuild_AllOrNothing(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float32{"addition": {1, 0, 0}},
		failOn:  map[string]int{"fraction": 100},
	}
	chunks := []domain.Chunk{
		{ID: "c1", Text: "addition"},
		{ID: "c2", Text: "fraction"},
	}

	ix, err := Build(context.Background(), embedder, chunks)
	require.Error(t, err)
	assert.Nil(t, ix)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeIndexBuild))
}

func TestFromChunks_Validation(t *testing.T) {
	_, err := FromChunks([]domain.Chunk{{ID: "c1", Text: "no vector"}})
	assert.ErrorIs(t, err, domain.ErrMissingEmbedding)

	_, err = FromChunks([]domain.Chunk{
		chunkFixture("c1", "a", []float32{1, 0}),
		chunkFixture("c2", "b", []float32{1, 0, 0}),
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestQuery_PureTopK(t *testing.T) {
	// lambda = 1 degenerates to descending cosine similarity order.
	ix, err := FromChunks([]domain.Chunk{
		chunkFixture("far", "far", []float32{0, 0, 1}),
		chunkFixture("close", "close", []float32{1, 0.1, 0}),
		chunkFixture("mid", "mid", []float32{0.6, 0.8, 0}),
	})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	got, err := ix.Query(context.Background(), embedder, "query", QueryOptions{K: 3, DiversityLambda: 1})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "close", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "far", got[2].ID)
}

func TestQuery_DiversitySuppressesNearDuplicates(t *testing.T) {
	// Two nearly identical chunks close to the query, one distinct chunk.
	// With a diversity-heavy lambda the near-duplicate must lose to the
	// distinct chunk.
	ix, err := FromChunks([]domain.Chunk{
		chunkFixture("dup-a", "dup a", []float32{0.9, 0.1, 0}),
		chunkFixture("dup-b", "dup b", []float32{0.9, 0.11, 0}),
		chunkFixture("distinct", "distinct", []float32{0.1, 0.9, 0}),
	})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	got, err := ix.Query(context.Background(), embedder, "query", QueryOptions{K: 2, DiversityLambda: 0.3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "dup-a", got[0].ID)
	assert.Equal(t, "distinct", got[1].ID)
}

func TestQuery_TieBreaksByChunkID(t *testing.T) {
	ix, err := FromChunks([]domain.Chunk{
		chunkFixture("b-chunk", "b", []float32{1, 0, 0}),
		chunkFixture("a-chunk", "a", []float32{1, 0, 0}),
	})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	got, err := ix.Query(context.Background(), embedder, "query", QueryOptions{K: 2, DiversityLambda: 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a-chunk", got[0].ID)
	assert.Equal(t, "b-chunk", got[1].ID)
}

func TestQuery_EmptyIndexReturnsEmpty(t *testing.T) {
	var ix *Index
	got, err := ix.Query(context.Background(), &fakeEmbedder{}, "query", QueryOptions{K: 5, DiversityLambda: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_KClampedToIndexSize(t *testing.T) {
	ix, err := FromChunks([]domain.Chunk{chunkFixture("only", "only", []float32{1, 0, 0})})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	got, err := ix.Query(context.Background(), embedder, "query", QueryOptions{K: 10, DiversityLambda: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestQuery_MetadataFilter(t *testing.T) {
	other := chunkFixture("other", "other", []float32{1, 0, 0})
	other.Metadata.Chapter = "Chapter 9"
	ix, err := FromChunks([]domain.Chunk{
		chunkFixture("match", "match", []float32{0.5, 0.5, 0}),
		other,
	})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	got, err := ix.Query(context.Background(), embedder, "query", QueryOptions{
		K:               5,
		DiversityLambda: 1,
		Filter:          domain.ChunkMetadata{Chapter: "Chapter 2"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "match", got[0].ID)
}

func TestQuery_MinSimilarityCutoff(t *testing.T) {
	ix, err := FromChunks([]domain.Chunk{
		chunkFixture("close", "close", []float32{1, 0, 0}),
		chunkFixture("orthogonal", "orthogonal", []float32{0, 1, 0}),
	})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{"query": {1, 0, 0}}}
	got, err := ix.Query(context.Background(), embedder, "query", QueryOptions{
		K:               2,
		DiversityLambda: 1,
		MinSimilarity:   0.5,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "close", got[0].ID)
}

func TestQuery_InvalidOptions(t *testing.T) {
	ix, err := FromChunks([]domain.Chunk{chunkFixture("c", "c", []float32{1})})
	require.NoError(t, err)

	_, err = ix.Query(context.Background(), &fakeEmbedder{}, "q", QueryOptions{K: 0, DiversityLambda: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTopK)

	_, err = ix.Query(context.Background(), &fakeEmbedder{}, "q", QueryOptions{K: 1, DiversityLambda: 1.5})
	assert.ErrorIs(t, err, domain.ErrInvalidLambda)
}
