package index

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmptyUntilSwap(t *testing.T) {
	store := NewStore()
	assert.Nil(t, store.Current())
	assert.Equal(t, 0, store.Current().Size())
}

func TestStore_SwapPublishesNewIndex(t *testing.T) {
	store := NewStore()

	first, err := FromChunks([]domain.Chunk{chunkFixture("c1", "one", []float32{1, 0})})
	require.NoError(t, err)
	store.Swap(first)
	assert.Equal(t, 1, store.Current().Size())

	second, err := FromChunks([]domain.Chunk{
		chunkFixture("c1", "one", []float32{1, 0}),
		chunkFixture("c2", "two", []float32{0, 1}),
	})
	require.NoError(t, err)
	store.Swap(second)
	assert.Equal(t, 2, store.Current().Size())
}

func TestStore_ConcurrentReadersDuringSwap(t *testing.T) {
	store := NewStore()
	embedder := &fakeEmbedder{vectors: map[string][]float32{"q": {1, 0}}}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				ix := store.Current()
				got, err := ix.Query(context.Background(), embedder, "q", QueryOptions{K: 1, DiversityLambda: 1})
				assert.NoError(t, err)
				// A reader sees either no index yet or a complete snapshot.
				if ix.Size() > 0 {
					assert.Len(t, got, 1)
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		ix, err := FromChunks([]domain.Chunk{
			chunkFixture(fmt.Sprintf("c%d", i), "text", []float32{1, 0}),
		})
		require.NoError(t, err)
		store.Swap(ix)
	}
	wg.Wait()
}
