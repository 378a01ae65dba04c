package index

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

// Embedder converts text into a fixed-dimension vector. Implemented by the
// OpenAI client and by test fakes.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

const (
	// embedRetries is the per-chunk retry budget during a build.
	embedRetries = 3
	embedBackoff = 500 * time.Millisecond
)

// Index is an immutable snapshot of embedded curriculum chunks. It is built
// once and then shared read-only across concurrent queries; rebuilds produce
// a fresh Index that is published through a Store swap.
type Index struct {
	chunks    []domain.Chunk
	dimension int
	builtAt   time.Time
}

// Build embeds every chunk and assembles an index. Embedding calls are retried
// up to the per-chunk budget; if any chunk still fails, the partial build is
// discarded and an INDEX_BUILD_ERROR is returned.
func Build(ctx context.Context, embedder Embedder, chunks []domain.Chunk) (*Index, error) {
	out := make([]domain.Chunk, 0, len(chunks))
	dimension := 0

	for _, c := range chunks {
		vec, err := embedWithRetry(ctx, embedder, c.Text)
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIndexBuild,
				fmt.Sprintf("embedding chunk %s failed after %d attempts", c.ID, embedRetries), err)
		}
		if dimension == 0 {
			dimension = len(vec)
		} else if len(vec) != dimension {
			return nil, domain.NewDomainError(domain.ErrCodeIndexBuild,
				fmt.Sprintf("chunk %s has dimension %d, expected %d", c.ID, len(vec), dimension))
		}
		c.Embedding = vec
		out = append(out, c)
	}

	return &Index{chunks: out, dimension: dimension, builtAt: time.Now().UTC()}, nil
}

// FromChunks assembles an index from chunks that already carry embeddings,
// e.g. loaded from the persistent chunk store on startup.
func FromChunks(chunks []domain.Chunk) (*Index, error) {
	dimension := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return nil, domain.ErrMissingEmbedding
		}
		if dimension == 0 {
			dimension = len(c.Embedding)
		} else if len(c.Embedding) != dimension {
			return nil, domain.ErrDimensionMismatch
		}
	}
	return &Index{
		chunks:    append([]domain.Chunk(nil), chunks...),
		dimension: dimension,
		builtAt:   time.Now().UTC(),
	}, nil
}

func embedWithRetry(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt < embedRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(embedBackoff * time.Duration(attempt)):
			}
		}
		vec, err := embedder.GenerateEmbedding(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	if ix == nil {
		return 0
	}
	return len(ix.chunks)
}

// Chunks returns a copy of the indexed chunks, embeddings included. Used to
// persist a freshly built index.
func (ix *Index) Chunks() []domain.Chunk {
	if ix == nil {
		return nil
	}
	return append([]domain.Chunk(nil), ix.chunks...)
}

// Dimension returns the embedding dimension of the index.
func (ix *Index) Dimension() int {
	if ix == nil {
		return 0
	}
	return ix.dimension
}

// BuiltAt returns when the index snapshot was assembled.
func (ix *Index) BuiltAt() time.Time {
	if ix == nil {
		return time.Time{}
	}
	return ix.builtAt
}

// QueryOptions controls retrieval behavior.
type QueryOptions struct {
	K               int
	DiversityLambda float64
	// MinSimilarity drops selected chunks whose query similarity falls below
	// the threshold. Zero disables the cutoff.
	MinSimilarity float64
	// Filter restricts candidates by curriculum metadata; empty fields match
	// everything.
	Filter domain.ChunkMetadata
}

// Query embeds the text, ranks all candidate chunks by cosine similarity and
// selects K of them with maximal marginal relevance. An empty index yields an
// empty result rather than an error: retrieval is advisory context.
func (ix *Index) Query(ctx context.Context, embedder Embedder, text string, opts QueryOptions) ([]domain.Chunk, error) {
	if ix.Size() == 0 {
		return nil, nil
	}
	if opts.K <= 0 {
		return nil, domain.ErrInvalidTopK
	}
	if opts.DiversityLambda < 0 || opts.DiversityLambda > 1 {
		return nil, domain.ErrInvalidLambda
	}

	query, err := embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeGeneration, "failed to embed query", err)
	}

	candidates := ix.candidates(opts.Filter)
	if len(candidates) == 0 {
		return nil, nil
	}

	picked := selectMMR(query, candidates, opts.K, opts.DiversityLambda)

	out := make([]domain.Chunk, 0, len(picked))
	for _, cand := range picked {
		if opts.MinSimilarity > 0 && cand.similarity < opts.MinSimilarity {
			continue
		}
		out = append(out, cand.chunk)
	}
	return out, nil
}

func (ix *Index) candidates(filter domain.ChunkMetadata) []domain.Chunk {
	if filter == (domain.ChunkMetadata{}) {
		return ix.chunks
	}
	var out []domain.Chunk
	for _, c := range ix.chunks {
		if filter.Subject != "" && filter.Subject != c.Metadata.Subject {
			continue
		}
		if filter.Grade != "" && filter.Grade != c.Metadata.Grade {
			continue
		}
		if filter.Chapter != "" && filter.Chapter != c.Metadata.Chapter {
			continue
		}
		out = append(out, c)
	}
	return out
}

// cosineSimilarity computes the cosine of the angle between two vectors in
// float64 to keep accumulation stable.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
