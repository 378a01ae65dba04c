package index

import (
	"sort"

	"github.com/brightpath-ai/tutorflow/internal/domain"
)

type candidate struct {
	chunk      domain.Chunk
	similarity float64 // cosine similarity to the query
	rank       int     // position in the similarity ordering, 0 = most similar
}

// selectMMR picks up to k candidates by maximal marginal relevance: each round
// takes the remaining candidate maximizing
//
//	lambda*sim(query, c) - (1-lambda)*max(sim(c, selected))
//
// Ties break by original similarity rank, then by chunk id, so results are
// deterministic. lambda=1 degenerates to pure top-k similarity.
func selectMMR(query []float32, chunks []domain.Chunk, k int, lambda float64) []candidate {
	candidates := make([]candidate, len(chunks))
	for i, c := range chunks {
		candidates[i] = candidate{chunk: c, similarity: cosineSimilarity(query, c.Embedding)}
	}

	// Rank by similarity descending, ties by chunk id.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		return candidates[i].chunk.ID < candidates[j].chunk.ID
	})
	for i := range candidates {
		candidates[i].rank = i
	}

	if k > len(candidates) {
		k = len(candidates)
	}

	var selected []candidate
	remaining := candidates

	for len(selected) < k {
		best := -1
		bestScore := 0.0
		for i, cand := range remaining {
			penalty := 0.0
			for _, s := range selected {
				if sim := cosineSimilarity(cand.chunk.Embedding, s.chunk.Embedding); sim > penalty {
					penalty = sim
				}
			}
			score := lambda*cand.similarity - (1-lambda)*penalty
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
				continue
			}
			if score == bestScore && lessByRank(cand, remaining[best]) {
				best = i
			}
		}
		selected = append(selected, remaining[best])
		remaining = append(remaining[:best:best], remaining[best+1:]...)
	}

	return selected
}

func lessByRank(a, b candidate) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	return a.chunk.ID < b.chunk.ID
}
