package stages

import (
	"context"
	"log"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
	"github.com/brightpath-ai/tutorflow/internal/index"
)

// RetrieveContext queries the live curriculum index for chunks relevant to
// the problem. Retrieval is advisory: an empty index, no matches, or even a
// failed query leaves the context empty and the workflow proceeds.
func RetrieveContext(store *index.Store, embedder index.Embedder, cfg RetrievalConfig) engine.Handler {
	return func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
		ix := store.Current()
		if ix.Size() == 0 {
			state.RetrievedContext = nil
			return state, nil
		}

		chunks, err := ix.Query(ctx, embedder, state.ProblemText, index.QueryOptions{
			K:               cfg.K,
			DiversityLambda: cfg.DiversityLambda,
			MinSimilarity:   cfg.MinSimilarity,
			Filter:          cfg.Filter,
		})
		if err != nil {
			log.Printf("context retrieval failed, proceeding without context: %v", err)
			state.RetrievedContext = nil
			return state, nil
		}

		state.RetrievedContext = chunks
		return state, nil
	}
}
