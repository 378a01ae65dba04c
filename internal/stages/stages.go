// Package stages implements the workflow stage handlers. Each handler is a
// function value conforming to the engine contract: it reads the fields it
// needs from its copy of the state and writes only its own output fields.
package stages

import (
	"context"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
	"github.com/brightpath-ai/tutorflow/internal/index"
)

// Generator produces text for a prompt. Implemented by the OpenAI client and
// by test fakes.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RetrievalConfig controls the context retrieval stage.
type RetrievalConfig struct {
	K               int
	DiversityLambda float64
	MinSimilarity   float64
	Filter          domain.ChunkMetadata
}

// All builds the full handler map for the workflow engine.
func All(gen Generator, store *index.Store, embedder index.Embedder, retrieval RetrievalConfig) map[domain.Stage]engine.Handler {
	return map[domain.Stage]engine.Handler{
		domain.StageDetectIntent:      DetectIntent(gen),
		domain.StageRetrieveContext:   RetrieveContext(store, embedder, retrieval),
		domain.StageEvaluate:          Evaluate(gen),
		domain.StageSolve:             Solve(gen),
		domain.StageGenerateQuestions: GenerateQuestions(gen),
		domain.StageAssemble:          Assemble(),
	}
}

// generationError wraps a provider failure as a retriable stage error.
func generationError(stage domain.Stage, err error) *domain.StageError {
	return &domain.StageError{
		Stage:     stage,
		Kind:      domain.ErrorKindGeneration,
		Message:   err.Error(),
		Retriable: true,
	}
}
