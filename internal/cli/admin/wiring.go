package admin

import (
	"time"

	"github.com/brightpath-ai/tutorflow/internal/chunker"
	"github.com/brightpath-ai/tutorflow/internal/config"
	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
	"github.com/brightpath-ai/tutorflow/internal/stages"
)

func chunkConfig(cfg *config.Config) chunker.Config {
	return chunker.Config{
		ChunkSize: cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
	}
}

func retrievalConfig(cfg *config.Config) stages.RetrievalConfig {
	return stages.RetrievalConfig{
		K:               cfg.RetrievalK,
		DiversityLambda: cfg.DiversityLambda,
		MinSimilarity:   cfg.MinSimilarity,
	}
}

// engineConfig applies the configured attempt and timeout budgets to every
// workflow stage.
func engineConfig(cfg *config.Config) engine.Config {
	allStages := []domain.Stage{
		domain.StageDetectIntent,
		domain.StageRetrieveContext,
		domain.StageEvaluate,
		domain.StageSolve,
		domain.StageGenerateQuestions,
		domain.StageAssemble,
	}

	out := engine.Config{
		MaxAttempts: make(map[domain.Stage]int, len(allStages)),
		Timeouts:    make(map[domain.Stage]time.Duration, len(allStages)),
	}
	for _, stage := range allStages {
		out.MaxAttempts[stage] = cfg.StageMaxAttempts
		out.Timeouts[stage] = cfg.StageTimeout
	}
	return out
}
