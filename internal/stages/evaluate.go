package stages

import (
	"context"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
)

// Evaluate grades the student's work against the problem and the retrieved
// curriculum context. A provider failure is retriable; an unparseable reply
// degrades to a conservative fallback evaluation so the workflow can finish.
func Evaluate(gen Generator) engine.Handler {
	return func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
		raw, err := gen.Generate(ctx, evaluatePrompt(state))
		if err != nil {
			return nil, generationError(domain.StageEvaluate, err)
		}

		var result domain.EvaluationResult
		if !decodeModelJSON(raw, &result) {
			state.Evaluation = fallbackEvaluation(raw)
			return state, nil
		}

		if result.Score < 0 {
			result.Score = 0
		}
		if result.Score > 10 {
			result.Score = 10
		}
		state.Evaluation = &result
		return state, nil
	}
}

func fallbackEvaluation(raw string) *domain.EvaluationResult {
	return &domain.EvaluationResult{
		Score:         5,
		IsCorrect:     false,
		CorrectAnswer: "Unable to determine",
		Explanation:   raw,
		AreasForImprovement: []string{
			"Review the solution steps with your teacher.",
		},
	}
}
