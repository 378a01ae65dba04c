package stages

import (
	"context"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
)

// Assemble shapes the externally visible result from fields validated by the
// upstream stages. It only reads; it cannot fail.
func Assemble() engine.Handler {
	return func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
		final := &domain.FinalResult{
			Intent:           state.Intent,
			SimilarQuestions: state.SimilarQuestions,
		}

		switch {
		case state.Intent == domain.IntentEvaluate && state.Evaluation != nil:
			score := state.Evaluation.Score
			correct := state.Evaluation.IsCorrect
			final.Score = &score
			final.IsCorrect = &correct
			final.CorrectAnswer = state.Evaluation.CorrectAnswer
			final.Explanation = state.Evaluation.Explanation

		case state.Intent == domain.IntentSolve && state.Solution != nil:
			final.CorrectAnswer = state.Solution.FinalAnswer
			final.Explanation = state.Solution.Explanation
		}

		state.Final = final
		return state, nil
	}
}
