package stages

import (
	"context"
	"strings"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
)

// Solve produces a step-by-step solution for the problem, grounded in the
// retrieved curriculum context.
func Solve(gen Generator) engine.Handler {
	return func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
		raw, err := gen.Generate(ctx, solvePrompt(state))
		if err != nil {
			return nil, generationError(domain.StageSolve, err)
		}

		var result domain.SolutionResult
		if !decodeModelJSON(raw, &result) || strings.TrimSpace(result.FinalAnswer) == "" {
			state.Solution = &domain.SolutionResult{
				FinalAnswer: "Unable to determine",
				Explanation: raw,
			}
			return state, nil
		}

		state.Solution = &result
		return state, nil
	}
}
