package stages

import (
	"context"
	"strings"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
)

type intentReply struct {
	Intent           string `json:"intent"`
	ProblemStatement string `json:"problem_statement"`
	StudentWork      string `json:"student_work"`
}

// DetectIntent classifies the submission as an evaluation or a solve request
// and separates the problem statement from any student work. An unparseable
// or unrecognized classification leaves the intent unknown; the engine
// re-enters the stage until its budget runs out.
func DetectIntent(gen Generator) engine.Handler {
	return func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
		raw, err := gen.Generate(ctx, intentPrompt(state))
		if err != nil {
			return nil, generationError(domain.StageDetectIntent, err)
		}

		var reply intentReply
		if !decodeModelJSON(raw, &reply) {
			state.Intent = domain.IntentUnknown
			return state, nil
		}

		switch strings.ToLower(strings.TrimSpace(reply.Intent)) {
		case "evaluate", "evaluation":
			state.Intent = domain.IntentEvaluate
		case "solve":
			state.Intent = domain.IntentSolve
		default:
			state.Intent = domain.IntentUnknown
			return state, nil
		}

		if reply.ProblemStatement != "" {
			state.ProblemText = reply.ProblemStatement
		}
		if state.StudentWork == "" && reply.StudentWork != "" {
			state.StudentWork = reply.StudentWork
		}
		// Evaluation without any student work cannot be graded.
		if state.Intent == domain.IntentEvaluate && strings.TrimSpace(state.StudentWork) == "" {
			state.Intent = domain.IntentSolve
		}
		return state, nil
	}
}
