package stages

import (
	"context"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/engine"
)

type questionsReply struct {
	SimilarQuestions []string `json:"similar_questions"`
}

// fallbackQuestions keeps the final result useful when question generation
// replies with something unparseable.
var fallbackQuestions = []string{
	"Practice more problems like this one.",
	"Try solving a similar exercise from your textbook.",
	"Make up your own version of this problem and solve it.",
}

// GenerateQuestions produces practice questions similar to the problem.
func GenerateQuestions(gen Generator) engine.Handler {
	return func(ctx context.Context, state *domain.WorkflowState) (*domain.WorkflowState, *domain.StageError) {
		raw, err := gen.Generate(ctx, questionsPrompt(state))
		if err != nil {
			return nil, generationError(domain.StageGenerateQuestions, err)
		}

		var reply questionsReply
		if !decodeModelJSON(raw, &reply) || len(reply.SimilarQuestions) == 0 {
			state.SimilarQuestions = append([]string(nil), fallbackQuestions...)
			return state, nil
		}

		state.SimilarQuestions = reply.SimilarQuestions
		return state, nil
	}
}
