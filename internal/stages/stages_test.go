package stages

import (
	"context"
	"errors"
	"testing"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type staticEmbedder struct {
	vec []float32
}

func (e *staticEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return e.vec, nil
}

func newState() *domain.WorkflowState {
	return domain.NewWorkflowState("25 + 17 = ?", "", "")
}

func TestDetectIntent_Evaluate(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"intent":"evaluate","problem_statement":"25 + 17 = ?","student_work":"25 + 17 = 42"}`, nil)

	state, stageErr := DetectIntent(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Equal(t, domain.IntentEvaluate, state.Intent)
	assert.Equal(t, "25 + 17 = ?", state.ProblemText)
	assert.Equal(t, "25 + 17 = 42", state.StudentWork)
}

func TestDetectIntent_FencedJSON(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return("```json\n{\"intent\":\"solve\",\"problem_statement\":\"what is 7 x 8\"}\n```", nil)

	state, stageErr := DetectIntent(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Equal(t, domain.IntentSolve, state.Intent)
}

func TestDetectIntent_UnparseableLeavesUnknown(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("I am not sure what the student wants.", nil)

	state, stageErr := DetectIntent(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Equal(t, domain.IntentUnknown, state.Intent)
}

func TestDetectIntent_EvaluateWithoutWorkBecomesSolve(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"intent":"evaluate","problem_statement":"25 + 17 = ?","student_work":""}`, nil)

	state, stageErr := DetectIntent(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Equal(t, domain.IntentSolve, state.Intent)
}

func TestDetectIntent_ProviderErrorIsRetriable(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("provider down"))

	_, stageErr := DetectIntent(gen)(context.Background(), newState())
	require.NotNil(t, stageErr)
	assert.Equal(t, domain.ErrorKindGeneration, stageErr.Kind)
	assert.True(t, stageErr.Retriable)
}

func TestRetrieveContext_PopulatesChunks(t *testing.T) {
	ix, err := index.FromChunks([]domain.Chunk{
		{ID: "c1", Text: "addition facts", Embedding: []float32{1, 0}},
		{ID: "c2", Text: "fractions", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)
	store := index.NewStore()
	store.Swap(ix)

	handler := RetrieveContext(store, &staticEmbedder{vec: []float32{1, 0}}, RetrievalConfig{K: 1, DiversityLambda: 1})
	state, stageErr := handler(context.Background(), newState())
	require.Nil(t, stageErr)
	require.Len(t, state.RetrievedContext, 1)
	assert.Equal(t, "c1", state.RetrievedContext[0].ID)
}

func TestRetrieveContext_EmptyIndexProceeds(t *testing.T) {
	handler := RetrieveContext(index.NewStore(), &staticEmbedder{}, RetrievalConfig{K: 3, DiversityLambda: 1})
	state, stageErr := handler(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Empty(t, state.RetrievedContext)
}

func TestEvaluate_ParsesResult(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"is_correct":true,"score":10,"correct_answer":"42","explanation":"Correct sum.","method_used":"column addition"}`, nil)

	state := newState()
	state.StudentWork = "25 + 17 = 42"
	state, stageErr := Evaluate(gen)(context.Background(), state)
	require.Nil(t, stageErr)
	require.NotNil(t, state.Evaluation)
	assert.True(t, state.Evaluation.IsCorrect)
	assert.Equal(t, 10, state.Evaluation.Score)
	assert.Equal(t, "42", state.Evaluation.CorrectAnswer)
}

func TestEvaluate_ClampsScore(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"is_correct":false,"score":37,"correct_answer":"42","explanation":"off"}`, nil)

	state, stageErr := Evaluate(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Equal(t, 10, state.Evaluation.Score)
}

func TestEvaluate_FallbackOnUnparseableReply(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("The answer looks wrong to me.", nil)

	state, stageErr := Evaluate(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	require.NotNil(t, state.Evaluation)
	assert.Equal(t, 5, state.Evaluation.Score)
	assert.False(t, state.Evaluation.IsCorrect)
}

func TestSolve_ParsesSteps(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"final_answer":"56","solution_steps":[{"step_number":1,"description":"multiply","calculation":"7 x 8","result":"56"}],"explanation":"Times table."}`, nil)

	state, stageErr := Solve(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	require.NotNil(t, state.Solution)
	assert.Equal(t, "56", state.Solution.FinalAnswer)
	require.Len(t, state.Solution.Steps, 1)
	assert.Equal(t, "7 x 8", state.Solution.Steps[0].Calculation)
}

func TestGenerateQuestions_FallbackOnUnparseableReply(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("here are some questions", nil)

	state, stageErr := GenerateQuestions(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Equal(t, fallbackQuestions, state.SimilarQuestions)
}

func TestGenerateQuestions_ParsesList(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).
		Return(`{"similar_questions":["What is 13 + 29?","What is 48 + 17?"]}`, nil)

	state, stageErr := GenerateQuestions(gen)(context.Background(), newState())
	require.Nil(t, stageErr)
	assert.Len(t, state.SimilarQuestions, 2)
}

func TestAssemble_EvaluateBranch(t *testing.T) {
	state := newState()
	state.Intent = domain.IntentEvaluate
	state.Evaluation = &domain.EvaluationResult{
		Score: 10, IsCorrect: true, CorrectAnswer: "42", Explanation: "Correct.",
	}
	state.SimilarQuestions = []string{"q1"}

	state, stageErr := Assemble()(context.Background(), state)
	require.Nil(t, stageErr)
	require.NotNil(t, state.Final)
	require.NotNil(t, state.Final.Score)
	assert.Equal(t, 10, *state.Final.Score)
	require.NotNil(t, state.Final.IsCorrect)
	assert.True(t, *state.Final.IsCorrect)
	assert.Equal(t, "42", state.Final.CorrectAnswer)
}

func TestAssemble_SolveBranchLeavesScoreNil(t *testing.T) {
	state := newState()
	state.Intent = domain.IntentSolve
	state.Solution = &domain.SolutionResult{FinalAnswer: "56", Explanation: "Times table."}

	state, stageErr := Assemble()(context.Background(), state)
	require.Nil(t, stageErr)
	require.NotNil(t, state.Final)
	assert.Nil(t, state.Final.Score)
	assert.Nil(t, state.Final.IsCorrect)
	assert.Equal(t, "56", state.Final.CorrectAnswer)
}
