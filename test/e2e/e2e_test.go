//go:build e2e

package e2e

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/service"
)

const curriculumDoc = `Column addition lines numbers up by place value. Add the ones
column first and carry any ten into the tens column.

The times tables up to ten are the foundation of multiplication. Seven times
eight is fifty six, a fact worth memorising.

Fractions are added by rewriting them over a common denominator before adding
the numerators.`

func rebuildCurriculum(t *testing.T, env *Env) {
	t.Helper()

	status, body := env.Post("/knowledge/rebuild", service.RebuildRequest{
		Document: curriculumDoc,
		Metadata: domain.ChunkMetadata{Subject: "math", Grade: "4"},
	})
	require.Equal(t, http.StatusOK, status, "rebuild failed: %s", body)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	var result service.RebuildResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Greater(t, result.ChunkCount, 0)
	assert.Equal(t, 26, result.Dimension)
}

func TestEvaluateScenario(t *testing.T) {
	gen := &scriptedGenerator{
		intentReply:   `{"intent":"evaluate","problem_statement":"25 + 17 = ?","student_work":"25 + 17 = 42"}`,
		evaluateReply: `{"is_correct":true,"score":9,"correct_answer":"42","explanation":"Correct column addition with a clean carry.","method_used":"column addition"}`,
		questionReply: `{"similar_questions":["What is 34 + 18?","What is 56 + 27?","What is 19 + 45?"]}`,
	}
	env := SetupEnv(t, gen)
	rebuildCurriculum(t, env)

	status, body := env.Post("/tutor/ask", map[string]string{
		"problem_text": "25 + 17 = ?",
		"student_work": "25 + 17 = 42",
	})
	require.Equal(t, http.StatusOK, status, "ask failed: %s", body)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	var final domain.FinalResult
	require.NoError(t, json.Unmarshal(resp.Data, &final))

	assert.Equal(t, domain.IntentEvaluate, final.Intent)
	require.NotNil(t, final.Score)
	assert.Equal(t, 9, *final.Score)
	require.NotNil(t, final.IsCorrect)
	assert.True(t, *final.IsCorrect)
	assert.Equal(t, "42", final.CorrectAnswer)
	assert.Len(t, final.SimilarQuestions, 3)
}

func TestSolveScenario(t *testing.T) {
	gen := &scriptedGenerator{
		intentReply:   `{"intent":"solve","problem_statement":"What is 7 x 8?"}`,
		solveReply:    `{"final_answer":"56","solution_steps":[{"step_number":1,"description":"recall the times table","calculation":"7 x 8","result":"56"}],"explanation":"Seven times eight is fifty six."}`,
		questionReply: `{"similar_questions":["What is 6 x 9?","What is 8 x 8?","What is 7 x 9?"]}`,
	}
	env := SetupEnv(t, gen)
	rebuildCurriculum(t, env)

	status, body := env.Post("/tutor/ask", map[string]string{
		"problem_text": "What is 7 x 8?",
	})
	require.Equal(t, http.StatusOK, status, "ask failed: %s", body)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	var final domain.FinalResult
	require.NoError(t, json.Unmarshal(resp.Data, &final))

	assert.Equal(t, domain.IntentSolve, final.Intent)
	assert.Nil(t, final.Score)
	assert.Nil(t, final.IsCorrect)
	assert.Equal(t, "56", final.CorrectAnswer)
	assert.NotEmpty(t, final.Explanation)
	assert.Len(t, final.SimilarQuestions, 3)
}

func TestAskWorksWithEmptyIndex(t *testing.T) {
	gen := &scriptedGenerator{
		intentReply:   `{"intent":"solve","problem_statement":"What is 12 / 4?"}`,
		solveReply:    `{"final_answer":"3","solution_steps":[],"explanation":"Share 12 into 4 equal groups."}`,
		questionReply: `{"similar_questions":["What is 15 / 3?"]}`,
	}
	env := SetupEnv(t, gen)

	status, body := env.Post("/tutor/ask", map[string]string{
		"problem_text": "What is 12 / 4?",
	})
	require.Equal(t, http.StatusOK, status, "ask failed: %s", body)
}

func TestUnresolvedIntentReturnsFailureReport(t *testing.T) {
	gen := &scriptedGenerator{
		intentReply: "I cannot tell what this is about.",
	}
	env := SetupEnv(t, gen)

	status, body := env.Post("/tutor/ask", map[string]string{
		"problem_text": "???",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)

	var failure struct {
		Error  string              `json:"error"`
		Stages []domain.StageError `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(body, &failure))

	assert.Contains(t, failure.Error, "giving up")
	require.NotEmpty(t, failure.Stages)
	for _, stageErr := range failure.Stages {
		assert.Equal(t, domain.StageDetectIntent, stageErr.Stage)
		assert.Equal(t, domain.ErrorKindIntentUnresolved, stageErr.Kind)
	}
}

func TestStatsReflectRebuild(t *testing.T) {
	env := SetupEnv(t, &scriptedGenerator{})

	status, body := env.Get("/knowledge/stats")
	require.Equal(t, http.StatusOK, status)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	var stats service.Stats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 0, stats.ChunkCount)

	rebuildCurriculum(t, env)

	status, body = env.Get("/knowledge/stats")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Greater(t, stats.ChunkCount, 0)
	assert.Equal(t, 26, stats.Dimension)
	assert.NotNil(t, stats.BuiltAt)
}

func TestRejectsEmptySubmission(t *testing.T) {
	env := SetupEnv(t, &scriptedGenerator{})

	status, body := env.Post("/tutor/ask", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "problem")
}

func TestAuthRequired(t *testing.T) {
	env := SetupEnv(t, &scriptedGenerator{})

	status, _ := env.PostUnauthed("/tutor/ask", map[string]string{
		"problem_text": "What is 7 x 8?",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthIsPublic(t *testing.T) {
	env := SetupEnv(t, &scriptedGenerator{})

	req, err := http.NewRequest(http.MethodGet, env.Server.URL+"/health", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
