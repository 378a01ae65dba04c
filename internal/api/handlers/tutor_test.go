package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/service"
)

type MockTutorService struct {
	mock.Mock
}

func (m *MockTutorService) Ask(ctx context.Context, req service.AskRequest) (*domain.FinalResult, *domain.FailureReport, error) {
	args := m.Called(ctx, req)
	var final *domain.FinalResult
	if args.Get(0) != nil {
		final = args.Get(0).(*domain.FinalResult)
	}
	var report *domain.FailureReport
	if args.Get(1) != nil {
		report = args.Get(1).(*domain.FailureReport)
	}
	return final, report, args.Error(2)
}

func postAsk(t *testing.T, h *TutorHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tutor/ask", bytes.NewReader(payload))
	h.Ask(rec, req)
	return rec
}

func TestAsk_Success(t *testing.T) {
	svc := new(MockTutorService)
	score := 9
	correct := true
	svc.On("Ask", mock.Anything, mock.Anything).Return(&domain.FinalResult{
		Intent:        domain.IntentEvaluate,
		Score:         &score,
		IsCorrect:     &correct,
		CorrectAnswer: "42",
	}, nil, nil)

	rec := postAsk(t, NewTutorHandler(svc), service.AskRequest{ProblemText: "25 + 17 = ?", StudentWork: "42"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.FinalResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.IntentEvaluate, resp.Data.Intent)
	require.NotNil(t, resp.Data.Score)
	assert.Equal(t, 9, *resp.Data.Score)
}

func TestAsk_WorkflowFailure(t *testing.T) {
	svc := new(MockTutorService)
	svc.On("Ask", mock.Anything, mock.Anything).Return(nil, &domain.FailureReport{
		Errors: []domain.StageError{
			{Stage: domain.StageDetectIntent, Kind: domain.ErrorKindIntentUnresolved, Message: "giving up after 3 attempts"},
		},
	}, nil)

	rec := postAsk(t, NewTutorHandler(svc), service.AskRequest{ProblemText: "???"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error  string              `json:"error"`
		Stages []domain.StageError `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Stages, 1)
	assert.Equal(t, domain.ErrorKindIntentUnresolved, resp.Stages[0].Kind)
}

func TestAsk_ValidationError(t *testing.T) {
	svc := new(MockTutorService)
	svc.On("Ask", mock.Anything, mock.Anything).Return(nil, nil, domain.ErrEmptyProblem)

	rec := postAsk(t, NewTutorHandler(svc), service.AskRequest{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAsk_MalformedBody(t *testing.T) {
	svc := new(MockTutorService)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tutor/ask", bytes.NewReader([]byte("{not json")))
	NewTutorHandler(svc).Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "Ask", mock.Anything, mock.Anything)
}
