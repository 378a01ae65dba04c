package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/brightpath-ai/tutorflow/internal/api"
	"github.com/brightpath-ai/tutorflow/internal/domain"
	"github.com/brightpath-ai/tutorflow/internal/service"
)

type TutorService interface {
	Ask(ctx context.Context, req service.AskRequest) (*domain.FinalResult, *domain.FailureReport, error)
}

type TutorHandler struct {
	svc TutorService
}

func NewTutorHandler(svc TutorService) *TutorHandler {
	return &TutorHandler{svc: svc}
}

// Ask runs the tutoring workflow for one submission.
func (h *TutorHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req service.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	final, report, err := h.svc.Ask(r.Context(), req)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	if report != nil {
		api.Failure(w, report)
		return
	}

	api.Success(w, http.StatusOK, final)
}
