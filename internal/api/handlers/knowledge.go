package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/brightpath-ai/tutorflow/internal/api"
	"github.com/brightpath-ai/tutorflow/internal/service"
)

type KnowledgeService interface {
	Rebuild(ctx context.Context, req service.RebuildRequest) (*service.RebuildResult, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

// RebuildEnqueuer queues a rebuild for background processing.
type RebuildEnqueuer interface {
	Enqueue(req service.RebuildRequest) int
}

type KnowledgeHandler struct {
	svc   KnowledgeService
	queue RebuildEnqueuer
}

func NewKnowledgeHandler(svc KnowledgeService, queue RebuildEnqueuer) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc, queue: queue}
}

// Rebuild ingests a curriculum document and rebuilds the index. With ?async=1
// (and a configured queue) the rebuild runs in the background worker instead.
func (h *KnowledgeHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	var req service.RebuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if r.URL.Query().Get("async") == "1" && h.queue != nil {
		depth := h.queue.Enqueue(req)
		api.Success(w, http.StatusAccepted, map[string]int{"queued": depth})
		return
	}

	result, err := h.svc.Rebuild(r.Context(), req)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, result)
}

// Stats reports the state of the served index.
func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, stats)
}
