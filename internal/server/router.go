package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpath-ai/tutorflow/internal/api"
	"github.com/brightpath-ai/tutorflow/internal/api/handlers"
	"github.com/brightpath-ai/tutorflow/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator    middleware.AuthValidator
	AuthEnabled      bool
	TutorHandler     *handlers.TutorHandler
	KnowledgeHandler *handlers.KnowledgeHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(middleware.APIKeyAuth(cfg.AuthValidator))
		}

		r.Post("/tutor/ask", cfg.TutorHandler.Ask)

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/rebuild", cfg.KnowledgeHandler.Rebuild)
			r.Get("/stats", cfg.KnowledgeHandler.Stats)
		})
	})

	return r
}
