package server

import (
	"net/http"

	"github.com/clearhaven/lore/internal/api"
	"github.com/clearhaven/lore/internal/api/handlers"
	"github.com/clearhaven/lore/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	KnowledgeHandler *handlers.KnowledgeHandler
	AskHandler       *handlers.AskHandler
	ProfileHandler   *handlers.ProfileHandler
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

	r.Route("/knowledge", func(r chi.Router) {
		r.Post("/", cfg.KnowledgeHandler.Create)
		r.Get("/", cfg.KnowledgeHandler.List)
		r.Post("/import", cfg.KnowledgeHandler.Import)
		r.Get("/{id}", cfg.KnowledgeHandler.Get)
		r.Put("/{id}", cfg.KnowledgeHandler.Update)
		r.Delete("/{id}", cfg.KnowledgeHandler.Delete)
	})

	r.Post("/search", cfg.AskHandler.Search)
	r.Post("/ask", cfg.AskHandler.Ask)
	r.Get("/stats", cfg.KnowledgeHandler.Stats)

	if cfg.ProfileHandler != nil {
		r.Get("/profile", cfg.ProfileHandler.Get)
		r.Put("/profile", cfg.ProfileHandler.Update)
	}

	return r
}
