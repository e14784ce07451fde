package server

import (
	"net/http"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/handlers"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	AuthValidator  middleware.AuthValidator
	DatasetHandler *handlers.DatasetHandler
	SearchHandler  *handlers.SearchHandler
	RunHandler     *handlers.RunHandler
	MarkHandler    *handlers.MarkHandler
	UploadHandler  *handlers.UploadHandler
	AuthHandler    *handlers.AuthHandler
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
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Route("/datasets", func(r chi.Router) {
			r.Post("/", cfg.DatasetHandler.Create)
			r.Get("/", cfg.DatasetHandler.List)
			r.Get("/{id}", cfg.DatasetHandler.Get)
			r.Get("/{id}/cells", cfg.DatasetHandler.GetCells)

			r.Post("/{id}/search", cfg.SearchHandler.SearchNow)
			r.Post("/{id}/runs", cfg.SearchHandler.Enqueue)

			r.Get("/{id}/marks", cfg.MarkHandler.List)
			r.Delete("/{id}/marks", cfg.MarkHandler.Clear)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/{id}", cfg.RunHandler.Get)
			r.Post("/{id}/cancel", cfg.RunHandler.Cancel)
			r.Get("/{id}/results", cfg.RunHandler.ListResults)
			r.Post("/{id}/results/{ordinal}/mark", cfg.MarkHandler.MarkResult)
		})

		r.Route("/uploads", func(r chi.Router) {
			r.Post("/init", cfg.UploadHandler.Init)
			r.Post("/complete", cfg.UploadHandler.Complete)
		})
	})

	r.Post("/workspaces", cfg.AuthHandler.CreateWorkspace)
	r.Get("/workspaces", cfg.AuthHandler.ListWorkspaces)
	r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)

	return r
}
