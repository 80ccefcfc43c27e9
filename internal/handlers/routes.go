package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes returns the router for the recommendation API. An empty
// allowedOrigins list allows any origin.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthcheck", h.HandleHealthcheck)
	router.Route("/api", func(r chi.Router) {
		r.Get("/genres", h.HandleGenres)
		r.Get("/recommendations", h.HandleRecommendations)
		r.Get("/books/{isbn}", h.HandleBook)
	})

	return router
}
