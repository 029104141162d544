package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every endpoint with the shared middleware stack.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "x-api-key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(h.SessionMiddleware)

		r.Get("/wishes-import/{uid}", h.GetImportStatus)
		r.Get("/gi/wishes-stats/{uid}", h.GetWishesStats)
		r.Get("/users/me/uids", h.GetMyUIDs)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)
			r.Post("/paimon-wishes-import", h.ImportPaimonWishes)
			r.Put("/achievements/{id}/comment", h.PutAchievementComment)
			r.Delete("/achievements/{id}/comment", h.DeleteAchievementComment)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.PrivateMiddleware)
			r.Get("/pages/community-tier-list", h.GetCommunityTierList)
		})
	})

	return r
}
