package handlers

import (
	"net/http"

	"github.com/findosh/showroom/internal/media"
	"github.com/findosh/showroom/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Router builds the HTTP routes. Metrics are registered with reg and
// exposed at /metrics.
func (h *Handler) Router(logger zerolog.Logger, reg *prometheus.Registry) http.Handler {
	metrics := middleware.NewMetrics(reg)
	authMiddleware := middleware.NewAuth(h.authService)
	requireAuth := authMiddleware.RequireAuth
	optionalAuth := authMiddleware.OptionalAuth

	r := chi.NewRouter()
	r.Use(
		middleware.Logger(logger),
		metrics.Handler,
		middleware.Recover,
		middleware.SecurityHeaders,
		cors.New(cors.Options{
			AllowedOrigins:   h.cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           3600,
		}).Handler,
	)
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if local, ok := h.media.(*media.LocalStore); ok {
		r.Handle(media.URLPrefix+"/*", http.StripPrefix(media.URLPrefix, local.Handler()))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(requireAuth).Get("/me", h.Me)
			r.With(requireAuth).Post("/change-password", h.ChangePassword)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.With(optionalAuth).Get("/", h.ListVehicles)
			r.With(requireAuth).Post("/", h.CreateVehicle)
			r.Get("/brands", h.Brands)
			r.With(requireAuth).Get("/stats", h.VehicleStats)
			r.With(requireAuth).Post("/import", h.ImportVehicles)
			r.Get("/import/template", h.ImportTemplate)

			r.Get("/{id}", h.GetVehicle)
			r.With(requireAuth).Put("/{id}", h.UpdateVehicle)
			r.With(requireAuth).Delete("/{id}", h.DeleteVehicle)
			r.With(requireAuth).Post("/{id}/images", h.UploadVehicleImages)
			r.With(requireAuth).Delete("/{id}/images/{imageId}", h.DeleteVehicleImage)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", h.CreateContact)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", h.ListContacts)
				r.Get("/unread-count", h.UnreadContacts)
				r.Get("/{id}", h.GetContact)
				r.Put("/{id}/read", h.MarkContactRead)
				r.Delete("/{id}", h.DeleteContact)
			})
		})

		r.Route("/evaluations", func(r chi.Router) {
			r.Post("/", h.CreateEvaluation)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", h.ListEvaluations)
				r.Get("/pending-count", h.PendingEvaluations)
				r.Get("/{id}", h.GetEvaluation)
				r.Put("/{id}/status", h.UpdateEvaluationStatus)
				r.Delete("/{id}", h.DeleteEvaluation)
			})
		})

		r.Route("/banners", func(r chi.Router) {
			r.With(optionalAuth).Get("/", h.ListBanners)
			r.With(requireAuth).Post("/", h.CreateBanner)
			r.Get("/{id}", h.GetBanner)
			r.With(requireAuth).Put("/{id}", h.UpdateBanner)
			r.With(requireAuth).Delete("/{id}", h.DeleteBanner)
		})

		r.Route("/sellers", func(r chi.Router) {
			r.With(optionalAuth).Get("/", h.ListSellers)
			r.With(requireAuth).Post("/", h.CreateSeller)
			r.With(requireAuth).Put("/{id}", h.UpdateSeller)
			r.With(requireAuth).Delete("/{id}", h.DeleteSeller)
		})

		r.Get("/settings", h.GetSettings)
		r.With(requireAuth).Put("/settings", h.UpdateSettings)

		r.With(requireAuth).Get("/stats", h.DashboardStats)
	})

	return r
}
