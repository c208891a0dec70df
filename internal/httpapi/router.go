package httpapi

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

// NewRouter wires the API routes
func NewRouter(h *Handler, allowedOrigins []string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowCredentials: true,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			MaxAge:           300,
		}))
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokens.JWTAuth()))
			r.Use(AuthRequired)

			r.Get("/me", h.Me)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/today", h.Today)
				r.Post("/clock-in", h.ClockIn)
				r.Post("/clock-out", h.ClockOut)
				r.Post("/reset-today", h.ResetToday)

				r.Route("/months/{year}/{month}", func(r chi.Router) {
					r.Get("/", h.ViewMonth)
					r.Put("/", h.SaveMonth)
					r.Post("/preview", h.PreviewMonth)
					r.Get("/export", h.ExportMonth)
				})

				r.Get("/years/{year}", h.YearProgress)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(AdminOnly)
				r.Get("/employees", h.ListEmployees)
				r.Get("/plans/{year}", h.ListPlans)
				r.Put("/plans/{year}/{employeeID}", h.SetPlan)
			})
		})
	})

	return r
}
