package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/predictions", func(r chi.Router) {
			r.Get("/churn", h.GetChurnPredictions)
			r.Get("/churn/{customerID}", h.GetChurnPrediction)
			r.Get("/high-risk", h.GetHighRiskCustomers)
			r.Get("/stats/distribution", h.GetRiskDistribution)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Get("/{customerID}", h.GetCustomer)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/sms/retention", h.SendRetentionCampaign)
			r.Get("/sms/test", h.SendTestSMS)
			r.Get("/status", h.GetCampaignStatus)
		})

		r.Get("/analytics/summary", h.GetAnalyticsSummary)
	})

	return r
}
