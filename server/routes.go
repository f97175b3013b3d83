package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.health)
	if s.cfg.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Route("/v1", func(r chi.Router) {
		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/by-id", s.recommendByID)
			r.Post("/by-text", s.recommendByText)
			r.Get("/health", s.recommendationsHealth)
		})
		r.Route("/cars", func(r chi.Router) {
			r.Get("/", s.listCars)
			r.Get("/{carID}", s.getCar)
		})
	})
}
