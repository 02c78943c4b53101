package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kozaktomas/attendance-gate/internal/web/handlers"
)

func (s *Server) setupRoutes(deps Deps) {
	verifyHandler := handlers.NewVerifyHandler(deps.Verifier)
	descriptorsHandler := handlers.NewDescriptorsHandler(deps.Enroller)
	identifyHandler := handlers.NewIdentifyHandler(deps.Index, deps.Policies, s.config.Verification.IdentifyLimit)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Verifier)

	// Health check and metrics (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		// Verification
		r.Post("/attendance/verify", verifyHandler.Verify)
		r.Post("/attendance/identify", identifyHandler.Identify)
		r.Get("/attendance/{employeeID}", attendanceHandler.Get)

		// Enrollment
		r.Post("/employees/{employeeID}/descriptors", descriptorsHandler.Enroll)
		r.Get("/employees/{employeeID}/descriptors", descriptorsHandler.List)
	})
}
