package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-service/internal/api/http/handlers"
	"github.com/spec-kit/clinic-service/internal/auth"
	"github.com/spec-kit/clinic-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	APIPath       string
	Health        *handlers.HealthHandler
	Metrics       *handlers.MetricsHandler
	Auth          *handlers.AuthHandler
	Doctors       *handlers.DoctorHandler
	Prescriptions *handlers.PrescriptionHandler
	Gate          *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Metrics.Get)

	apiPath := cfg.APIPath
	if apiPath == "" {
		apiPath = "/api"
	}
	api := app.Group(apiPath)

	api.Post("/admin/login", cfg.Auth.LoginAdmin)
	api.Post("/doctor/login", cfg.Auth.LoginDoctor)
	api.Post("/patient/login", cfg.Auth.LoginPatient)
	api.Get("/:role/validate/:token", cfg.Auth.Validate)

	api.Get("/doctor/me", auth.RequireRole(cfg.Gate, domain.RoleDoctor), cfg.Doctors.Me)

	prescriptions := api.Group("/prescription")
	prescriptions.Post("/save/:token", cfg.Prescriptions.Save)
	prescriptions.Get("/:appointmentId/:token", cfg.Prescriptions.Get)
}
