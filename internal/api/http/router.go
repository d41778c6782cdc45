package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/thiloilg/page-for-artists.com/internal/api/http/handlers"
	"github.com/thiloilg/page-for-artists.com/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Prefix         string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Subscriptions  *handlers.SubscriptionHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Each endpoint accepts exactly one method;
// the router answers other methods with 405.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	api := app.Group(cfg.Prefix)

	api.Post("/login", cfg.Auth.Login)
	api.Post("/refresh-token", cfg.Auth.Refresh)
	api.Post("/logout", cfg.Auth.Logout)

	api.Post("/create-subscription", cfg.Subscriptions.Create)
	api.Get("/handle-subscription-success", cfg.Subscriptions.Reconcile)

	api.Get("/get-link-trackings", cfg.AuthMiddleware.Handle, cfg.Dashboard.LinkTrackings)
	api.Post("/get-analytics", cfg.AuthMiddleware.Handle, cfg.Dashboard.Analytics)
}
