package routes

import (
	"storefront-api/controllers/analytics"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func AnalyticsRoutes(app *fiber.App, a *middlewares.Auth, ctl *analytics.Controller) {
	app.Get("/api/admin/analytics", a.AuthMiddleware, middlewares.AdminOnly, ctl.GetOverview)
}
