package routes

import (
	"storefront-api/controllers/accounts"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func AccountRoute(app *fiber.App, a *middlewares.Auth, ctl *accounts.Controller) {
	app.Post("/api/update-profile", a.AuthMiddleware, ctl.UpdateUserProfile)
	app.Put("/api/settings", a.AuthMiddleware, ctl.UpdateSettings)

	admin := app.Group("/api/admin/users", a.AuthMiddleware, middlewares.AdminOnly)
	admin.Get("/", ctl.AdminGetUsers)
	admin.Patch("/:id", ctl.AdminUpdateUser)
	admin.Delete("/:id", ctl.AdminDeactivateUser)
}
