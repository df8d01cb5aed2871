package routes

import (
	"storefront-api/controllers/addresses"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func AddressRoutes(app *fiber.App, a *middlewares.Auth, ctl *addresses.Controller) {
	api := app.Group("/api/addresses", a.AuthMiddleware)
	api.Get("/", ctl.GetAddresses)
	api.Post("/", ctl.AddAddress)
	api.Put("/:id", ctl.EditAddress)
	api.Post("/:id/default", ctl.SetDefaultAddress)
	api.Delete("/:id", ctl.DeleteAddress)
}
