package routes

import (
	"storefront-api/controllers/catalog"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func CatalogRoutes(app *fiber.App, a *middlewares.Auth, ctl *catalog.Controller) {
	api := app.Group("/api/catalog")
	api.Get("/brands", ctl.GetBrands)
	api.Get("/categories", ctl.GetCategories)
	api.Get("/colors", ctl.GetColors)
	api.Get("/sizes", ctl.GetSizes)

	admin := app.Group("/api/admin", a.AuthMiddleware, middlewares.AdminOnly)
	admin.Post("/brands", ctl.AddBrand)
	admin.Put("/brands/:id", ctl.EditBrand)
	admin.Delete("/brands/:id", ctl.DeleteBrand)
	admin.Post("/categories", ctl.AddCategory)
	admin.Put("/categories/:id", ctl.EditCategory)
	admin.Delete("/categories/:id", ctl.DeleteCategory)
	admin.Post("/colors", ctl.AddColor)
	admin.Put("/colors/:id", ctl.EditColor)
	admin.Delete("/colors/:id", ctl.DeleteColor)
	admin.Post("/sizes", ctl.AddSize)
	admin.Put("/sizes/:id", ctl.EditSize)
	admin.Delete("/sizes/:id", ctl.DeleteSize)
}
