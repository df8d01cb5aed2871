package routes

import (
	"storefront-api/controllers/products"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func ProductsRoute(app *fiber.App, a *middlewares.Auth, ctl *products.Controller) {
	api := app.Group("/api/products", middlewares.ClientID)
	api.Get("/", ctl.GetAllProducts)
	api.Get("/filters", ctl.GetFilters)
	api.Get("/popular", ctl.GetPopularProducts)
	api.Get("/:slug", ctl.FetchProductDetails)

	admin := app.Group("/api/admin/products", a.AuthMiddleware, middlewares.AdminOnly)
	admin.Get("/", ctl.AdminGetProducts)
	admin.Post("/", ctl.AddProduct)
	admin.Post("/images", ctl.UploadImage)
	admin.Delete("/images", ctl.DiscardImage)
	admin.Get("/:id", ctl.AdminGetProduct)
	admin.Put("/:id", ctl.EditProduct)
	admin.Post("/:id/archive", ctl.ArchiveProduct)
	admin.Post("/:id/unarchive", ctl.UnarchiveProduct)
	admin.Delete("/:id", ctl.DeleteProduct)
}
