package routes

import (
	"storefront-api/controllers/cart"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func CartRoutes(app *fiber.App, ctl *cart.Controller) {
	api := app.Group("/api/cart", middlewares.ClientID)
	api.Get("/", ctl.GetCart)
	api.Get("/totals", ctl.GetCartTotals)
	api.Post("/", ctl.AddToCart)
	api.Put("/", ctl.UpdateCartQuantity)
	api.Post("/remove", ctl.RemoveFromCart)
	api.Delete("/", ctl.ClearCart)

	wishlist := app.Group("/api/wishlist", middlewares.ClientID)
	wishlist.Get("/", ctl.GetWishlist)
	wishlist.Post("/:productId", ctl.ToggleWishlist)
	wishlist.Delete("/:productId", ctl.RemoveFromWishlist)
	wishlist.Delete("/", ctl.ClearWishlist)

	history := app.Group("/api/history", middlewares.ClientID)
	history.Get("/", ctl.GetHistory)
	history.Delete("/", ctl.ClearHistory)
}
