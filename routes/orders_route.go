package routes

import (
	"storefront-api/controllers/orders"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App, a *middlewares.Auth, ctl *orders.Controller) {
	api := app.Group("/api/orders", middlewares.ClientID, a.AuthMiddleware)
	api.Post("/", ctl.CreateOrder)
	api.Post("/checkout", ctl.Checkout)
	api.Get("/", ctl.GetOrders)
	api.Get("/:id", ctl.GetOrderById)
	api.Delete("/:id", ctl.DeleteOrder)
	api.Post("/:id/payment", ctl.CreatePayment)
	api.Post("/:id/verify-payment", ctl.VerifyPayment)

	admin := app.Group("/api/admin/orders", a.AuthMiddleware, middlewares.AdminOnly)
	admin.Get("/", ctl.AdminGetOrders)
	admin.Get("/unread-count", ctl.UnreadCount)
	admin.Get("/:id", ctl.GetOrderById)
	admin.Delete("/:id", ctl.DeleteOrder)
	admin.Post("/:id/paid", ctl.MarkPaid)
	admin.Post("/:id/delivered", ctl.MarkDelivered)
}
