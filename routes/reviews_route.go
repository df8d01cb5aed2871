package routes

import (
	"storefront-api/controllers/reviews"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func ReviewRoutes(app *fiber.App, a *middlewares.Auth, ctl *reviews.Controller) {
	api := app.Group("/api/reviews")
	api.Get("/product/:id", ctl.GetProductReviews)
	api.Get("/mine", a.AuthMiddleware, ctl.GetMyReviews)
	api.Post("/", a.AuthMiddleware, ctl.AddReview)
	api.Delete("/:id", a.AuthMiddleware, ctl.DeleteReview)
}
