package routes

import (
	"storefront-api/controllers/user"
	"storefront-api/middlewares"

	"github.com/gofiber/fiber/v2"
)

func UserRoute(app *fiber.App, a *middlewares.Auth, ctl *user.Controller) {
	api := app.Group("/api/auth")
	api.Post("/signup", ctl.UserSignUp)
	api.Post("/signin", ctl.UserSignIn)
	api.Post("/signout", ctl.UserSignOut)
	api.Post("/oauth", ctl.OAuthLogin)
	api.Post("/verify-email", ctl.VerifyEmail)
	api.Post("/forgot-password", ctl.ForgotPassword)
	api.Post("/reset-password", ctl.ResetPassword)
	api.Get("/me", a.AuthMiddleware, ctl.GetUserProfile)
}
