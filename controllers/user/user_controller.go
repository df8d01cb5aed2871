package user

import (
	"storefront-api/controllers/request"
	"storefront-api/responses"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	svc *Service
}

func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

func (ctl *Controller) UserSignUp(c *fiber.Ctx) error {
	var reqBody RegisterInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	u, err := ctl.svc.Register(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "User created successfully, confirmation email sent", &fiber.Map{"data": u})
}

func (ctl *Controller) UserSignIn(c *fiber.Ctx) error {
	var reqBody LoginInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	res, err := ctl.svc.Login(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	if res.TwoFactorRequired {
		return responses.OK(c, "Two-factor code sent", &fiber.Map{"twoFactor": true})
	}
	return responses.OK(c, "User signed in successfully", &fiber.Map{"data": res})
}

func (ctl *Controller) OAuthLogin(c *fiber.Ctx) error {
	var reqBody struct {
		Provider string `json:"provider"`
		Token    string `json:"token"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	res, err := ctl.svc.OAuthLogin(c.UserContext(), reqBody.Provider, reqBody.Token)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "User signed in successfully", &fiber.Map{"data": res})
}

// UserSignOut is stateless; the client drops its token.
func (ctl *Controller) UserSignOut(c *fiber.Ctx) error {
	if c.Get("Authorization") == "" {
		return responses.Unauthorized(c, "No auth token, access denied")
	}
	return responses.OK(c, "User signed out successfully", nil)
}

func (ctl *Controller) VerifyEmail(c *fiber.Ctx) error {
	var reqBody struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if err := ctl.svc.VerifyEmail(c.UserContext(), reqBody.Token); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Email verified", nil)
}

func (ctl *Controller) ForgotPassword(c *fiber.Ctx) error {
	var reqBody struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if err := ctl.svc.RequestPasswordReset(c.UserContext(), reqBody.Email); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Reset email sent", nil)
}

func (ctl *Controller) ResetPassword(c *fiber.Ctx) error {
	var reqBody ResetInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	if err := ctl.svc.ResetPassword(c.UserContext(), reqBody); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Password updated", nil)
}

func (ctl *Controller) GetUserProfile(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	u, err := ctl.svc.GetProfile(c.UserContext(), actor.UserID)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "User profile fetched successfully", &fiber.Map{"data": u})
}
