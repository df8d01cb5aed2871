package accounts

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

func (ctl *Controller) UpdateUserProfile(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody ProfileInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	u, err := ctl.svc.UpdateProfile(c.UserContext(), actor.UserID, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Profile updated successfully", &fiber.Map{"data": u})
}

func (ctl *Controller) UpdateSettings(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody SettingsInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	res, err := ctl.svc.UpdateSettings(c.UserContext(), actor.UserID, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	message := "Settings updated"
	if res.VerificationSent {
		message = "Settings updated, confirmation email sent"
	}
	return responses.OK(c, message, &fiber.Map{"data": res.User, "verificationSent": res.VerificationSent})
}

func (ctl *Controller) AdminGetUsers(c *fiber.Ctx) error {
	page, limit := request.Page(c)
	users, total, err := ctl.svc.ListUsers(c.UserContext(), UserQuery{Search: c.Query("q"), Page: page, Limit: limit})
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Users fetched successfully", &fiber.Map{
		"users":       users,
		"currentPage": page,
		"totalPages":  request.TotalPages(total, limit),
		"totalUsers":  total,
	})
}

func (ctl *Controller) AdminUpdateUser(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody AdminUpdateInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	u, err := ctl.svc.UpdateUser(c.UserContext(), actor.UserID, id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "User updated successfully", &fiber.Map{"data": u})
}

func (ctl *Controller) AdminDeactivateUser(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeactivateUser(c.UserContext(), actor.UserID, id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "User deactivated", nil)
}
