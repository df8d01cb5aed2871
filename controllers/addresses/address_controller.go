package addresses

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

func (ctl *Controller) AddAddress(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody Input
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	address, err := ctl.svc.Add(c.UserContext(), actor.UserID, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Address added successfully", &fiber.Map{"address": address})
}

func (ctl *Controller) GetAddresses(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	addresses, err := ctl.svc.List(c.UserContext(), actor.UserID)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Addresses fetched successfully", &fiber.Map{"addresses": addresses})
}

func (ctl *Controller) EditAddress(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody Input
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	address, err := ctl.svc.Edit(c.UserContext(), actor.UserID, id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Address updated successfully", &fiber.Map{"address": address})
}

func (ctl *Controller) SetDefaultAddress(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.SetDefault(c.UserContext(), actor.UserID, id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Default address updated", nil)
}

func (ctl *Controller) DeleteAddress(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.Delete(c.UserContext(), actor.UserID, id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Address deleted successfully", nil)
}
