package reviews

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

func (ctl *Controller) AddReview(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody ReviewInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	reqBody.UserID = actor.UserID

	review, err := ctl.svc.CreateReview(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Review added successfully", &fiber.Map{"review": review})
}

func (ctl *Controller) DeleteReview(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteReview(c.UserContext(), id, actor); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Review deleted successfully", nil)
}

func (ctl *Controller) GetProductReviews(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	page, limit := request.Page(c)

	reviews, total, err := ctl.svc.ListProductReviews(c.UserContext(), id, page, limit)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Reviews fetched successfully", &fiber.Map{
		"reviews":      reviews,
		"currentPage":  page,
		"totalPages":   request.TotalPages(total, limit),
		"totalReviews": total,
	})
}

func (ctl *Controller) GetMyReviews(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	reviews, err := ctl.svc.ListUserReviews(c.UserContext(), actor.UserID)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Reviews fetched successfully", &fiber.Map{"reviews": reviews})
}
