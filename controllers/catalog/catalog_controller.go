package catalog

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

// Brands

func (ctl *Controller) GetBrands(c *fiber.Ctx) error {
	brands, err := ctl.svc.ListBrands(c.UserContext())
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Brands fetched successfully", &fiber.Map{"brands": brands})
}

func (ctl *Controller) AddBrand(c *fiber.Ctx) error {
	var reqBody NameInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	brand, err := ctl.svc.CreateBrand(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Brand created successfully", &fiber.Map{"brand": brand})
}

func (ctl *Controller) EditBrand(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody NameInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	brand, err := ctl.svc.EditBrand(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Brand updated successfully", &fiber.Map{"brand": brand})
}

func (ctl *Controller) DeleteBrand(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteBrand(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Brand deleted successfully", nil)
}

// Categories

func (ctl *Controller) GetCategories(c *fiber.Ctx) error {
	categories, err := ctl.svc.ListCategories(c.UserContext())
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Categories fetched successfully", &fiber.Map{"categories": categories})
}

func (ctl *Controller) AddCategory(c *fiber.Ctx) error {
	var reqBody NameInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	category, err := ctl.svc.CreateCategory(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Category created successfully", &fiber.Map{"category": category})
}

func (ctl *Controller) EditCategory(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody NameInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	category, err := ctl.svc.EditCategory(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Category updated successfully", &fiber.Map{"category": category})
}

func (ctl *Controller) DeleteCategory(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteCategory(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Category deleted successfully", nil)
}

// Colors

func (ctl *Controller) GetColors(c *fiber.Ctx) error {
	colors, err := ctl.svc.ListColors(c.UserContext())
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Colors fetched successfully", &fiber.Map{"colors": colors})
}

func (ctl *Controller) AddColor(c *fiber.Ctx) error {
	var reqBody ColorInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	color, err := ctl.svc.CreateColor(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Color created successfully", &fiber.Map{"color": color})
}

func (ctl *Controller) EditColor(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody ColorInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	color, err := ctl.svc.EditColor(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Color updated successfully", &fiber.Map{"color": color})
}

func (ctl *Controller) DeleteColor(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteColor(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Color deleted successfully", nil)
}

// Sizes

func (ctl *Controller) GetSizes(c *fiber.Ctx) error {
	sizes, err := ctl.svc.ListSizes(c.UserContext())
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Sizes fetched successfully", &fiber.Map{"sizes": sizes})
}

func (ctl *Controller) AddSize(c *fiber.Ctx) error {
	var reqBody SizeInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	size, err := ctl.svc.CreateSize(c.UserContext(), reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Size created successfully", &fiber.Map{"size": size})
}

func (ctl *Controller) EditSize(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody SizeInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request format")
	}
	size, err := ctl.svc.EditSize(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Size updated successfully", &fiber.Map{"size": size})
}

func (ctl *Controller) DeleteSize(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteSize(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Size deleted successfully", nil)
}
