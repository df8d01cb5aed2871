package cart

import (
	"strconv"

	"storefront-api/apperr"
	"storefront-api/controllers/request"
	"storefront-api/responses"
	"storefront-api/stores"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	svc *Service
}

func NewController(svc *Service) *Controller {
	return &Controller{svc: svc}
}

func clientID(c *fiber.Ctx) (string, error) {
	id := request.ClientID(c)
	if id == "" {
		return "", apperr.Validation("Missing client id")
	}
	return id, nil
}

func cartResult(cart stores.Cart) *fiber.Map {
	return &fiber.Map{"cart": cart.Items, "summary": cart.Summary, "count": cart.Count()}
}

func (ctl *Controller) AddToCart(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody AddInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request")
	}
	cart, err := ctl.svc.Add(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Product added to cart", cartResult(cart))
}

func (ctl *Controller) UpdateCartQuantity(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody QuantityInput
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request")
	}
	cart, err := ctl.svc.SetQuantity(c.UserContext(), id, reqBody)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Cart updated", cartResult(cart))
}

func (ctl *Controller) RemoveFromCart(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	var reqBody struct {
		ProductID uint   `json:"productId"`
		Color     string `json:"color"`
		Size      string `json:"size"`
	}
	if err := c.BodyParser(&reqBody); err != nil {
		return responses.BadRequest(c, "Invalid request")
	}
	cart, err := ctl.svc.Remove(c.UserContext(), id, reqBody.ProductID, reqBody.Color, reqBody.Size)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Product removed from cart", cartResult(cart))
}

func (ctl *Controller) GetCart(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	cart, err := ctl.svc.Get(c.UserContext(), id)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Cart fetched successfully", cartResult(cart))
}

func (ctl *Controller) GetCartTotals(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	summary, count, err := ctl.svc.Totals(c.UserContext(), id, c.Query("deliveryMethod"))
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Cart totals fetched successfully", &fiber.Map{"summary": summary, "count": count})
}

func (ctl *Controller) ClearCart(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.Clear(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Cart cleared", nil)
}

func productParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("productId"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid product id")
	}
	return uint(id), nil
}

func (ctl *Controller) ToggleWishlist(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	productID, err := productParam(c)
	if err != nil {
		return responses.Error(c, err)
	}
	added, products, err := ctl.svc.ToggleWishlist(c.UserContext(), id, productID)
	if err != nil {
		return responses.Error(c, err)
	}
	message := "Removed from wishlist"
	if added {
		message = "Added to wishlist"
	}
	return responses.OK(c, message, &fiber.Map{"added": added, "products": products})
}

func (ctl *Controller) RemoveFromWishlist(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	productID, err := productParam(c)
	if err != nil {
		return responses.Error(c, err)
	}
	products, err := ctl.svc.RemoveFromWishlist(c.UserContext(), id, productID)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Removed from wishlist", &fiber.Map{"products": products})
}

func (ctl *Controller) GetWishlist(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	products, err := ctl.svc.Wishlist(c.UserContext(), id)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Wishlist fetched successfully", &fiber.Map{"products": products})
}

func (ctl *Controller) ClearWishlist(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.ClearWishlist(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Wishlist cleared", nil)
}

func (ctl *Controller) GetHistory(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	products, err := ctl.svc.History(c.UserContext(), id)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "History fetched successfully", &fiber.Map{"products": products})
}

func (ctl *Controller) ClearHistory(c *fiber.Ctx) error {
	id, err := clientID(c)
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.ClearHistory(c.UserContext(), id); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "History cleared", nil)
}
