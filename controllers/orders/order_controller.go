package orders

import (
	"strconv"

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

// VerifyPaymentRequest holds the data for payment verification
type VerifyPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func (ctl *Controller) CreateOrder(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}

	var orderReq PlaceOrderInput
	if err := c.BodyParser(&orderReq); err != nil {
		return responses.BadRequest(c, "Invalid request body")
	}
	orderReq.UserID = actor.UserID

	order, err := ctl.svc.PlaceOrder(c.UserContext(), orderReq)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Order created successfully", &fiber.Map{
		"order":   order,
		"summary": ctl.svc.Summary(order),
	})
}

// Checkout places an order from the caller's stored cart.
func (ctl *Controller) Checkout(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}

	var checkoutReq CheckoutInput
	if err := c.BodyParser(&checkoutReq); err != nil {
		return responses.BadRequest(c, "Invalid request body")
	}
	checkoutReq.UserID = actor.UserID

	result, err := ctl.svc.Checkout(c.UserContext(), request.ClientID(c), checkoutReq)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.Created(c, "Order created successfully", &fiber.Map{
		"order":   result.Order,
		"summary": result.Summary,
	})
}

func (ctl *Controller) GetOrders(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	page, limit := request.Page(c)

	orders, total, err := ctl.svc.ListUserOrders(c.UserContext(), actor.UserID, page, limit)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Orders fetched successfully", &fiber.Map{
		"orders":      orders,
		"currentPage": page,
		"totalPages":  request.TotalPages(total, limit),
		"totalOrders": total,
	})
}

func (ctl *Controller) GetOrderById(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}

	order, err := ctl.svc.GetOrder(c.UserContext(), id, actor)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Order fetched successfully", &fiber.Map{
		"order":   order,
		"summary": ctl.svc.Summary(order),
	})
}

func (ctl *Controller) DeleteOrder(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	if err := ctl.svc.DeleteOrder(c.UserContext(), id, actor); err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Order deleted successfully", nil)
}

func (ctl *Controller) CreatePayment(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}

	gw, err := ctl.svc.CreatePayment(c.UserContext(), id, actor.UserID)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Payment created successfully", &fiber.Map{
		"orderId":    id,
		"razorpayId": gw.ID,
		"amount":     gw.Amount,
		"currency":   gw.Currency,
		"key_id":     gw.KeyID,
	})
}

// VerifyPayment verifies the payment signature from Razorpay and updates order status
func (ctl *Controller) VerifyPayment(c *fiber.Ctx) error {
	actor, err := request.CurrentActor(c)
	if err != nil {
		return responses.Error(c, err)
	}
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}

	var verifyReq VerifyPaymentRequest
	if err := c.BodyParser(&verifyReq); err != nil {
		return responses.BadRequest(c, "Invalid request body")
	}

	order, err := ctl.svc.VerifyPayment(c.UserContext(), id, actor.UserID, verifyReq.PaymentID, verifyReq.Signature)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Payment verified successfully", &fiber.Map{
		"orderId":   order.ID,
		"paymentId": verifyReq.PaymentID,
	})
}

// Only for admin

func boolQuery(c *fiber.Ctx, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (ctl *Controller) AdminGetOrders(c *fiber.Ctx) error {
	page, limit := request.Page(c)
	orders, total, err := ctl.svc.ListOrders(c.UserContext(), OrderQuery{
		Paid:       boolQuery(c, "paid"),
		Delivered:  boolQuery(c, "delivered"),
		UnreadOnly: c.QueryBool("unread"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Orders fetched successfully", &fiber.Map{
		"orders":      orders,
		"currentPage": page,
		"totalPages":  request.TotalPages(total, limit),
		"totalOrders": total,
	})
}

func (ctl *Controller) UnreadCount(c *fiber.Ctx) error {
	n, err := ctl.svc.UnreadCount(c.UserContext())
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Unread orders counted", &fiber.Map{"count": n})
}

func (ctl *Controller) MarkPaid(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	order, err := ctl.svc.MarkPaid(c.UserContext(), id)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Order marked as paid", &fiber.Map{"order": order})
}

func (ctl *Controller) MarkDelivered(c *fiber.Ctx) error {
	id, err := request.ID(c, "id")
	if err != nil {
		return responses.Error(c, err)
	}
	order, err := ctl.svc.MarkDelivered(c.UserContext(), id)
	if err != nil {
		return responses.Error(c, err)
	}
	return responses.OK(c, "Order marked as delivered", &fiber.Map{"order": order})
}
