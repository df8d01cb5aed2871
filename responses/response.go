package responses

import (
	"storefront-api/apperr"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every handler replies with.
type Response struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Result  *fiber.Map `json:"result"`
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

func OK(c *fiber.Ctx, message string, result *fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Status:  fiber.StatusOK,
		Message: message,
		Result:  result,
	})
}

func Created(c *fiber.Ctx, message string, result *fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(Response{
		Status:  fiber.StatusCreated,
		Message: message,
		Result:  result,
	})
}

// Error writes err through the shared handler so unexpected failures never leak details.
func Error(c *fiber.Ctx, err error) error {
	handled := apperr.Handle(err)
	status := StatusFor(apperr.KindOf(handled))
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: handled.(*apperr.Error).Message,
		Result:  nil,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Response{
		Status:  fiber.StatusBadRequest,
		Message: message,
		Result:  nil,
	})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(Response{
		Status:  fiber.StatusUnauthorized,
		Message: message,
		Result:  nil,
	})
}

// ErrorHandler is installed as the fiber app error handler for errors returned
// outside the usual handler path (routing misses, body limits, panics turned errors).
func ErrorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(Response{Status: fe.Code, Message: fe.Message})
	}
	return Error(c, err)
}
