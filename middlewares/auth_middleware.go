package middlewares

import (
	"strings"
	"time"

	"storefront-api/auth"
	"storefront-api/controllers/request"
	"storefront-api/models"
	"storefront-api/responses"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const clientCookie = "client_id"

// Auth checks bearer tokens issued by signer.
type Auth struct {
	signer *auth.Signer
}

func NewAuth(signer *auth.Signer) *Auth {
	return &Auth{signer: signer}
}

func bearer(c *fiber.Ctx) (token string, present bool, ok bool) {
	header := c.Get("Authorization")
	if header == "" {
		return "", false, false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", true, false
	}
	return parts[1], true, true
}

// AuthMiddleware rejects requests without a valid session token and stores the caller in Locals.
func (a *Auth) AuthMiddleware(c *fiber.Ctx) error {
	tokenString, present, ok := bearer(c)
	if !present {
		return responses.Unauthorized(c, "No auth token, access denied")
	}
	if !ok {
		return responses.Unauthorized(c, "Invalid authorization header format")
	}

	claims, err := a.signer.Parse(tokenString)
	if err != nil {
		return responses.Unauthorized(c, "Token verification failed, access denied")
	}

	c.Locals(request.LocalUserID, claims.UserID)
	c.Locals(request.LocalRole, claims.Role)
	return c.Next()
}

// OptionalAuth stores the caller when a valid token is present and lets anonymous requests through.
func (a *Auth) OptionalAuth(c *fiber.Ctx) error {
	if tokenString, _, ok := bearer(c); ok {
		if claims, err := a.signer.Parse(tokenString); err == nil {
			c.Locals(request.LocalUserID, claims.UserID)
			c.Locals(request.LocalRole, claims.Role)
		}
	}
	return c.Next()
}

// AdminOnly must run after AuthMiddleware.
func AdminOnly(c *fiber.Ctx) error {
	if role, _ := c.Locals(request.LocalRole).(string); role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(responses.Response{
			Status:  fiber.StatusForbidden,
			Message: "Admin access required",
		})
	}
	return c.Next()
}

// ClientID gives every browser a stable id cookie that keys its cart, wishlist and history.
func ClientID(c *fiber.Ctx) error {
	id := c.Cookies(clientCookie)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     clientCookie,
			Value:    id,
			Path:     "/",
			Expires:  time.Now().Add(365 * 24 * time.Hour),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Locals(request.LocalClientID, id)
	return c.Next()
}
