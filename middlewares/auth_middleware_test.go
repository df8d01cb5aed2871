package middlewares

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-api/auth"
	"storefront-api/controllers/request"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(signer *auth.Signer) *fiber.App {
	a := NewAuth(signer)
	app := fiber.New()
	app.Get("/me", a.AuthMiddleware, func(c *fiber.Ctx) error {
		actor, err := request.CurrentActor(c)
		if err != nil {
			return err
		}
		return c.SendString(actor.Role)
	})
	app.Get("/admin", a.AuthMiddleware, AdminOnly, func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/maybe", a.OptionalAuth, func(c *fiber.Ctx) error {
		if _, err := request.CurrentActor(c); err != nil {
			return c.SendString("anonymous")
		}
		return c.SendString("known")
	})
	app.Get("/client", ClientID, func(c *fiber.Ctx) error { return c.SendString(request.ClientID(c)) })
	return app
}

func get(t *testing.T, app *fiber.App, path, authHeader string) (int, string) {
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	signer := auth.NewSigner("secret")
	app := newApp(signer)
	userToken, err := signer.Sign(1, "user")
	require.NoError(t, err)
	adminToken, err := signer.Sign(2, "admin")
	require.NoError(t, err)

	status, body := get(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "No auth token")

	status, body = get(t, app, "/me", "Token "+userToken)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, body, "Invalid authorization header format")

	status, _ = get(t, app, "/me", "Bearer garbage")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = get(t, app, "/me", "Bearer "+userToken)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user", body)

	status, _ = get(t, app, "/admin", "Bearer "+userToken)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = get(t, app, "/admin", "Bearer "+adminToken)
	assert.Equal(t, fiber.StatusOK, status)

	_, body = get(t, app, "/maybe", "")
	assert.Equal(t, "anonymous", body)
	_, body = get(t, app, "/maybe", "Bearer garbage")
	assert.Equal(t, "anonymous", body)
	_, body = get(t, app, "/maybe", "Bearer "+userToken)
	assert.Equal(t, "known", body)
}

func TestClientIDCookie(t *testing.T) {
	app := newApp(auth.NewSigner("secret"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/client", nil))
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	require.True(t, strings.HasPrefix(cookie, clientCookie+"="))
	issued := strings.TrimPrefix(strings.SplitN(cookie, ";", 2)[0], clientCookie+"=")

	req := httptest.NewRequest(fiber.MethodGet, "/client", nil)
	req.Header.Set("Cookie", clientCookie+"="+issued)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, issued, string(body))
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
}
