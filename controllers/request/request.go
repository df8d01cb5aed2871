// Package request holds the small parsing helpers every controller shares.
package request

import (
	"strconv"
	"strings"

	"storefront-api/apperr"
	"storefront-api/models"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalUserID   = "userId"
	LocalRole     = "role"
	LocalClientID = "clientId"
)

// ID parses a positive numeric route parameter.
func ID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s format", name)
	}
	return uint(id), nil
}

// Actor is the authenticated caller.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CurrentActor reads the caller placed in Locals by the auth middleware.
func CurrentActor(c *fiber.Ctx) (Actor, error) {
	userID, ok := c.Locals(LocalUserID).(uint)
	if !ok || userID == 0 {
		return Actor{}, apperr.Unauthorized("User ID not found in token")
	}
	role, _ := c.Locals(LocalRole).(string)
	return Actor{UserID: userID, Role: role}, nil
}

// ClientID reads the anonymous client identifier set by the client id middleware.
func ClientID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalClientID).(string)
	return id
}

// Page reads page and limit query parameters with the usual defaults.
func Page(c *fiber.Ctx) (page, limit int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// TotalPages rounds up total/limit.
func TotalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains builds a lowercase LIKE pattern matching term anywhere. Use it with
// an ESCAPE '\' clause so wildcards in term match literally.
func Contains(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
