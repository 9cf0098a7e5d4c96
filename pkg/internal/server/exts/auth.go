package exts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/services"
)

// AuthMiddleware resolves the bearer token into an account and parks it in
// the request locals. Websocket upgrades cannot set headers, those pass the
// token as the tk query parameter instead.
func AuthMiddleware(c *fiber.Ctx) error {
	token := c.Query("tk")
	if authorization := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authorization, "Bearer ") {
		token = strings.TrimPrefix(authorization, "Bearer ")
	}
	if len(token) == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "missing access token")
	}

	accountId, err := services.ParseToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	user, err := services.GetAccount(accountId)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
	}

	c.Locals("user", user)

	return c.Next()
}

func GetUser(c *fiber.Ctx) models.Account {
	return c.Locals("user").(models.Account)
}
