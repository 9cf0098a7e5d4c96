package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/phone"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
	"github.com/paratalk/messaging/pkg/internal/services"
)

func getUserinfo(c *fiber.Ctx) error {
	user := exts.GetUser(c)
	return c.JSON(user)
}

func lookupUserByPhone(c *fiber.Ctx) error {
	number := c.Query("phone")
	if len(number) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "phone query parameter is required")
	}

	account, err := services.GetAccountByPhone(number)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return c.JSON(fiber.Map{
		"account": account,
		"display": phone.Display(account.Phone),
	})
}
