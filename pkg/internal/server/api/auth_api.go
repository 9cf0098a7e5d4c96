package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
	"github.com/paratalk/messaging/pkg/internal/services"
)

func doRegister(c *fiber.Ctx) error {
	var data struct {
		Name     string `json:"name" validate:"required"`
		Phone    string `json:"phone" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.NewAccount(data.Name, data.Phone, data.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(account)
}

func doLogin(c *fiber.Ctx) error {
	var data struct {
		Phone    string `json:"phone" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	account, err := services.AuthenticateAccount(data.Phone, data.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	token, err := services.IssueToken(account)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"account": account,
	})
}
