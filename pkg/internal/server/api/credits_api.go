package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
	"github.com/paratalk/messaging/pkg/internal/services"
)

func getCredits(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	if credits, err := services.GetCredits(user.ID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	} else {
		return c.JSON(credits)
	}
}

func topUpCredits(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	var data struct {
		Amount float64 `json:"amount" validate:"required,gt=0"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	credits, err := services.AddCredits(user.ID, data.Amount)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	services.RecordTransaction(user.ID, models.TransactionKindCreditPurchase, data.Amount, map[string]any{
		"source": "topup",
	})

	return c.JSON(credits)
}

func listTransactions(c *fiber.Ctx) error {
	user := exts.GetUser(c)
	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	if take > 100 {
		take = 100
	}

	var transactions []models.Transaction
	if err := database.C.
		Where("account_id = ?", user.ID).
		Limit(take).
		Offset(offset).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(transactions)
}
