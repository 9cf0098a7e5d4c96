package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
	"github.com/paratalk/messaging/pkg/internal/services"
	"github.com/rs/zerolog/log"
)

func listPromoCatalog(c *fiber.Ctx) error {
	return c.JSON(models.PromoCatalog)
}

func listActivePromos(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	if promos, err := services.GetActivePromos(user.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(promos)
	}
}

func getPromoSummary(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	if summary, err := services.GetPromoSummary(user.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(summary)
	}
}

func purchasePromo(c *fiber.Ctx) error {
	user := exts.GetUser(c)
	promoId := c.Params("promoId")

	var data struct {
		Description string `json:"description"`
	}
	_ = exts.BindAndValidate(c, &data)

	spec := models.LookupPromoSpec(promoId, data.Description)

	grant, err := services.PurchasePromo(user.ID, spec)
	if err != nil {
		var insufficient *services.InsufficientCreditsError
		var compensation *services.CompensationError
		switch {
		case errors.As(err, &insufficient):
			return fiber.NewError(fiber.StatusPaymentRequired, err.Error())
		case errors.As(err, &compensation):
			// The account is under-credited until reconciled, this must
			// stay loud in the logs.
			log.Error().Err(err).Uint("account", user.ID).Msg("Promo purchase left an unrefunded debit!")
			return fiber.NewError(fiber.StatusInternalServerError, "purchase failed, support has been notified")
		default:
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	credits, _ := services.GetCredits(user.ID)

	return c.JSON(fiber.Map{
		"promo":             grant,
		"remaining_credits": credits.Balance,
	})
}
