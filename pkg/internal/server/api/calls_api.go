package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
	"github.com/paratalk/messaging/pkg/internal/services"
)

func getOngoingCall(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	if session, err := services.GetActiveCall(user.ID); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	} else {
		return c.JSON(session)
	}
}

func initiateCall(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	var data struct {
		Phone string `json:"phone" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	session, err := services.InitiateCall(user, data.Phone)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientAllowance):
			return fiber.NewError(fiber.StatusPaymentRequired, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		default:
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	return c.JSON(session)
}

func getParticipatedCall(c *fiber.Ctx, user models.Account) (models.CallSession, error) {
	callId, err := c.ParamsInt("callId")
	if err != nil {
		return models.CallSession{}, fiber.NewError(fiber.StatusBadRequest, "invalid call id")
	}

	session, err := services.GetCallSession(uint(callId))
	if err != nil {
		return session, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if session.CallerID != user.ID && session.ReceiverID != user.ID {
		return session, fiber.NewError(fiber.StatusForbidden, "you are not a participant of this call")
	}

	return session, nil
}

func answerCall(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	session, err := getParticipatedCall(c, user)
	if err != nil {
		return err
	}
	if session.ReceiverID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the receiver can answer a call")
	}

	if session, err := services.AnswerCall(session.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(session)
	}
}

func rejectCall(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	session, err := getParticipatedCall(c, user)
	if err != nil {
		return err
	}
	if session.ReceiverID != user.ID {
		return fiber.NewError(fiber.StatusForbidden, "only the receiver can reject a call")
	}

	if session, err := services.RejectCall(session.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(session)
	}
}

func endCall(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	session, err := getParticipatedCall(c, user)
	if err != nil {
		return err
	}

	if session, err := services.EndCall(session.ID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(fiber.Map{
			"call":             session,
			"duration_seconds": session.Duration().Seconds(),
			"billed_minutes":   session.BilledMinutes(),
		})
	}
}
