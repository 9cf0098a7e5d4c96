package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/paratalk/messaging/pkg/internal/server/exts"
	"github.com/paratalk/messaging/pkg/internal/services"
)

func listConversation(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	if conversations, err := services.ListConversations(user); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(conversations)
	}
}

func openConversation(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	var data struct {
		Phone string `json:"phone" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	other, err := services.GetAccountByPhone(data.Phone)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if conversation, err := services.GetOrCreateConversation(user, other); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(conversation)
	}
}

func getOwnedConversation(c *fiber.Ctx, user models.Account) (models.Conversation, error) {
	conversationId, err := c.ParamsInt("conversationId")
	if err != nil {
		return models.Conversation{}, fiber.NewError(fiber.StatusBadRequest, "invalid conversation id")
	}

	conversation, err := services.GetConversation(uint(conversationId))
	if err != nil {
		return conversation, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if !conversation.HasParticipant(user.ID) {
		return conversation, fiber.NewError(fiber.StatusForbidden, services.ErrConversationForbidden.Error())
	}

	return conversation, nil
}

func listMessage(c *fiber.Ctx) error {
	user := exts.GetUser(c)
	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	conversation, err := getOwnedConversation(c, user)
	if err != nil {
		return err
	}

	if messages, err := services.ListMessages(conversation, take, offset); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	} else {
		return c.JSON(messages)
	}
}

func newTextMessage(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	var data struct {
		Content string `json:"content" validate:"required,max=4096"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	conversation, err := getOwnedConversation(c, user)
	if err != nil {
		return err
	}

	message, err := services.NewTextMessage(data.Content, user, conversation)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientAllowance) {
			return fiber.NewError(fiber.StatusPaymentRequired, err.Error())
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.JSON(message)
}

func markConversationRead(c *fiber.Ctx) error {
	user := exts.GetUser(c)

	conversation, err := getOwnedConversation(c, user)
	if err != nil {
		return err
	}

	if err := services.MarkMessagesRead(conversation, user); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.SendStatus(fiber.StatusOK)
}
