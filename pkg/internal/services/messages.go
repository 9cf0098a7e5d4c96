package services

import (
	"github.com/paratalk/messaging/pkg/internal/database"
	"github.com/paratalk/messaging/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

func GetConversation(id uint) (models.Conversation, error) {
	var conversation models.Conversation
	if err := database.C.
		Where("id = ?", id).
		Preload("ParticipantA").
		Preload("ParticipantB").
		First(&conversation).Error; err != nil {
		return conversation, err
	} else {
		return conversation, nil
	}
}

// GetOrCreateConversation finds the direct thread between two accounts,
// regardless of which side opened it, creating it on first contact.
func GetOrCreateConversation(user models.Account, other models.Account) (models.Conversation, error) {
	var conversation models.Conversation
	if err := database.C.
		Where("(participant_a_id = ? AND participant_b_id = ?) OR (participant_a_id = ? AND participant_b_id = ?)",
			user.ID, other.ID, other.ID, user.ID).
		First(&conversation).Error; err == nil {
		return conversation, nil
	}

	conversation = models.Conversation{
		ParticipantAID: user.ID,
		ParticipantBID: other.ID,
	}
	if err := database.C.Create(&conversation).Error; err != nil {
		return conversation, err
	}

	return conversation, nil
}

func ListConversations(user models.Account) ([]models.Conversation, error) {
	var conversations []models.Conversation
	if err := database.C.
		Where("participant_a_id = ? OR participant_b_id = ?", user.ID, user.ID).
		Preload("ParticipantA").
		Preload("ParticipantB").
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		return conversations, err
	} else {
		return conversations, nil
	}
}

func ListMessages(conversation models.Conversation, take, offset int) ([]models.Message, error) {
	if take > 100 {
		take = 100
	}

	var messages []models.Message
	if err := database.C.
		Where("conversation_id = ?", conversation.ID).
		Limit(take).
		Offset(offset).
		Order("created_at DESC").
		Preload("Sender").
		Find(&messages).Error; err != nil {
		return messages, err
	} else {
		return messages, nil
	}
}

// NewTextMessage sends one text into a conversation. Admission is gated on
// the sender's text allowance before anything is written, the deduction lands
// after the send succeeded. A failed deduction does not un-send the message,
// it is logged as a known inconsistency.
func NewTextMessage(content string, sender models.Account, conversation models.Conversation) (models.Message, error) {
	if !conversation.HasParticipant(sender.ID) {
		return models.Message{}, ErrConversationForbidden
	}
	if !HasAllowance(sender.ID, models.UsageKindText) {
		return models.Message{}, ErrInsufficientAllowance
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       sender.ID,
		Content:        content,
		Sender:         sender,
	}

	if err := database.C.Create(&message).Error; err != nil {
		return message, err
	}

	if ok := DeductAllowance(sender.ID, models.UsageKindText, 1); !ok {
		log.Warn().
			Uint("message", message.ID).
			Uint("sender", sender.ID).
			Msg("Message sent but the allowance deduction did not land...")
	}

	PublishMessageEvent(message, conversation.ParticipantAID, conversation.ParticipantBID)
	AppendChangeRecord("messages", models.ChangeOpInsert, message.ID, message)

	return message, nil
}

// MarkMessagesRead flips every message the other side sent to read.
func MarkMessagesRead(conversation models.Conversation, reader models.Account) error {
	return database.C.
		Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_read = ?", conversation.ID, reader.ID, false).
		Update("is_read", true).Error
}
