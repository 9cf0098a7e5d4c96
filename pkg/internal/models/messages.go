package models

// Conversation is a direct thread between exactly two accounts.
type Conversation struct {
	BaseModel

	ParticipantAID uint `json:"participant_a_id"`
	ParticipantBID uint `json:"participant_b_id"`

	ParticipantA Account `json:"participant_a"`
	ParticipantB Account `json:"participant_b"`
}

func (v Conversation) HasParticipant(accountId uint) bool {
	return v.ParticipantAID == accountId || v.ParticipantBID == accountId
}

func (v Conversation) OtherParticipant(accountId uint) uint {
	if v.ParticipantAID == accountId {
		return v.ParticipantBID
	}
	return v.ParticipantAID
}

type Message struct {
	BaseModel

	ConversationID uint   `json:"conversation_id"`
	SenderID       uint   `json:"sender_id"`
	Content        string `json:"content"`
	IsRead         bool   `json:"is_read"`

	Sender Account `json:"sender"`
}
