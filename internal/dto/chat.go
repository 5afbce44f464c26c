package dto

import "github.com/noah-isme/discipulus-api/internal/models"

// ConversationView is a conversation with its ordered messages.
type ConversationView struct {
	Conversation  models.Conversation `json:"conversation"`
	TeacherName   string              `json:"teacher_name"`
	Messages      []models.Message    `json:"messages"`
	TeacherTyping bool                `json:"teacher_typing"`
}

// Chat event kinds pushed over the stream.
const (
	ChatEventMessage = "message"
	ChatEventTyping  = "typing"
)

// ChatEvent is a stream notification for a conversation.
type ChatEvent struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id"`
	Message        *models.Message `json:"message,omitempty"`
	Typing         bool            `json:"typing"`
}
