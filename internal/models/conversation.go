package models

import "time"

// MessageSender identifies who authored a chat message.
type MessageSender string

const (
	SenderUser    MessageSender = "user"
	SenderTeacher MessageSender = "teacher"
)

// Conversation links a user with a teacher.
type Conversation struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Message is one entry of the append-only conversation log.
type Message struct {
	ID             string        `db:"id" json:"id"`
	ConversationID string        `db:"conversation_id" json:"conversation_id"`
	Seq            int64         `db:"seq" json:"seq"`
	Text           string        `db:"text" json:"text"`
	Sender         MessageSender `db:"sender" json:"sender"`
	Timestamp      time.Time     `db:"sent_at" json:"timestamp"`
}

// SendMessageRequest is the chat input payload.
type SendMessageRequest struct {
	Text string `json:"text"`
}
