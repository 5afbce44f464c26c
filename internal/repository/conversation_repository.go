package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// ConversationRepository stores chat conversations and their messages.
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository constructs a ConversationRepository.
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindByParticipants fetches the conversation between a user and a teacher.
func (r *ConversationRepository) FindByParticipants(ctx context.Context, userID, teacherID string) (*models.Conversation, error) {
	const query = `SELECT id, user_id, teacher_id, created_at FROM conversations WHERE user_id = $1 AND teacher_id = $2`
	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv, query, userID, teacherID); err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByID fetches a conversation by ID.
func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	const query = `SELECT id, user_id, teacher_id, created_at FROM conversations WHERE id = $1`
	var conv models.Conversation
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		return nil, err
	}
	return &conv, nil
}

// Create inserts a conversation together with its opening message.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation, greeting *models.Message) (err error) {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin conversation tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO conversations (id, user_id, teacher_id, created_at) VALUES (:id, :user_id, :teacher_id, :created_at)`, conv); err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	if greeting != nil {
		greeting.ConversationID = conv.ID
		if greeting.ID == "" {
			greeting.ID = uuid.NewString()
		}
		greeting.Seq = 1
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO messages (id, conversation_id, seq, text, sender, sent_at) VALUES (:id, :conversation_id, :seq, :text, :sender, :sent_at)`, greeting); err != nil {
			return fmt.Errorf("create greeting: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit conversation: %w", err)
	}
	return nil
}

// AppendMessage stores a message at the end of the conversation and assigns its sequence.
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	const query = `INSERT INTO messages (id, conversation_id, seq, text, sender, sent_at)
SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5 FROM messages WHERE conversation_id = $2
RETURNING seq`
	if err := r.db.QueryRowxContext(ctx, query, msg.ID, msg.ConversationID, msg.Text, msg.Sender, msg.Timestamp).Scan(&msg.Seq); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages in sequence order.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	const query = `SELECT id, conversation_id, seq, text, sender, sent_at FROM messages WHERE conversation_id = $1 ORDER BY seq ASC`
	var messages []models.Message
	if err := r.db.SelectContext(ctx, &messages, query, conversationID); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}
