package memory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// ConversationRepository stores conversations and their messages.
type ConversationRepository struct {
	store *Store
}

// NewConversationRepository constructs a ConversationRepository.
func NewConversationRepository(store *Store) *ConversationRepository {
	return &ConversationRepository{store: store}
}

// FindByParticipants fetches the conversation between a user and a teacher.
func (r *ConversationRepository) FindByParticipants(ctx context.Context, userID, teacherID string) (*models.Conversation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.conversations {
		if c.UserID == userID && c.TeacherID == teacherID {
			conv := c
			return &conv, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID fetches a conversation by ID.
func (r *ConversationRepository) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.conversations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

// Create inserts a conversation together with its opening message.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation, greeting *models.Message) error {
	if conv.ID == "" {
		conv.ID = uuid.NewString()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.conversations {
		if c.UserID == conv.UserID && c.TeacherID == conv.TeacherID {
			return fmt.Errorf("create conversation: already exists for user %s and teacher %s", conv.UserID, conv.TeacherID)
		}
	}
	r.store.conversations[conv.ID] = *conv
	if greeting != nil {
		if greeting.ID == "" {
			greeting.ID = uuid.NewString()
		}
		greeting.ConversationID = conv.ID
		greeting.Seq = 1
		r.store.messages[conv.ID] = []models.Message{*greeting}
	}
	return nil
}

// AppendMessage stores a message at the end of the conversation and assigns its sequence.
func (r *ConversationRepository) AppendMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.conversations[msg.ConversationID]; !ok {
		return sql.ErrNoRows
	}
	log := r.store.messages[msg.ConversationID]
	msg.Seq = int64(len(log)) + 1
	r.store.messages[msg.ConversationID] = append(log, *msg)
	return nil
}

// ListMessages returns a conversation's messages in sequence order.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	log := r.store.messages[conversationID]
	out := make([]models.Message, len(log))
	copy(out, log)
	return out, nil
}
