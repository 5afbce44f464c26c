package memory

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
)

// UserRepository stores accounts in the store.
type UserRepository struct {
	store *Store
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

// Create inserts a new account. Emails are unique case-insensitively.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrEmailTaken
		}
	}
	r.store.users[user.ID] = *user
	return nil
}

// FindByEmail fetches an account by email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindByID fetches an account by ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &u, nil
}

// SessionRepository stores access token sessions.
type SessionRepository struct {
	store *Store
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(store *Store) *SessionRepository {
	return &SessionRepository{store: store}
}

// Create persists a session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.sessions[session.ID] = *session
	return nil
}

// FindByID fetches a session by its token id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

// Revoke marks the session as revoked. Revoking twice is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sessions[id]
	if !ok {
		return sql.ErrNoRows
	}
	if s.RevokedAt == nil {
		s.RevokedAt = &at
		r.store.sessions[id] = s
	}
	return nil
}

// DeleteExpired removes sessions that expired before the cutoff.
func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var removed int64
	for id, s := range r.store.sessions {
		if s.ExpiresAt.Before(before) {
			delete(r.store.sessions, id)
			removed++
		}
	}
	return removed, nil
}
