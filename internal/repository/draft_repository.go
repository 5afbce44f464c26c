package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/discipulus-api/internal/models"
)

const draftKeyPrefix = "booking:draft:"

// DraftRepository keeps booking wizard drafts in Redis with a TTL.
type DraftRepository struct {
	client *redis.Client
}

// NewDraftRepository constructs a DraftRepository.
func NewDraftRepository(client *redis.Client) *DraftRepository {
	return &DraftRepository{client: client}
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

// Save stores the draft until its expiry.
func (r *DraftRepository) Save(ctx context.Context, draft *models.BookingDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", draft.ID, err)
	}
	ttl := time.Until(draft.ExpiresAt)
	if ttl <= 0 {
		return ErrDraftNotFound
	}
	if err := r.client.Set(ctx, draftKey(draft.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set draft %s: %w", draft.ID, err)
	}
	return nil
}

// Get loads a draft. Missing or expired drafts yield ErrDraftNotFound.
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.BookingDraft, error) {
	raw, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("redis get draft %s: %w", id, err)
	}
	var draft models.BookingDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("unmarshal draft %s: %w", id, err)
	}
	return &draft, nil
}

// Delete removes a draft.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete draft %s: %w", id, err)
	}
	return nil
}

// PurgeExpired is a no-op; Redis expires drafts itself.
func (r *DraftRepository) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
