package memory

import (
	"context"
	"time"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
)

// DraftRepository keeps booking drafts until they expire.
type DraftRepository struct {
	store *Store
	now   func() time.Time
}

// NewDraftRepository constructs a DraftRepository.
func NewDraftRepository(store *Store) *DraftRepository {
	return &DraftRepository{store: store, now: time.Now}
}

// Save stores the draft until its expiry.
func (r *DraftRepository) Save(ctx context.Context, draft *models.BookingDraft) error {
	if draft.Expired(r.now()) {
		return repository.ErrDraftNotFound
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.drafts[draft.ID] = *draft
	return nil
}

// Get loads a draft. Missing or expired drafts yield ErrDraftNotFound.
func (r *DraftRepository) Get(ctx context.Context, id string) (*models.BookingDraft, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	d, ok := r.store.drafts[id]
	if !ok || d.Expired(r.now()) {
		return nil, repository.ErrDraftNotFound
	}
	return &d, nil
}

// Delete removes a draft.
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.drafts, id)
	return nil
}

// PurgeExpired drops drafts that expired before now.
func (r *DraftRepository) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	removed := 0
	for id, d := range r.store.drafts {
		if d.Expired(now) {
			delete(r.store.drafts, id)
			removed++
		}
	}
	return removed, nil
}
