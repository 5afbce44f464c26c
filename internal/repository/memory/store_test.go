package memory

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
	"github.com/noah-isme/discipulus-api/internal/seed"
)

func newSeeded(t *testing.T) *Store {
	store, err := NewSeededStore(time.Now(), time.UTC)
	require.NoError(t, err)
	return store
}

func TestTeacherRepositoryReturnsCopies(t *testing.T) {
	repo := NewTeacherRepository(newSeeded(t))
	ctx := context.Background()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 6)
	list[0].Subjects[0] = "mutated"

	again, err := repo.FindByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Matemática", again.Subjects[0])

	_, err = repo.FindByID(ctx, "42")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestTeacherRepositoryUpdateProfileKeepsRating(t *testing.T) {
	repo := NewTeacherRepository(newSeeded(t))
	ctx := context.Background()

	profile, err := repo.FindProfileByEmail(ctx, "SARAH.JOHNSON@email.com")
	require.NoError(t, err)
	profile.HourlyRate = 60
	profile.Rating = 1

	require.NoError(t, repo.UpdateProfile(ctx, profile))
	saved, err := repo.FindProfile(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, saved.HourlyRate)
	assert.Equal(t, 4.9, saved.Rating)
}

func TestClassRepositoryRejectsDuplicateBookingKey(t *testing.T) {
	repo := NewClassRepository(NewStore())
	ctx := context.Background()
	key := "draft-1"

	require.NoError(t, repo.Create(ctx, &models.ScheduledClass{TeacherID: "1", BookingKey: &key, Status: models.ClassUpcoming}))
	err := repo.Create(ctx, &models.ScheduledClass{TeacherID: "1", BookingKey: &key})
	assert.ErrorIs(t, err, repository.ErrDuplicateBooking)

	found, err := repo.FindByBookingKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "1", found.TeacherID)
}

func TestClassRepositoryUpdateStatusOnlyFromExpected(t *testing.T) {
	repo := NewClassRepository(newSeeded(t))
	ctx := context.Background()
	at := time.Now()
	upcomingID := seed.DemoClasses(at, time.UTC)[0].ID

	ok, err := repo.UpdateStatus(ctx, upcomingID, models.ClassUpcoming, models.ClassCancelled, at)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, upcomingID, models.ClassUpcoming, models.ClassCompleted, at)
	require.NoError(t, err)
	assert.False(t, ok)

	class, err := repo.FindByID(ctx, upcomingID)
	require.NoError(t, err)
	assert.Equal(t, models.ClassCancelled, class.Status)
	assert.NotNil(t, class.CancelledAt)
}

func TestConversationRepositoryAssignsSequence(t *testing.T) {
	repo := NewConversationRepository(NewStore())
	ctx := context.Background()

	conv := &models.Conversation{UserID: "u1", TeacherID: "1"}
	require.NoError(t, repo.Create(ctx, conv, &models.Message{Text: "Olá", Sender: models.SenderTeacher}))
	msg := &models.Message{ConversationID: conv.ID, Text: "oi", Sender: models.SenderUser}
	require.NoError(t, repo.AppendMessage(ctx, msg))

	messages, err := repo.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.EqualValues(t, 1, messages[0].Seq)
	assert.EqualValues(t, 2, messages[1].Seq)
	assert.Error(t, repo.Create(ctx, &models.Conversation{UserID: "u1", TeacherID: "1"}, nil))
}

func TestWalletRepositoryConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	repo := NewWalletRepository(newSeeded(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Withdraw(ctx, &models.Transaction{TeacherID: seed.DemoTeacherID, Type: models.TransactionWithdrawal, Amount: -100, Status: models.TransactionPending, OccurredAt: time.Now()})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
			}
		}()
	}
	wg.Wait()

	wallet, err := repo.Get(ctx, seed.DemoTeacherID)
	require.NoError(t, err)
	assert.Equal(t, 12, succeeded)
	assert.InDelta(t, 50.50, wallet.Balance, 0.001)
	assert.GreaterOrEqual(t, wallet.Balance, 0.0)
}

func TestWalletRepositorySettleWithdrawals(t *testing.T) {
	repo := NewWalletRepository(newSeeded(t))
	ctx := context.Background()
	old := time.Now().Add(-72 * time.Hour)

	_, err := repo.Withdraw(ctx, &models.Transaction{TeacherID: seed.DemoTeacherID, Type: models.TransactionWithdrawal, Amount: -100, Status: models.TransactionPending, OccurredAt: old})
	require.NoError(t, err)
	_, err = repo.Withdraw(ctx, &models.Transaction{TeacherID: seed.DemoTeacherID, Type: models.TransactionWithdrawal, Amount: -50, Status: models.TransactionPending, OccurredAt: time.Now()})
	require.NoError(t, err)

	settled, err := repo.SettleWithdrawals(ctx, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, settled)

	wallet, err := repo.Get(ctx, seed.DemoTeacherID)
	require.NoError(t, err)
	assert.InDelta(t, 370.0, wallet.PendingPayments, 0.001)
}

func TestDraftRepositoryExpiry(t *testing.T) {
	store := NewStore()
	repo := NewDraftRepository(store)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Save(ctx, &models.BookingDraft{ID: "d1", ExpiresAt: now.Add(time.Minute)}))
	_, err := repo.Get(ctx, "d1")
	require.NoError(t, err)

	repo.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = repo.Get(ctx, "d1")
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)

	removed, err := repo.PurgeExpired(ctx, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
