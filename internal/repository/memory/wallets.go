package memory

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
)

// WalletRepository stores wallets and the ledger.
type WalletRepository struct {
	store *Store
}

// NewWalletRepository constructs a WalletRepository.
func NewWalletRepository(store *Store) *WalletRepository {
	return &WalletRepository{store: store}
}

// Get fetches a teacher's wallet.
func (r *WalletRepository) Get(ctx context.Context, teacherID string) (*models.Wallet, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.wallets[teacherID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &w, nil
}

// Create opens an empty wallet. Existing wallets are left untouched.
func (r *WalletRepository) Create(ctx context.Context, teacherID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.wallets[teacherID]; !ok {
		r.store.wallets[teacherID] = models.Wallet{TeacherID: teacherID, UpdatedAt: at}
	}
	return nil
}

// ListTransactions returns a teacher's ledger, newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, teacherID string) ([]models.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Transaction, 0)
	for _, t := range r.store.transactions {
		if t.TeacherID == teacherID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

// Withdraw debits the balance and records a pending withdrawal atomically.
func (r *WalletRepository) Withdraw(ctx context.Context, txn *models.Transaction) (*models.Wallet, error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	amount := -txn.Amount

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[txn.TeacherID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if w.Balance < amount {
		return nil, repository.ErrInsufficientFunds
	}
	w.Balance -= amount
	w.PendingPayments += amount
	w.UpdatedAt = txn.OccurredAt
	r.store.wallets[txn.TeacherID] = w
	r.store.transactions = append(r.store.transactions, *txn)
	return &w, nil
}

// CreditEarning adds a completed earning to the wallet and ledger.
func (r *WalletRepository) CreditEarning(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.wallets[txn.TeacherID]
	if !ok {
		return sql.ErrNoRows
	}
	w.Balance += txn.Amount
	w.TotalEarnings += txn.Amount
	w.UpdatedAt = txn.OccurredAt
	r.store.wallets[txn.TeacherID] = w
	r.store.transactions = append(r.store.transactions, *txn)
	return nil
}

// SettleWithdrawals completes pending withdrawals recorded before the cutoff.
func (r *WalletRepository) SettleWithdrawals(ctx context.Context, before time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var settled int64
	for i, t := range r.store.transactions {
		if t.Type != models.TransactionWithdrawal || t.Status != models.TransactionPending || !t.OccurredAt.Before(before) {
			continue
		}
		r.store.transactions[i].Status = models.TransactionCompleted
		w := r.store.wallets[t.TeacherID]
		w.PendingPayments -= -t.Amount
		if w.PendingPayments < 0 {
			w.PendingPayments = 0
		}
		r.store.wallets[t.TeacherID] = w
		settled++
	}
	return settled, nil
}
