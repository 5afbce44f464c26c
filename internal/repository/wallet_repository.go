package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/discipulus-api/internal/models"
)

const transactionColumns = "id, teacher_id, type, amount, description, status, method, occurred_at"

// WalletRepository persists teacher wallets and their ledger.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository constructs a WalletRepository.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Get fetches a teacher's wallet.
func (r *WalletRepository) Get(ctx context.Context, teacherID string) (*models.Wallet, error) {
	const query = `SELECT teacher_id, balance, total_earnings, pending_payments, updated_at FROM wallets WHERE teacher_id = $1`
	var wallet models.Wallet
	if err := r.db.GetContext(ctx, &wallet, query, teacherID); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Create opens an empty wallet. Existing wallets are left untouched.
func (r *WalletRepository) Create(ctx context.Context, teacherID string, at time.Time) error {
	if _, err := r.db.ExecContext(ctx, `INSERT INTO wallets (teacher_id, balance, total_earnings, pending_payments, updated_at) VALUES ($1, 0, 0, 0, $2) ON CONFLICT (teacher_id) DO NOTHING`, teacherID, at); err != nil {
		return fmt.Errorf("create wallet: %w", err)
	}
	return nil
}

// ListTransactions returns a teacher's ledger, newest first.
func (r *WalletRepository) ListTransactions(ctx context.Context, teacherID string) ([]models.Transaction, error) {
	query := fmt.Sprintf("SELECT %s FROM wallet_transactions WHERE teacher_id = $1 ORDER BY occurred_at DESC, id DESC", transactionColumns)
	var txs []models.Transaction
	if err := r.db.SelectContext(ctx, &txs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Withdraw debits the balance and records a pending withdrawal in one
// transaction. The debit only applies while the balance covers the amount.
func (r *WalletRepository) Withdraw(ctx context.Context, txn *models.Transaction) (wallet *models.Wallet, err error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	amount := -txn.Amount

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin withdrawal tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var updated models.Wallet
	err = tx.GetContext(ctx, &updated, `UPDATE wallets SET balance = balance - $2, pending_payments = pending_payments + $2, updated_at = $3
WHERE teacher_id = $1 AND balance >= $2
RETURNING teacher_id, balance, total_earnings, pending_payments, updated_at`, txn.TeacherID, amount, txn.OccurredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if lookupErr := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM wallets WHERE teacher_id = $1)`, txn.TeacherID); lookupErr != nil {
				return nil, fmt.Errorf("lookup wallet: %w", lookupErr)
			}
			if !exists {
				return nil, sql.ErrNoRows
			}
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("debit wallet: %w", err)
	}

	if _, err = tx.NamedExecContext(ctx, `INSERT INTO wallet_transactions (`+transactionColumns+`) VALUES (:id, :teacher_id, :type, :amount, :description, :status, :method, :occurred_at)`, txn); err != nil {
		return nil, fmt.Errorf("record withdrawal: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit withdrawal: %w", err)
	}
	return &updated, nil
}

// CreditEarning adds a completed earning to the wallet and ledger.
func (r *WalletRepository) CreditEarning(ctx context.Context, txn *models.Transaction) (err error) {
	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin earning tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = balance + $2, total_earnings = total_earnings + $2, updated_at = $3 WHERE teacher_id = $1`,
		txn.TeacherID, txn.Amount, txn.OccurredAt)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("credit wallet rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if _, err = tx.NamedExecContext(ctx, `INSERT INTO wallet_transactions (`+transactionColumns+`) VALUES (:id, :teacher_id, :type, :amount, :description, :status, :method, :occurred_at)`, txn); err != nil {
		return fmt.Errorf("record earning: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit earning: %w", err)
	}
	return nil
}

// SettleWithdrawals completes pending withdrawals recorded before the cutoff
// and releases their amounts from pending payments.
func (r *WalletRepository) SettleWithdrawals(ctx context.Context, before time.Time) (settled int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin settlement tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var rows []struct {
		TeacherID string  `db:"teacher_id"`
		Amount    float64 `db:"amount"`
	}
	if err = tx.SelectContext(ctx, &rows, `UPDATE wallet_transactions SET status = $1 WHERE type = $2 AND status = $3 AND occurred_at < $4 RETURNING teacher_id, amount`,
		models.TransactionCompleted, models.TransactionWithdrawal, models.TransactionPending, before); err != nil {
		return 0, fmt.Errorf("settle withdrawals: %w", err)
	}
	for _, row := range rows {
		if _, err = tx.ExecContext(ctx, `UPDATE wallets SET pending_payments = GREATEST(pending_payments - $2, 0) WHERE teacher_id = $1`, row.TeacherID, -row.Amount); err != nil {
			return 0, fmt.Errorf("release pending payment: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit settlement: %w", err)
	}
	return int64(len(rows)), nil
}
