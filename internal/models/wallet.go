package models

import "time"

// TransactionType classifies ledger entries.
type TransactionType string

const (
	TransactionEarning    TransactionType = "earning"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus tracks ledger entry settlement.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionFailed    TransactionStatus = "failed"
)

// WithdrawMethod is the payout channel for a withdrawal.
type WithdrawMethod string

const (
	WithdrawPix  WithdrawMethod = "pix"
	WithdrawBank WithdrawMethod = "bank"
)

// Wallet holds a teacher's balance aggregates.
type Wallet struct {
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	Balance         float64   `db:"balance" json:"balance"`
	TotalEarnings   float64   `db:"total_earnings" json:"total_earnings"`
	PendingPayments float64   `db:"pending_payments" json:"pending_payments"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is one wallet ledger entry. Withdrawals carry negative amounts.
type Transaction struct {
	ID          string            `db:"id" json:"id"`
	TeacherID   string            `db:"teacher_id" json:"teacher_id"`
	Type        TransactionType   `db:"type" json:"type"`
	Amount      float64           `db:"amount" json:"amount"`
	Description string            `db:"description" json:"description"`
	Status      TransactionStatus `db:"status" json:"status"`
	Method      *WithdrawMethod   `db:"method" json:"method,omitempty"`
	OccurredAt  time.Time         `db:"occurred_at" json:"date"`
}

// WithdrawalRequest asks to move funds out of the wallet.
type WithdrawalRequest struct {
	Amount float64        `json:"amount"`
	Method WithdrawMethod `json:"method" validate:"required,oneof=pix bank"`
}
