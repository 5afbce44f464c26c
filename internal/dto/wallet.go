package dto

import (
	"time"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// WalletSummary is the dashboard wallet view.
type WalletSummary struct {
	models.Wallet
	MonthlyEarnings float64              `json:"monthly_earnings"`
	Transactions    []models.Transaction `json:"transactions"`
}

// WithdrawalResult is returned after a withdrawal is accepted.
type WithdrawalResult struct {
	Wallet      WalletSummary      `json:"wallet"`
	Transaction models.Transaction `json:"transaction"`
	Message     string             `json:"message"`
}

// StatementLink points at a stored statement behind a signed download URL.
type StatementLink struct {
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	ExpiresAt time.Time `json:"expires_at"`
}
