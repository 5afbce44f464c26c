package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/export"
)

const withdrawalRequestedMessage = "Solicitação de saque enviada com sucesso! Os saques são processados em até 2 dias úteis."

type walletStore interface {
	Get(ctx context.Context, teacherID string) (*models.Wallet, error)
	ListTransactions(ctx context.Context, teacherID string) ([]models.Transaction, error)
	Withdraw(ctx context.Context, txn *models.Transaction) (*models.Wallet, error)
	SettleWithdrawals(ctx context.Context, before time.Time) (int64, error)
}

// Statement is a rendered ledger export.
type Statement struct {
	Filename    string
	ContentType string
	Body        []byte
}

// WalletService exposes the teacher wallet and withdrawals.
type WalletService struct {
	wallets         walletStore
	validator       *validator.Validate
	metrics         *MetricsService
	settlementDelay time.Duration
	loc             *time.Location
	logger          *zap.Logger
	now             func() time.Time
}

// NewWalletService constructs a WalletService.
func NewWalletService(wallets walletStore, validate *validator.Validate, metrics *MetricsService, settlementDelay time.Duration, loc *time.Location, logger *zap.Logger) *WalletService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if settlementDelay <= 0 {
		settlementDelay = 48 * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WalletService{
		wallets:         wallets,
		validator:       validate,
		metrics:         metrics,
		settlementDelay: settlementDelay,
		loc:             loc,
		logger:          logger,
		now:             time.Now,
	}
}

// ValidateWithdrawal enforces 0 < amount <= balance.
func ValidateWithdrawal(balance, amount float64) error {
	if math.IsNaN(amount) || amount <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "withdrawal amount must be greater than zero")
	}
	if roundCents(amount) > roundCents(balance) {
		return appErrors.Clone(appErrors.ErrInsufficientBalance, "withdrawal amount exceeds the available balance")
	}
	return nil
}

// Summary returns the wallet aggregates and ledger of a teacher.
func (s *WalletService) Summary(ctx context.Context, teacherID string) (*dto.WalletSummary, error) {
	wallet, err := s.wallets.Get(ctx, teacherID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "wallet not found")
		}
		return nil, storageError(err, "failed to load wallet")
	}
	txns, err := s.wallets.ListTransactions(ctx, teacherID)
	if err != nil {
		return nil, storageError(err, "failed to load transactions")
	}
	return &dto.WalletSummary{
		Wallet:          *wallet,
		MonthlyEarnings: s.monthlyEarnings(txns),
		Transactions:    txns,
	}, nil
}

// Withdraw debits the balance and records a pending withdrawal.
func (s *WalletService) Withdraw(ctx context.Context, teacherID string, req models.WithdrawalRequest) (*dto.WithdrawalResult, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordWithdrawal("invalid")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "method must be pix or bank")
	}
	amount := roundCents(req.Amount)

	wallet, err := s.wallets.Get(ctx, teacherID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "wallet not found")
		}
		return nil, storageError(err, "failed to load wallet")
	}
	if err := ValidateWithdrawal(wallet.Balance, amount); err != nil {
		s.metrics.RecordWithdrawal("rejected")
		return nil, err
	}

	method := req.Method
	txn := &models.Transaction{
		ID:          uuid.NewString(),
		TeacherID:   teacherID,
		Type:        models.TransactionWithdrawal,
		Amount:      -amount,
		Description: withdrawalDescription(method),
		Status:      models.TransactionPending,
		Method:      &method,
		OccurredAt:  s.now().UTC(),
	}
	if _, err := s.wallets.Withdraw(ctx, txn); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			s.metrics.RecordWithdrawal("rejected")
			return nil, appErrors.Clone(appErrors.ErrInsufficientBalance, "withdrawal amount exceeds the available balance")
		case notFound(err):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "wallet not found")
		default:
			return nil, storageError(err, "failed to record withdrawal")
		}
	}
	s.metrics.RecordWithdrawal("accepted")
	s.logger.Info("withdrawal requested",
		zap.String("teacher_id", teacherID),
		zap.Float64("amount", amount),
		zap.String("method", string(method)),
		zap.String("transaction_id", txn.ID),
	)

	summary, err := s.Summary(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return &dto.WithdrawalResult{Wallet: *summary, Transaction: *txn, Message: withdrawalRequestedMessage}, nil
}

// Statement renders the ledger as csv or pdf.
func (s *WalletService) Statement(ctx context.Context, teacherID, format string) (*Statement, error) {
	exporter, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	summary, err := s.Summary(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Title:   "Extrato da carteira",
		Headers: []string{"Data", "Descrição", "Tipo", "Status", "Valor"},
		Numeric: map[string]bool{"Valor": true},
		Rows:    make([]map[string]string, 0, len(summary.Transactions)),
		Footer:  map[string]string{"Descrição": "Saldo disponível", "Valor": formatAmount(summary.Balance)},
	}
	for _, txn := range summary.Transactions {
		data.Rows = append(data.Rows, map[string]string{
			"Data":      txn.OccurredAt.In(s.loc).Format(models.DateLayout),
			"Descrição": txn.Description,
			"Tipo":      string(txn.Type),
			"Status":    string(txn.Status),
			"Valor":     formatAmount(txn.Amount),
		})
	}
	body, err := exporter.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
	}
	return &Statement{
		Filename:    fmt.Sprintf("extrato-%s-%s.%s", teacherID, s.now().In(s.loc).Format("20060102"), exporter.Extension()),
		ContentType: exporter.ContentType(),
		Body:        body,
	}, nil
}

// SettlePending completes withdrawals older than the settlement delay.
func (s *WalletService) SettlePending(ctx context.Context) (int64, error) {
	settled, err := s.wallets.SettleWithdrawals(ctx, s.now().UTC().Add(-s.settlementDelay))
	if err != nil {
		return 0, storageError(err, "failed to settle withdrawals")
	}
	return settled, nil
}

func (s *WalletService) monthlyEarnings(txns []models.Transaction) float64 {
	now := s.now().In(s.loc)
	var total float64
	for _, txn := range txns {
		if txn.Type != models.TransactionEarning || txn.Status != models.TransactionCompleted {
			continue
		}
		at := txn.OccurredAt.In(s.loc)
		if at.Year() == now.Year() && at.Month() == now.Month() {
			total += txn.Amount
		}
	}
	return roundCents(total)
}

func withdrawalDescription(method models.WithdrawMethod) string {
	if method == models.WithdrawBank {
		return "Saque via transferência bancária"
	}
	return "Saque via PIX"
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
