package service

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository/memory"
	"github.com/noah-isme/discipulus-api/internal/seed"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

func newWalletFixture(t *testing.T) *WalletService {
	store := newSeededStore(t)
	return NewWalletService(memory.NewWalletRepository(store), nil, NewMetricsService(), 48*time.Hour, time.UTC, nil)
}

func TestValidateWithdrawal(t *testing.T) {
	assert.ErrorIs(t, ValidateWithdrawal(100, 0), appErrors.ErrValidation)
	assert.ErrorIs(t, ValidateWithdrawal(100, -5), appErrors.ErrValidation)
	assert.ErrorIs(t, ValidateWithdrawal(100, 100.01), appErrors.ErrInsufficientBalance)
	assert.NoError(t, ValidateWithdrawal(100, 100))
	assert.NoError(t, ValidateWithdrawal(100, 0.01))
}

func TestWalletSummary(t *testing.T) {
	svc := newWalletFixture(t)
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC) }

	summary, err := svc.Summary(context.Background(), seed.DemoTeacherID)
	require.NoError(t, err)
	assert.Equal(t, 1250.50, summary.Balance)
	assert.Equal(t, 135.0, summary.MonthlyEarnings)
	require.Len(t, summary.Transactions, 3)
	assert.Equal(t, 45.0, summary.Transactions[0].Amount)

	_, err = svc.Summary(context.Background(), "404")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestWalletWithdrawDebitsBalance(t *testing.T) {
	svc := newWalletFixture(t)
	ctx := context.Background()

	result, err := svc.Withdraw(ctx, seed.DemoTeacherID, models.WithdrawalRequest{Amount: 250.5, Method: models.WithdrawBank})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, result.Wallet.Balance)
	assert.Equal(t, 570.5, result.Wallet.PendingPayments)
	assert.Equal(t, -250.5, result.Transaction.Amount)
	assert.Equal(t, models.TransactionPending, result.Transaction.Status)
	assert.Equal(t, "Saque via transferência bancária", result.Transaction.Description)
	assert.Equal(t, result.Transaction.ID, result.Wallet.Transactions[0].ID)

	_, err = svc.Withdraw(ctx, seed.DemoTeacherID, models.WithdrawalRequest{Amount: 1000.01, Method: models.WithdrawPix})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientBalance)

	_, err = svc.Withdraw(ctx, seed.DemoTeacherID, models.WithdrawalRequest{Amount: 0, Method: models.WithdrawPix})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Withdraw(ctx, seed.DemoTeacherID, models.WithdrawalRequest{Amount: 10, Method: "cash"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestWalletConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	svc := newWalletFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Withdraw(ctx, seed.DemoTeacherID, models.WithdrawalRequest{Amount: 100, Method: models.WithdrawPix}); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	summary, err := svc.Summary(ctx, seed.DemoTeacherID)
	require.NoError(t, err)
	assert.Equal(t, 12, accepted)
	assert.InDelta(t, 50.50, summary.Balance, 0.001)
	assert.GreaterOrEqual(t, summary.Balance, 0.0)
}

func TestWalletSettlePending(t *testing.T) {
	svc := newWalletFixture(t)
	ctx := context.Background()

	_, err := svc.Withdraw(ctx, seed.DemoTeacherID, models.WithdrawalRequest{Amount: 100, Method: models.WithdrawPix})
	require.NoError(t, err)

	settled, err := svc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), settled)

	svc.now = func() time.Time { return time.Now().Add(49 * time.Hour) }
	settled, err = svc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), settled)

	summary, err := svc.Summary(ctx, seed.DemoTeacherID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionCompleted, summary.Transactions[0].Status)
	assert.Equal(t, 320.0, summary.PendingPayments)
}

func TestWalletStatementFormats(t *testing.T) {
	svc := newWalletFixture(t)
	ctx := context.Background()

	csvStatement, err := svc.Statement(ctx, seed.DemoTeacherID, "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv; charset=utf-8", csvStatement.ContentType)
	assert.True(t, strings.HasSuffix(csvStatement.Filename, ".csv"))
	assert.Contains(t, string(csvStatement.Body), "Saque via PIX")
	assert.Contains(t, string(csvStatement.Body), "Saldo disponível,,,1250.50")

	pdfStatement, err := svc.Statement(ctx, seed.DemoTeacherID, "pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfStatement.Body, []byte("%PDF")))

	_, err = svc.Statement(ctx, seed.DemoTeacherID, "xml")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
