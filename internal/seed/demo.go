package seed

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// Demo account identifiers.
const (
	DemoStudentID    = "5b0f6a52-6d4c-4b8e-9a35-2f1f0d3c7a01"
	DemoStudentEmail = "joao.silva@email.com"
	DemoTeacherUser  = "5b0f6a52-6d4c-4b8e-9a35-2f1f0d3c7a02"
	DemoTeacherID    = "1"
	DemoTeacherEmail = "sarah.johnson@email.com"
	DemoPassword     = "discipulus123"
)

// DemoUsers returns the demo accounts with freshly hashed passwords.
func DemoUsers(now time.Time) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	teacherID := DemoTeacherID
	teacherAvatar := "https://images.pexels.com/photos/774909/pexels-photo-774909.jpeg" + pexels
	return []models.User{
		{
			ID:           DemoStudentID,
			Name:         "João Silva",
			Email:        DemoStudentEmail,
			Role:         models.RoleStudent,
			PasswordHash: string(hash),
			CreatedAt:    now,
		},
		{
			ID:           DemoTeacherUser,
			Name:         "Sarah Johnson",
			Email:        DemoTeacherEmail,
			Avatar:       &teacherAvatar,
			Role:         models.RoleTeacher,
			PasswordHash: string(hash),
			TeacherID:    &teacherID,
			CreatedAt:    now,
		},
	}, nil
}

// DemoClasses returns the demo student's classes. The upcoming one is placed
// on the next Monday after now so it stays in the future for a fresh store.
func DemoClasses(now time.Time, loc *time.Location) []models.ScheduledClass {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	days := (int(time.Monday) - int(local.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	upcomingDate := local.AddDate(0, 0, days).Format(models.DateLayout)
	link := "https://meet.google.com/abc-def-ghi"
	teachers := Teachers()

	return []models.ScheduledClass{
		{
			ID:            "c0a8012e-0000-4000-8000-000000000001",
			TeacherID:     teachers[0].ID,
			TeacherName:   teachers[0].Name,
			TeacherAvatar: teachers[0].Avatar,
			StudentID:     DemoStudentID,
			StudentName:   "João Silva",
			Subject:       "Matemática",
			Date:          upcomingDate,
			Time:          "14:00",
			Duration:      60,
			Status:        models.ClassUpcoming,
			MeetingLink:   &link,
			Price:         45,
			PaymentMethod: models.PaymentCredit,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			ID:            "c0a8012e-0000-4000-8000-000000000002",
			TeacherID:     teachers[1].ID,
			TeacherName:   teachers[1].Name,
			TeacherAvatar: teachers[1].Avatar,
			StudentID:     DemoStudentID,
			StudentName:   "João Silva",
			Subject:       "Programação",
			Date:          "2024-01-12",
			Time:          "16:30",
			Duration:      90,
			Status:        models.ClassCompleted,
			Price:         82.5,
			PaymentMethod: models.PaymentPix,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

// DemoWallets returns a wallet for every catalog teacher. Only the demo
// teacher starts with funds.
func DemoWallets(now time.Time) []models.Wallet {
	teachers := Teachers()
	wallets := make([]models.Wallet, 0, len(teachers))
	for _, t := range teachers {
		w := models.Wallet{TeacherID: t.ID, UpdatedAt: now}
		if t.ID == DemoTeacherID {
			w.Balance = 1250.50
			w.TotalEarnings = 8750
			w.PendingPayments = 320
		}
		wallets = append(wallets, w)
	}
	return wallets
}

// DemoTransactions returns the demo teacher's ledger.
func DemoTransactions() []models.Transaction {
	pix := models.WithdrawPix
	return []models.Transaction{
		{
			ID:          "7d9e3b10-0000-4000-8000-000000000001",
			TeacherID:   DemoTeacherID,
			Type:        models.TransactionEarning,
			Amount:      45,
			Description: "Aula de Matemática - João Silva",
			Status:      models.TransactionCompleted,
			OccurredAt:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "7d9e3b10-0000-4000-8000-000000000002",
			TeacherID:   DemoTeacherID,
			Type:        models.TransactionEarning,
			Amount:      90,
			Description: "Aula de Física - Maria Santos",
			Status:      models.TransactionCompleted,
			OccurredAt:  time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:          "7d9e3b10-0000-4000-8000-000000000003",
			TeacherID:   DemoTeacherID,
			Type:        models.TransactionWithdrawal,
			Amount:      -500,
			Description: "Saque via PIX",
			Status:      models.TransactionCompleted,
			Method:      &pix,
			OccurredAt:  time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		},
	}
}
