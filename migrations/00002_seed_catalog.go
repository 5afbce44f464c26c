package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/noah-isme/discipulus-api/internal/seed"
)

func init() {
	goose.AddMigrationContext(upSeedCatalog, downSeedCatalog)
}

func upSeedCatalog(ctx context.Context, tx *sql.Tx) error {
	now := time.Now().UTC()

	for i, s := range seed.Subjects() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subjects (id, name, category, icon, position) VALUES ($1, $2, $3, $4, $5)`,
			s.ID, s.Name, s.Category, s.Icon, i+1); err != nil {
			return fmt.Errorf("seed subject %s: %w", s.ID, err)
		}
	}

	for i, p := range seed.Profiles() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teachers (id, name, avatar, subjects, rating, review_count, hourly_rate, experience, bio, languages, availability, verified, email, education, certifications, phone, location, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $19)`,
			p.ID, p.Name, p.Avatar, p.Subjects, p.Rating, p.ReviewCount, p.HourlyRate, p.Experience, p.Bio,
			p.Languages, p.Availability, p.Verified, p.Email, p.Education, p.Certifications, p.Phone, p.Location,
			i+1, now); err != nil {
			return fmt.Errorf("seed teacher %s: %w", p.ID, err)
		}
	}

	users, err := seed.DemoUsers(now)
	if err != nil {
		return err
	}
	for _, u := range users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, name, email, avatar, role, password_hash, teacher_id, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.Name, u.Email, u.Avatar, u.Role, u.PasswordHash, u.TeacherID, u.CreatedAt); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	for _, w := range seed.DemoWallets(now) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wallets (teacher_id, balance, total_earnings, pending_payments, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			w.TeacherID, w.Balance, w.TotalEarnings, w.PendingPayments, w.UpdatedAt); err != nil {
			return fmt.Errorf("seed wallet %s: %w", w.TeacherID, err)
		}
	}

	for _, t := range seed.DemoTransactions() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wallet_transactions (id, teacher_id, type, amount, description, status, method, occurred_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.TeacherID, t.Type, t.Amount, t.Description, t.Status, t.Method, t.OccurredAt); err != nil {
			return fmt.Errorf("seed transaction %s: %w", t.ID, err)
		}
	}

	for _, c := range seed.DemoClasses(now, time.UTC) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scheduled_classes (id, teacher_id, teacher_name, teacher_avatar, student_id, student_name, subject, class_date, start_time, duration, status, meeting_link, price, notes, payment_method, booking_key, cancelled_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
			c.ID, c.TeacherID, c.TeacherName, c.TeacherAvatar, c.StudentID, c.StudentName, c.Subject, c.Date, c.Time,
			c.Duration, c.Status, c.MeetingLink, c.Price, c.Notes, c.PaymentMethod, c.BookingKey, c.CancelledAt,
			c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("seed class %s: %w", c.ID, err)
		}
	}
	return nil
}

func downSeedCatalog(ctx context.Context, tx *sql.Tx) error {
	for _, table := range []string{"wallet_transactions", "wallets", "messages", "conversations", "scheduled_classes", "sessions", "users", "teachers", "subjects"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
