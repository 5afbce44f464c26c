package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/discipulus-api/internal/models"
)

const classColumns = "id, teacher_id, teacher_name, teacher_avatar, student_id, student_name, subject, class_date, start_time, duration, status, meeting_link, price, notes, payment_method, booking_key, cancelled_at, created_at, updated_at"

// ClassRepository persists scheduled classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// Create inserts a class. A reused booking key yields ErrDuplicateBooking.
func (r *ClassRepository) Create(ctx context.Context, class *models.ScheduledClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = class.CreatedAt
	const query = `INSERT INTO scheduled_classes (` + classColumns + `)
VALUES (:id, :teacher_id, :teacher_name, :teacher_avatar, :student_id, :student_name, :subject, :class_date, :start_time, :duration, :status, :meeting_link, :price, :notes, :payment_method, :booking_key, :cancelled_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "scheduled_classes_booking_key_key" {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// FindByID fetches a class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ScheduledClass, error) {
	return r.findOne(ctx, "id", id)
}

// FindByBookingKey fetches the class created from a booking draft.
func (r *ClassRepository) FindByBookingKey(ctx context.Context, key string) (*models.ScheduledClass, error) {
	return r.findOne(ctx, "booking_key", key)
}

func (r *ClassRepository) findOne(ctx context.Context, column, value string) (*models.ScheduledClass, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_classes WHERE %s = $1", classColumns, column)
	var class models.ScheduledClass
	if err := r.db.GetContext(ctx, &class, query, value); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByStudent returns the classes booked by a student ordered by start.
func (r *ClassRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ScheduledClass, error) {
	return r.list(ctx, "list student classes", "student_id = $1", studentID)
}

// ListByTeacher returns the classes taught by a teacher ordered by start.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduledClass, error) {
	return r.list(ctx, "list teacher classes", "teacher_id = $1", teacherID)
}

// ListUpcomingByTeacherAndDate returns the teacher's upcoming classes on a day.
func (r *ClassRepository) ListUpcomingByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.ScheduledClass, error) {
	return r.list(ctx, "list teacher day classes", "teacher_id = $1 AND class_date = $2 AND status = $3", teacherID, date, models.ClassUpcoming)
}

// ListByStatus returns every class in a status.
func (r *ClassRepository) ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.ScheduledClass, error) {
	return r.list(ctx, "list classes by status", "status = $1", status)
}

func (r *ClassRepository) list(ctx context.Context, op, where string, args ...interface{}) ([]models.ScheduledClass, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_classes WHERE %s ORDER BY class_date ASC, start_time ASC", classColumns, where)
	var classes []models.ScheduledClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return classes, nil
}

// UpdateStatus moves a class from one status to another. It reports false
// when the class was not in the expected status.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, from, to models.ClassStatus, at time.Time) (bool, error) {
	query := `UPDATE scheduled_classes SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	if to == models.ClassCancelled {
		query = `UPDATE scheduled_classes SET status = $3, updated_at = $4, cancelled_at = $4 WHERE id = $1 AND status = $2`
	}
	res, err := r.db.ExecContext(ctx, query, id, from, to, at)
	if err != nil {
		return false, fmt.Errorf("update class status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update class status rows: %w", err)
	}
	return affected == 1, nil
}

// Reschedule moves an upcoming class to a new slot. It reports false when
// the class is no longer upcoming.
func (r *ClassRepository) Reschedule(ctx context.Context, id, date, clock string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE scheduled_classes SET class_date = $2, start_time = $3, updated_at = $4 WHERE id = $1 AND status = $5`,
		id, date, clock, at, models.ClassUpcoming)
	if err != nil {
		return false, fmt.Errorf("reschedule class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reschedule class rows: %w", err)
	}
	return affected == 1, nil
}
