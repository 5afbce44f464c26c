package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/discipulus-api/internal/models"
)

const teacherColumns = "id, name, avatar, subjects, rating, review_count, hourly_rate, experience, bio, languages, availability, verified"

const profileColumns = teacherColumns + ", email, education, certifications, phone, location, updated_at"

// TeacherRepository manages persistence for catalog teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns the catalog table in its source order.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers ORDER BY position ASC, id ASC", teacherColumns)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindProfile fetches the dashboard profile of a teacher.
func (r *TeacherRepository) FindProfile(ctx context.Context, id string) (*models.TeacherProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", profileColumns)
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindProfileByEmail fetches a profile by its contact email.
func (r *TeacherRepository) FindProfileByEmail(ctx context.Context, email string) (*models.TeacherProfile, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE LOWER(email) = LOWER($1)", profileColumns)
	var profile models.TeacherProfile
	if err := r.db.GetContext(ctx, &profile, query, email); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile inserts a new teacher at the end of the catalog.
func (r *TeacherRepository) CreateProfile(ctx context.Context, profile *models.TeacherProfile) error {
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teachers (id, name, avatar, subjects, rating, review_count, hourly_rate, experience, bio, languages, availability, verified, email, education, certifications, phone, location, position, created_at, updated_at)
VALUES (:id, :name, :avatar, :subjects, :rating, :review_count, :hourly_rate, :experience, :bio, :languages, :availability, :verified, :email, :education, :certifications, :phone, :location, (SELECT COALESCE(MAX(position), 0) + 1 FROM teachers), :updated_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// UpdateProfile overwrites the editable profile fields.
func (r *TeacherRepository) UpdateProfile(ctx context.Context, profile *models.TeacherProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET name = :name, avatar = :avatar, subjects = :subjects, hourly_rate = :hourly_rate, experience = :experience, bio = :bio, languages = :languages, availability = :availability, email = :email, education = :education, certifications = :certifications, phone = :phone, location = :location, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update teacher rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
