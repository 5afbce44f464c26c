package memory

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// TeacherRepository serves teachers from the store.
type TeacherRepository struct {
	store *Store
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(store *Store) *TeacherRepository {
	return &TeacherRepository{store: store}
}

// List returns the catalog table in its source order.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Teacher, 0, len(r.store.teachers))
	for _, p := range r.store.teachers {
		out = append(out, cloneProfile(p).Teacher)
	}
	return out, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	profile, err := r.FindProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return &profile.Teacher, nil
}

// FindProfile fetches the dashboard profile of a teacher.
func (r *TeacherRepository) FindProfile(ctx context.Context, id string) (*models.TeacherProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.teachers {
		if p.ID == id {
			clone := cloneProfile(p)
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FindProfileByEmail fetches a profile by its contact email.
func (r *TeacherRepository) FindProfileByEmail(ctx context.Context, email string) (*models.TeacherProfile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, p := range r.store.teachers {
		if p.Email != "" && strings.EqualFold(p.Email, email) {
			clone := cloneProfile(p)
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

// CreateProfile appends a teacher to the catalog.
func (r *TeacherRepository) CreateProfile(ctx context.Context, profile *models.TeacherProfile) error {
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.teachers = append(r.store.teachers, cloneProfile(*profile))
	return nil
}

// UpdateProfile overwrites the editable profile fields.
func (r *TeacherRepository) UpdateProfile(ctx context.Context, profile *models.TeacherProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, p := range r.store.teachers {
		if p.ID != profile.ID {
			continue
		}
		updated := cloneProfile(*profile)
		updated.Rating = p.Rating
		updated.ReviewCount = p.ReviewCount
		updated.Verified = p.Verified
		r.store.teachers[i] = updated
		return nil
	}
	return sql.ErrNoRows
}

// SubjectRepository serves the subject table.
type SubjectRepository struct {
	store *Store
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(store *Store) *SubjectRepository {
	return &SubjectRepository{store: store}
}

// List returns subjects in display order.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.Subject, len(r.store.subjects))
	copy(out, r.store.subjects)
	return out, nil
}
