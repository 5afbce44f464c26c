package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
)

// ClassRepository stores scheduled classes.
type ClassRepository struct {
	store *Store
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(store *Store) *ClassRepository {
	return &ClassRepository{store: store}
}

// Create inserts a class. A reused booking key yields ErrDuplicateBooking.
func (r *ClassRepository) Create(ctx context.Context, class *models.ScheduledClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	class.UpdatedAt = class.CreatedAt

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if class.BookingKey != nil {
		for _, existing := range r.store.classes {
			if existing.BookingKey != nil && *existing.BookingKey == *class.BookingKey {
				return repository.ErrDuplicateBooking
			}
		}
	}
	r.store.classes[class.ID] = *class
	return nil
}

// FindByID fetches a class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ScheduledClass, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	c, ok := r.store.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

// FindByBookingKey fetches the class created from a booking draft.
func (r *ClassRepository) FindByBookingKey(ctx context.Context, key string) (*models.ScheduledClass, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.classes {
		if c.BookingKey != nil && *c.BookingKey == key {
			class := c
			return &class, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *ClassRepository) filter(keep func(models.ScheduledClass) bool) []models.ScheduledClass {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]models.ScheduledClass, 0)
	for _, c := range r.store.classes {
		if keep(c) {
			out = append(out, c)
		}
	}
	sortClasses(out)
	return out
}

// ListByStudent returns the classes booked by a student ordered by start.
func (r *ClassRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ScheduledClass, error) {
	return r.filter(func(c models.ScheduledClass) bool { return c.StudentID == studentID }), nil
}

// ListByTeacher returns the classes taught by a teacher ordered by start.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduledClass, error) {
	return r.filter(func(c models.ScheduledClass) bool { return c.TeacherID == teacherID }), nil
}

// ListUpcomingByTeacherAndDate returns the teacher's upcoming classes on a day.
func (r *ClassRepository) ListUpcomingByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.ScheduledClass, error) {
	return r.filter(func(c models.ScheduledClass) bool {
		return c.TeacherID == teacherID && c.Date == date && c.Status == models.ClassUpcoming
	}), nil
}

// ListByStatus returns every class in a status.
func (r *ClassRepository) ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.ScheduledClass, error) {
	return r.filter(func(c models.ScheduledClass) bool { return c.Status == status }), nil
}

// UpdateStatus moves a class from one status to another. It reports false
// when the class was not in the expected status.
func (r *ClassRepository) UpdateStatus(ctx context.Context, id string, from, to models.ClassStatus, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.classes[id]
	if !ok || c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = at
	if to == models.ClassCancelled {
		c.CancelledAt = &at
	}
	r.store.classes[id] = c
	return true, nil
}

// Reschedule moves an upcoming class to a new slot.
func (r *ClassRepository) Reschedule(ctx context.Context, id, date, clock string, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.classes[id]
	if !ok || c.Status != models.ClassUpcoming {
		return false, nil
	}
	c.Date = date
	c.Time = clock
	c.UpdatedAt = at
	r.store.classes[id] = c
	return true, nil
}
