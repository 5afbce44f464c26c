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
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

const cancellationPolicyMessage = "Cancelamentos feitos com menos de 24 horas de antecedência podem estar sujeitos a taxas. Verifique os termos com o professor."

type scheduleClassStore interface {
	FindByID(ctx context.Context, id string) (*models.ScheduledClass, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ScheduledClass, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduledClass, error)
	ListUpcomingByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.ScheduledClass, error)
	ListByStatus(ctx context.Context, status models.ClassStatus) ([]models.ScheduledClass, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ClassStatus, at time.Time) (bool, error)
	Reschedule(ctx context.Context, id, date, clock string, at time.Time) (bool, error)
}

type earningCreditor interface {
	CreditEarning(ctx context.Context, txn *models.Transaction) error
}

// ScheduleOptions configures schedule rules.
type ScheduleOptions struct {
	FeeWindow  time.Duration
	WindowDays int
	Location   *time.Location
}

// ScheduleService manages the classes of a principal.
type ScheduleService struct {
	classes   scheduleClassStore
	teachers  bookingTeacherReader
	wallets   earningCreditor
	validator *validator.Validate
	opts      ScheduleOptions
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(classes scheduleClassStore, teachers bookingTeacherReader, wallets earningCreditor, validate *validator.Validate, opts ScheduleOptions, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FeeWindow <= 0 {
		opts.FeeWindow = 24 * time.Hour
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 14
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ScheduleService{
		classes:   classes,
		teachers:  teachers,
		wallets:   wallets,
		validator: validate,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Overview partitions the principal's classes by status. Teachers see the
// classes they teach, everyone else the classes they booked.
func (s *ScheduleService) Overview(ctx context.Context, principal *models.JWTClaims) (*dto.ScheduleOverview, error) {
	var (
		classes []models.ScheduledClass
		err     error
	)
	if principal.IsTeacher() {
		classes, err = s.classes.ListByTeacher(ctx, principal.TeacherID)
	} else {
		classes, err = s.classes.ListByStudent(ctx, principal.UserID)
	}
	if err != nil {
		return nil, storageError(err, "failed to load classes")
	}

	overview := &dto.ScheduleOverview{
		Upcoming:  []models.ScheduledClass{},
		Completed: []models.ScheduledClass{},
		Cancelled: []models.ScheduledClass{},
	}
	for _, c := range classes {
		switch c.Status {
		case models.ClassUpcoming:
			overview.Upcoming = append(overview.Upcoming, c)
		case models.ClassCompleted:
			overview.Completed = append(overview.Completed, c)
		case models.ClassCancelled:
			overview.Cancelled = append(overview.Cancelled, c)
		}
	}
	return overview, nil
}

// CancellationPolicy describes the fee rule for cancelling a class now.
func (s *ScheduleService) CancellationPolicy(ctx context.Context, classID string, principal *models.JWTClaims) (*dto.CancellationPolicy, error) {
	class, err := s.load(ctx, classID, principal)
	if err != nil {
		return nil, err
	}
	start, err := class.StartsAt(s.opts.Location)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "class has an invalid start time")
	}
	now := s.now()
	return &dto.CancellationPolicy{
		ClassID:         class.ID,
		FeeWindowHours:  int(math.Round(s.opts.FeeWindow.Hours())),
		StartsAt:        start,
		WithinFeeWindow: now.Before(start) && start.Sub(now) < s.opts.FeeWindow,
		Message:         cancellationPolicyMessage,
	}, nil
}

// Cancel moves an upcoming class to cancelled.
func (s *ScheduleService) Cancel(ctx context.Context, classID string, principal *models.JWTClaims) (*models.ScheduledClass, error) {
	class, err := s.load(ctx, classID, principal)
	if err != nil {
		return nil, err
	}
	ok, err := s.classes.UpdateStatus(ctx, class.ID, models.ClassUpcoming, models.ClassCancelled, s.now().UTC())
	if err != nil {
		return nil, storageError(err, "failed to cancel class")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only upcoming classes can be cancelled")
	}
	s.logger.Info("class cancelled", zap.String("class_id", class.ID), zap.String("by", principal.UserID))
	return s.reload(ctx, class.ID)
}

// Reschedule moves an upcoming class to another free slot of its teacher.
func (s *ScheduleService) Reschedule(ctx context.Context, classID string, principal *models.JWTClaims, req models.RescheduleRequest) (*models.ScheduledClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD and time HH:MM")
	}
	class, err := s.load(ctx, classID, principal)
	if err != nil {
		return nil, err
	}
	if class.Status != models.ClassUpcoming {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only upcoming classes can be rescheduled")
	}

	teacher, err := s.teachers.FindByID(ctx, class.TeacherID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, storageError(err, "failed to load teacher")
	}
	if !IsAvailableDate(teacher.Availability, req.Date, s.now().In(s.opts.Location), s.opts.WindowDays) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher is not available on "+req.Date)
	}
	if !IsTimeSlot(req.Time) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time must be a half-hour slot between 08:00 and 20:00")
	}

	booked, err := s.classes.ListUpcomingByTeacherAndDate(ctx, class.TeacherID, req.Date)
	if err != nil {
		return nil, storageError(err, "failed to load booked classes")
	}
	for _, other := range booked {
		if other.ID != class.ID && other.Overlaps(req.Time, class.Duration) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "the selected time is not available")
		}
	}

	ok, err := s.classes.Reschedule(ctx, class.ID, req.Date, req.Time, s.now().UTC())
	if err != nil {
		return nil, storageError(err, "failed to reschedule class")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only upcoming classes can be rescheduled")
	}
	s.logger.Info("class rescheduled", zap.String("class_id", class.ID), zap.String("date", req.Date), zap.String("time", req.Time))
	return s.reload(ctx, class.ID)
}

// CompleteFinished marks upcoming classes that already ended as completed and
// credits the lesson price to the teacher's wallet.
func (s *ScheduleService) CompleteFinished(ctx context.Context) (int, error) {
	upcoming, err := s.classes.ListByStatus(ctx, models.ClassUpcoming)
	if err != nil {
		return 0, storageError(err, "failed to load upcoming classes")
	}
	now := s.now()
	completed := 0
	var errs []error
	for _, class := range upcoming {
		end, err := class.EndsAt(s.opts.Location)
		if err != nil {
			s.logger.Warn("skipping class with invalid start", zap.String("class_id", class.ID), zap.Error(err))
			continue
		}
		if end.After(now) {
			continue
		}
		ok, err := s.classes.UpdateStatus(ctx, class.ID, models.ClassUpcoming, models.ClassCompleted, now.UTC())
		if err != nil {
			errs = append(errs, fmt.Errorf("complete class %s: %w", class.ID, err))
			continue
		}
		if !ok {
			continue
		}
		completed++
		earning := &models.Transaction{
			ID:          uuid.NewString(),
			TeacherID:   class.TeacherID,
			Type:        models.TransactionEarning,
			Amount:      class.Price,
			Description: fmt.Sprintf("Aula de %s - %s", class.Subject, class.StudentName),
			Status:      models.TransactionCompleted,
			OccurredAt:  now.UTC(),
		}
		if err := s.wallets.CreditEarning(ctx, earning); err != nil {
			errs = append(errs, fmt.Errorf("credit class %s: %w", class.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return completed, storageError(err, "failed to complete some classes")
	}
	return completed, nil
}

func (s *ScheduleService) load(ctx context.Context, classID string, principal *models.JWTClaims) (*models.ScheduledClass, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, storageError(err, "failed to load class")
	}
	if class.StudentID == principal.UserID {
		return class, nil
	}
	if principal.IsTeacher() && class.TeacherID == principal.TeacherID {
		return class, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
}

func (s *ScheduleService) reload(ctx context.Context, id string) (*models.ScheduledClass, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		return nil, storageError(err, "failed to reload class")
	}
	return class, nil
}
