package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/jobs"
)

// JobBookingConfirmation is the notification job queued after a submit.
const JobBookingConfirmation = "booking.confirmation"

const bookingConfirmedMessage = "Aula agendada com sucesso! Você receberá uma confirmação por email."

type bookingTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type bookingClassStore interface {
	Create(ctx context.Context, class *models.ScheduledClass) error
	FindByBookingKey(ctx context.Context, key string) (*models.ScheduledClass, error)
	ListUpcomingByTeacherAndDate(ctx context.Context, teacherID, date string) ([]models.ScheduledClass, error)
}

// DraftStore persists booking wizard drafts.
type DraftStore interface {
	Save(ctx context.Context, draft *models.BookingDraft) error
	Get(ctx context.Context, id string) (*models.BookingDraft, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// BookingOptions tunes the booking wizard.
type BookingOptions struct {
	WindowDays     int
	DraftTTL       time.Duration
	MeetingBaseURL string
	Location       *time.Location
}

// BookingService runs the booking wizard and turns submitted drafts into classes.
type BookingService struct {
	teachers bookingTeacherReader
	classes  bookingClassStore
	drafts   DraftStore
	notify   jobEnqueuer
	metrics  *MetricsService
	opts     BookingOptions
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService constructs a BookingService. notify may be nil.
func NewBookingService(teachers bookingTeacherReader, classes bookingClassStore, drafts DraftStore, notify jobEnqueuer, metrics *MetricsService, opts BookingOptions, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = 14
	}
	if opts.DraftTTL <= 0 {
		opts.DraftTTL = 30 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &BookingService{
		teachers: teachers,
		classes:  classes,
		drafts:   drafts,
		notify:   notify,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *BookingService) localNow() time.Time {
	return s.now().In(s.opts.Location)
}

func (s *BookingService) loadTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, storageError(err, "failed to load teacher")
	}
	return teacher, nil
}

// Availability lists bookable dates, durations and, when date is set, the
// free time slots of that day for a lesson of the given duration.
func (s *BookingService) Availability(ctx context.Context, teacherID, date string, duration int) (*dto.TeacherAvailability, error) {
	if duration == 0 {
		duration = models.DefaultLessonDuration
	}
	if !models.IsLessonDuration(duration) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be 30, 60, 90 or 120 minutes")
	}
	teacher, err := s.loadTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	result := &dto.TeacherAvailability{
		TeacherID:  teacher.ID,
		HourlyRate: teacher.HourlyRate,
		Date:       date,
		Dates:      AvailableDates(teacher.Availability, s.localNow(), s.opts.WindowDays),
		Times:      TimeSlots(),
		Durations:  make([]dto.DurationOption, 0, len(models.LessonDurations)),
	}
	for _, minutes := range models.LessonDurations {
		result.Durations = append(result.Durations, dto.DurationOption{Minutes: minutes, Price: LessonPrice(teacher.HourlyRate, minutes)})
	}

	if date != "" {
		if !IsAvailableDate(teacher.Availability, date, s.localNow(), s.opts.WindowDays) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher is not available on "+date)
		}
		booked, err := s.classes.ListUpcomingByTeacherAndDate(ctx, teacher.ID, date)
		if err != nil {
			return nil, storageError(err, "failed to load booked classes")
		}
		result.Times = FreeSlots(result.Times, booked, duration)
	}
	return result, nil
}

// CreateDraft opens the wizard for a student on step 1.
func (s *BookingService) CreateDraft(ctx context.Context, teacherID, studentID, studentName string) (*dto.BookingDraftView, error) {
	teacher, err := s.loadTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	draft := &models.BookingDraft{
		ID:            uuid.NewString(),
		TeacherID:     teacher.ID,
		StudentID:     studentID,
		StudentName:   studentName,
		Step:          models.StepSchedule,
		Duration:      models.DefaultLessonDuration,
		PaymentMethod: models.PaymentCredit,
		HourlyRate:    teacher.HourlyRate,
		Price:         LessonPrice(teacher.HourlyRate, models.DefaultLessonDuration),
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.opts.DraftTTL),
	}
	if len(teacher.Subjects) > 0 {
		draft.Subject = teacher.Subjects[0]
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, storageError(err, "failed to save booking draft")
	}
	return draftView(draft), nil
}

// GetDraft returns a student's draft.
func (s *BookingService) GetDraft(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error) {
	draft, err := s.loadDraft(ctx, draftID, studentID)
	if err != nil {
		return nil, err
	}
	return draftView(draft), nil
}

// UpdateDraft applies field edits allowed on the current step.
func (s *BookingService) UpdateDraft(ctx context.Context, draftID, studentID string, patch models.BookingDraftPatch) (*dto.BookingDraftView, error) {
	draft, err := s.loadDraft(ctx, draftID, studentID)
	if err != nil {
		return nil, err
	}
	if err := applyPatch(draft, patch); err != nil {
		return nil, err
	}
	if patch.Date != nil || patch.Time != nil || patch.Subject != nil {
		teacher, err := s.loadTeacher(ctx, draft.TeacherID)
		if err != nil {
			return nil, err
		}
		if err := s.validateSelection(teacher, draft); err != nil {
			return nil, err
		}
	}
	return s.saveDraft(ctx, draft)
}

// Next moves the wizard forward one step.
func (s *BookingService) Next(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error) {
	draft, err := s.loadDraft(ctx, draftID, studentID)
	if err != nil {
		return nil, err
	}
	if err := advanceStep(draft); err != nil {
		return nil, err
	}
	return s.saveDraft(ctx, draft)
}

// Back moves the wizard back one step, staying on step 1.
func (s *BookingService) Back(ctx context.Context, draftID, studentID string) (*dto.BookingDraftView, error) {
	draft, err := s.loadDraft(ctx, draftID, studentID)
	if err != nil {
		return nil, err
	}
	retreatStep(draft)
	return s.saveDraft(ctx, draft)
}

// DiscardDraft closes the wizard without booking.
func (s *BookingService) DiscardDraft(ctx context.Context, draftID, studentID string) error {
	if _, err := s.loadDraft(ctx, draftID, studentID); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return storageError(err, "failed to delete booking draft")
	}
	return nil
}

// Submit books the class described by a draft on the payment step. The draft
// id is the booking key: submitting it again returns the class already created.
func (s *BookingService) Submit(ctx context.Context, draftID, studentID string) (*dto.BookingConfirmation, error) {
	if existing, err := s.classes.FindByBookingKey(ctx, draftID); err == nil {
		return s.replay(existing, studentID)
	} else if !notFound(err) {
		return nil, storageError(err, "failed to check booking")
	}

	draft, err := s.loadDraft(ctx, draftID, studentID)
	if err != nil {
		return nil, err
	}
	if !canSubmit(draft) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStep, "booking can only be submitted from the payment step")
	}
	teacher, err := s.loadTeacher(ctx, draft.TeacherID)
	if err != nil {
		return nil, err
	}
	if err := s.validateSelection(teacher, draft); err != nil {
		return nil, err
	}

	booked, err := s.classes.ListUpcomingByTeacherAndDate(ctx, teacher.ID, draft.Date)
	if err != nil {
		return nil, storageError(err, "failed to load booked classes")
	}
	for _, c := range booked {
		if c.Overlaps(draft.Time, draft.Duration) {
			s.metrics.RecordBooking("conflict")
			return nil, appErrors.Clone(appErrors.ErrConflict, "the selected time is no longer available")
		}
	}

	now := s.now().UTC()
	key := draft.ID
	classID := uuid.NewString()
	link := s.meetingLink(classID)
	class := &models.ScheduledClass{
		ID:            classID,
		TeacherID:     teacher.ID,
		TeacherName:   teacher.Name,
		TeacherAvatar: teacher.Avatar,
		StudentID:     draft.StudentID,
		StudentName:   draft.StudentName,
		Subject:       draft.Subject,
		Date:          draft.Date,
		Time:          draft.Time,
		Duration:      draft.Duration,
		Status:        models.ClassUpcoming,
		MeetingLink:   link,
		Price:         LessonPrice(teacher.HourlyRate, draft.Duration),
		Notes:         draft.Notes,
		PaymentMethod: draft.PaymentMethod,
		BookingKey:    &key,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		if errors.Is(err, repository.ErrDuplicateBooking) {
			existing, findErr := s.classes.FindByBookingKey(ctx, draftID)
			if findErr != nil {
				return nil, storageError(findErr, "failed to load booking")
			}
			return s.replay(existing, studentID)
		}
		return nil, storageError(err, "failed to create class")
	}

	if err := s.drafts.Delete(ctx, draft.ID); err != nil {
		s.logger.Warn("failed to delete submitted draft", zap.String("draft_id", draft.ID), zap.Error(err))
	}
	s.enqueueConfirmation(class)
	s.metrics.RecordBooking("created")
	s.logger.Info("class booked",
		zap.String("class_id", class.ID),
		zap.String("teacher_id", class.TeacherID),
		zap.String("student_id", class.StudentID),
		zap.String("date", class.Date),
		zap.String("time", class.Time),
		zap.Float64("price", class.Price),
		zap.String("payment_method", string(class.PaymentMethod)),
	)

	return &dto.BookingConfirmation{Class: *class, Message: bookingConfirmedMessage}, nil
}

// PurgeExpiredDrafts drops drafts past their TTL.
func (s *BookingService) PurgeExpiredDrafts(ctx context.Context) (int, error) {
	removed, err := s.drafts.PurgeExpired(ctx, s.now())
	if err != nil {
		return 0, storageError(err, "failed to purge drafts")
	}
	return removed, nil
}

func (s *BookingService) replay(class *models.ScheduledClass, studentID string) (*dto.BookingConfirmation, error) {
	if class.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking draft not found")
	}
	s.metrics.RecordBooking("replayed")
	return &dto.BookingConfirmation{Class: *class, Message: bookingConfirmedMessage, Replay: true}, nil
}

func (s *BookingService) validateSelection(teacher *models.Teacher, draft *models.BookingDraft) error {
	if draft.Date != "" && !IsAvailableDate(teacher.Availability, draft.Date, s.localNow(), s.opts.WindowDays) {
		return appErrors.Clone(appErrors.ErrValidation, "teacher is not available on "+draft.Date)
	}
	if draft.Time != "" && !IsTimeSlot(draft.Time) {
		return appErrors.Clone(appErrors.ErrValidation, "time must be a half-hour slot between 08:00 and 20:00")
	}
	if draft.Subject != "" && !teacher.HasSubject(draft.Subject) {
		return appErrors.Clone(appErrors.ErrValidation, "teacher does not teach "+draft.Subject)
	}
	return nil
}

func (s *BookingService) loadDraft(ctx context.Context, draftID, studentID string) (*models.BookingDraft, error) {
	draft, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking draft not found")
		}
		return nil, storageError(err, "failed to load booking draft")
	}
	if draft.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "booking draft not found")
	}
	return draft, nil
}

func (s *BookingService) saveDraft(ctx context.Context, draft *models.BookingDraft) (*dto.BookingDraftView, error) {
	draft.ExpiresAt = s.now().UTC().Add(s.opts.DraftTTL)
	if err := s.drafts.Save(ctx, draft); err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking draft expired")
		}
		return nil, storageError(err, "failed to save booking draft")
	}
	return draftView(draft), nil
}

func (s *BookingService) meetingLink(classID string) *string {
	if s.opts.MeetingBaseURL == "" {
		return nil
	}
	link := strings.TrimRight(s.opts.MeetingBaseURL, "/") + "/" + classID
	return &link
}

func (s *BookingService) enqueueConfirmation(class *models.ScheduledClass) {
	if s.notify == nil {
		return
	}
	job := jobs.Job{ID: class.ID, Type: JobBookingConfirmation, Payload: *class}
	if err := s.notify.Enqueue(job); err != nil {
		s.logger.Warn("failed to queue booking confirmation", zap.String("class_id", class.ID), zap.Error(err))
	}
}

func draftView(d *models.BookingDraft) *dto.BookingDraftView {
	return &dto.BookingDraftView{BookingDraft: *d, CanAdvance: canAdvance(d), CanSubmit: canSubmit(d)}
}
