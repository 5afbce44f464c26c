package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

type profileStore interface {
	FindProfile(ctx context.Context, id string) (*models.TeacherProfile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.TeacherProfile, error)
	UpdateProfile(ctx context.Context, profile *models.TeacherProfile) error
}

type catalogInvalidator interface {
	Invalidate(ctx context.Context)
}

// ProfileService edits the teacher dashboard profile.
type ProfileService struct {
	teachers  profileStore
	subjects  catalogSubjectReader
	catalog   catalogInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService. catalog may be nil.
func NewProfileService(teachers profileStore, subjects catalogSubjectReader, catalog catalogInvalidator, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{teachers: teachers, subjects: subjects, catalog: catalog, validator: validate, logger: logger}
}

// Get returns the profile of a teacher.
func (s *ProfileService) Get(ctx context.Context, teacherID string) (*models.TeacherProfile, error) {
	profile, err := s.teachers.FindProfile(ctx, teacherID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, storageError(err, "failed to load teacher profile")
	}
	return profile, nil
}

// Update replaces the editable fields of a teacher profile and returns the
// saved record.
func (s *ProfileService) Update(ctx context.Context, teacherID string, req dto.UpdateProfileRequest) (*models.TeacherProfile, error) {
	req = normalizeProfileRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	for _, day := range req.Availability {
		if !models.IsWeekdayName(day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown weekday in availability: "+day)
		}
	}
	if err := s.checkSubjects(ctx, req.Subjects); err != nil {
		return nil, err
	}

	profile, err := s.Get(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(profile.Email, req.Email) {
		other, err := s.teachers.FindProfileByEmail(ctx, req.Email)
		if err != nil && !notFound(err) {
			return nil, storageError(err, "failed to check email")
		}
		if other != nil && other.ID != profile.ID {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already used by another teacher")
		}
	}

	profile.Name = req.Name
	profile.Email = req.Email
	if req.Avatar != "" {
		profile.Avatar = req.Avatar
	}
	profile.Bio = req.Bio
	profile.Subjects = pq.StringArray(req.Subjects)
	profile.HourlyRate = req.HourlyRate
	profile.Experience = req.Experience
	profile.Languages = pq.StringArray(req.Languages)
	profile.Availability = pq.StringArray(sortWeekdays(req.Availability))
	profile.Education = req.Education
	profile.Certifications = pq.StringArray(req.Certifications)
	profile.Phone = req.Phone
	profile.Location = req.Location

	if err := s.teachers.UpdateProfile(ctx, profile); err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, storageError(err, "failed to save teacher profile")
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
	s.logger.Info("teacher profile saved", zap.String("teacher_id", profile.ID))
	return profile, nil
}

func (s *ProfileService) checkSubjects(ctx context.Context, names []string) error {
	if s.subjects == nil || len(names) == 0 {
		return nil
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return storageError(err, "failed to load subjects")
	}
	known := make(map[string]struct{}, len(subjects))
	for _, subject := range subjects {
		known[subject.Name] = struct{}{}
	}
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "unknown subject: "+name)
		}
	}
	return nil
}

func normalizeProfileRequest(req dto.UpdateProfileRequest) dto.UpdateProfileRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Avatar = strings.TrimSpace(req.Avatar)
	req.Bio = strings.TrimSpace(req.Bio)
	req.Experience = strings.TrimSpace(req.Experience)
	req.Education = strings.TrimSpace(req.Education)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Location = strings.TrimSpace(req.Location)
	req.Subjects = cleanList(req.Subjects)
	req.Languages = cleanList(req.Languages)
	req.Availability = cleanList(req.Availability)
	req.Certifications = cleanList(req.Certifications)
	return req
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func sortWeekdays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, name := range models.WeekdayNames {
		for _, d := range days {
			if d == name {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
