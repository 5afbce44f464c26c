package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

const (
	catalogCacheKey     = "catalog:snapshot"
	catalogCachePattern = "catalog:*"
)

type catalogTeacherReader interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type catalogSubjectReader interface {
	List(ctx context.Context) ([]models.Subject, error)
}

// CatalogService serves the teacher catalog.
type CatalogService struct {
	teachers catalogTeacherReader
	subjects catalogSubjectReader
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(teachers catalogTeacherReader, subjects catalogSubjectReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{teachers: teachers, subjects: subjects, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *CatalogService) snapshot(ctx context.Context) (dto.CatalogSnapshot, bool, error) {
	var snap dto.CatalogSnapshot
	hit, err := s.cache.Remember(ctx, catalogCacheKey, s.cacheTTL, &snap, func(ctx context.Context) error {
		teachers, err := s.teachers.List(ctx)
		if err != nil {
			return storageError(err, "failed to load teachers")
		}
		subjects, err := s.subjects.List(ctx)
		if err != nil {
			return storageError(err, "failed to load subjects")
		}
		snap = dto.CatalogSnapshot{Teachers: teachers, Subjects: subjects}
		return nil
	})
	return snap, hit, err
}

// List filters and sorts the catalog.
func (s *CatalogService) List(ctx context.Context, query models.TeacherQuery) (*dto.TeacherListResult, error) {
	category := strings.TrimSpace(query.Category)
	if category == "" {
		category = models.CategoryAll
	}
	if !models.IsCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	snap, hit, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	visible := VisibleSubjects(snap.Subjects, category)
	selected := NormalizeSelection(query.Subjects, visible)
	teachers := FilterTeachers(snap.Teachers, query.Search, selected, query.SortBy)

	return &dto.TeacherListResult{
		Teachers: teachers,
		Meta: dto.TeacherListMeta{
			Count:            len(teachers),
			Category:         category,
			VisibleSubjects:  visible,
			SelectedSubjects: selected,
			SortBy:           query.SortBy,
			CacheHit:         hit,
		},
	}, nil
}

// Get fetches one teacher profile.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, storageError(err, "failed to load teacher")
	}
	return teacher, nil
}

// Subjects lists subjects, optionally restricted to a category.
func (s *CatalogService) Subjects(ctx context.Context, category string) ([]models.Subject, error) {
	if category != "" && !models.IsCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}
	snap, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" || category == models.CategoryAll {
		return snap.Subjects, nil
	}
	out := make([]models.Subject, 0, len(snap.Subjects))
	for _, subject := range snap.Subjects {
		if subject.Category == category {
			out = append(out, subject)
		}
	}
	return out, nil
}

// Categories lists the category filter options.
func (s *CatalogService) Categories() []string {
	out := make([]string, len(models.Categories))
	copy(out, models.Categories)
	return out
}

// Invalidate drops the cached catalog snapshot.
func (s *CatalogService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, catalogCachePattern)
	s.logger.Debug("catalog cache invalidated")
}
