package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/seed"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers  []models.Teacher
	profiles  map[string]*models.TeacherProfile
	listCalls int
	listErr   error
	updated   *models.TeacherProfile
	created   *models.TeacherProfile
}

func newMockTeacherRepo() *mockTeacherRepo {
	repo := &mockTeacherRepo{teachers: seed.Teachers(), profiles: make(map[string]*models.TeacherProfile)}
	for _, p := range seed.Profiles() {
		profile := p
		repo.profiles[p.ID] = &profile
	}
	return repo
}

func (m *mockTeacherRepo) List(context.Context) ([]models.Teacher, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.teachers, nil
}

func (m *mockTeacherRepo) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	for _, t := range m.teachers {
		if t.ID == id {
			teacher := t
			return &teacher, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindProfile(_ context.Context, id string) (*models.TeacherProfile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *mockTeacherRepo) FindProfileByEmail(_ context.Context, email string) (*models.TeacherProfile, error) {
	for _, p := range m.profiles {
		if p.Email != "" && p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) CreateProfile(_ context.Context, profile *models.TeacherProfile) error {
	m.created = profile
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockTeacherRepo) UpdateProfile(_ context.Context, profile *models.TeacherProfile) error {
	if _, ok := m.profiles[profile.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updated = profile
	m.profiles[profile.ID] = profile
	return nil
}

type mockSubjectRepo struct{}

func (mockSubjectRepo) List(context.Context) ([]models.Subject, error) {
	return seed.Subjects(), nil
}

func TestCatalogServiceListUsesCache(t *testing.T) {
	teachers := newMockTeacherRepo()
	cache := NewCacheService(newMockCacheRepo(), nil, time.Minute, nil, true)
	svc := NewCatalogService(teachers, mockSubjectRepo{}, cache, time.Minute, nil)
	ctx := context.Background()

	first, err := svc.List(ctx, models.TeacherQuery{Category: models.CategoryExact, Subjects: []string{"Física", "Literatura"}})
	require.NoError(t, err)
	assert.False(t, first.Meta.CacheHit)
	assert.Equal(t, []string{"Física"}, first.Meta.SelectedSubjects)
	assert.Len(t, first.Meta.VisibleSubjects, 6)
	require.Len(t, first.Teachers, 1)

	second, err := svc.List(ctx, models.TeacherQuery{Search: "kim"})
	require.NoError(t, err)
	assert.True(t, second.Meta.CacheHit)
	assert.Equal(t, models.CategoryAll, second.Meta.Category)
	assert.Equal(t, 1, teachers.listCalls)

	svc.Invalidate(ctx)
	_, err = svc.List(ctx, models.TeacherQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, teachers.listCalls)
}

func TestCatalogServiceRejectsUnknownCategory(t *testing.T) {
	svc := NewCatalogService(newMockTeacherRepo(), mockSubjectRepo{}, nil, 0, nil)

	_, err := svc.List(context.Background(), models.TeacherQuery{Category: "Artes"})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCatalogServiceGetNotFound(t *testing.T) {
	svc := NewCatalogService(newMockTeacherRepo(), mockSubjectRepo{}, nil, 0, nil)

	_, err := svc.Get(context.Background(), "99")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	teacher, err := svc.Get(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Emily Rodriguez", teacher.Name)
}

func TestCatalogServiceStorageFailure(t *testing.T) {
	teachers := newMockTeacherRepo()
	teachers.listErr = errors.New("dial tcp 127.0.0.1:5432: connection refused")
	svc := NewCatalogService(teachers, mockSubjectRepo{}, nil, 0, nil)

	_, err := svc.List(context.Background(), models.TeacherQuery{})
	assert.ErrorIs(t, err, appErrors.ErrTransient)
}

func TestCatalogServiceSubjectsByCategory(t *testing.T) {
	svc := NewCatalogService(newMockTeacherRepo(), mockSubjectRepo{}, nil, 0, nil)

	humanities, err := svc.Subjects(context.Background(), models.CategoryHumanity)
	require.NoError(t, err)
	assert.Len(t, humanities, 4)
	assert.Equal(t, []string{"Todas", "Exatas", "Humanas", "Negócios"}, svc.Categories())
}
