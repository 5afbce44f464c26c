package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/dto"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

type invalidationCounter struct{ calls int }

func (c *invalidationCounter) Invalidate(context.Context) { c.calls++ }

func validProfileRequest() dto.UpdateProfileRequest {
	return dto.UpdateProfileRequest{
		Name:           "  Sarah Johnson ",
		Email:          "Sarah.Johnson@Email.com",
		Bio:            "Professora de matemática.",
		Subjects:       []string{"Matemática", " Física", "Matemática", ""},
		HourlyRate:     50,
		Experience:     "9 anos",
		Languages:      []string{"Português", "Inglês"},
		Availability:   []string{"Sexta", "Segunda"},
		Certifications: []string{"Licenciatura"},
	}
}

func TestProfileUpdateNormalisesAndInvalidatesCatalog(t *testing.T) {
	repo := newMockTeacherRepo()
	counter := &invalidationCounter{}
	svc := NewProfileService(repo, &mockSubjectRepo{}, counter, nil, nil)

	profile, err := svc.Update(context.Background(), "1", validProfileRequest())
	require.NoError(t, err)

	assert.Equal(t, "Sarah Johnson", profile.Name)
	assert.Equal(t, "sarah.johnson@email.com", profile.Email)
	assert.Equal(t, []string{"Matemática", "Física"}, []string(profile.Subjects))
	assert.Equal(t, []string{"Segunda", "Sexta"}, []string(profile.Availability))
	assert.Equal(t, 50.0, profile.HourlyRate)
	assert.Equal(t, 4.9, profile.Rating)
	assert.Equal(t, 1, counter.calls)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "1", repo.updated.ID)
}

func TestProfileUpdateValidation(t *testing.T) {
	svc := NewProfileService(newMockTeacherRepo(), &mockSubjectRepo{}, nil, nil, nil)
	ctx := context.Background()

	req := validProfileRequest()
	req.HourlyRate = 0
	_, err := svc.Update(ctx, "1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validProfileRequest()
	req.Availability = []string{"Monday"}
	_, err = svc.Update(ctx, "1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validProfileRequest()
	req.Subjects = []string{"Astrologia"}
	_, err = svc.Update(ctx, "1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = validProfileRequest()
	req.Email = "not-an-email"
	_, err = svc.Update(ctx, "1", req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(ctx, "404", validProfileRequest())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestProfileGetMissing(t *testing.T) {
	svc := NewProfileService(newMockTeacherRepo(), nil, nil, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
