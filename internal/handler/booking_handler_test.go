package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

type fakeBookingSrv struct {
	duration     int
	date         string
	studentID    string
	studentName  string
	patch        models.BookingDraftPatch
	err          error
	confirmation *dto.BookingConfirmation
}

func (f *fakeBookingSrv) Availability(_ context.Context, teacherID, date string, duration int) (*dto.TeacherAvailability, error) {
	f.date = date
	f.duration = duration
	return &dto.TeacherAvailability{TeacherID: teacherID}, f.err
}

func (f *fakeBookingSrv) CreateDraft(_ context.Context, teacherID, studentID, studentName string) (*dto.BookingDraftView, error) {
	f.studentID = studentID
	f.studentName = studentName
	return &dto.BookingDraftView{BookingDraft: models.BookingDraft{ID: "draft-1", TeacherID: teacherID, Step: 1}}, f.err
}

func (f *fakeBookingSrv) GetDraft(_ context.Context, draftID, studentID string) (*dto.BookingDraftView, error) {
	f.studentID = studentID
	return &dto.BookingDraftView{BookingDraft: models.BookingDraft{ID: draftID}}, f.err
}

func (f *fakeBookingSrv) UpdateDraft(_ context.Context, draftID, studentID string, patch models.BookingDraftPatch) (*dto.BookingDraftView, error) {
	f.patch = patch
	if f.err != nil {
		return nil, f.err
	}
	return &dto.BookingDraftView{BookingDraft: models.BookingDraft{ID: draftID}}, nil
}

func (f *fakeBookingSrv) Next(_ context.Context, draftID, _ string) (*dto.BookingDraftView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.BookingDraftView{BookingDraft: models.BookingDraft{ID: draftID, Step: 2}}, nil
}

func (f *fakeBookingSrv) Back(_ context.Context, draftID, _ string) (*dto.BookingDraftView, error) {
	return &dto.BookingDraftView{BookingDraft: models.BookingDraft{ID: draftID, Step: 1}}, f.err
}

func (f *fakeBookingSrv) DiscardDraft(context.Context, string, string) error {
	return f.err
}

func (f *fakeBookingSrv) Submit(context.Context, string, string) (*dto.BookingConfirmation, error) {
	return f.confirmation, f.err
}

func TestBookingAvailabilityParsesDuration(t *testing.T) {
	svc := &fakeBookingSrv{}
	handler := NewBookingHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/teachers/1/availability?date=2025-03-10&duration=90", nil, nil)
	c.AddParam("id", "1")
	handler.Availability(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, svc.duration)
	assert.Equal(t, "2025-03-10", svc.date)

	c, rec = newTestContext(http.MethodGet, "/teachers/1/availability?duration=long", nil, nil)
	handler.Availability(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingCreateDraftRequiresPrincipal(t *testing.T) {
	svc := &fakeBookingSrv{}
	handler := NewBookingHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/teachers/1/bookings/drafts", nil, nil)
	handler.CreateDraft(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodPost, "/teachers/1/bookings/drafts", nil, studentClaims)
	c.AddParam("id", "1")
	handler.CreateDraft(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "student-1", svc.studentID)
	assert.Equal(t, "João Silva", svc.studentName)
}

func TestBookingUpdateDraftBindsPatch(t *testing.T) {
	svc := &fakeBookingSrv{}
	handler := NewBookingHandler(svc)

	c, rec := newTestContext(http.MethodPatch, "/bookings/drafts/draft-1", map[string]interface{}{"date": "2025-03-10", "time": "14:00"}, studentClaims)
	c.AddParam("draftId", "draft-1")
	handler.UpdateDraft(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.patch.Date)
	assert.Equal(t, "2025-03-10", *svc.patch.Date)
	assert.Nil(t, svc.patch.Duration)
}

func TestBookingNextRejectedStep(t *testing.T) {
	handler := NewBookingHandler(&fakeBookingSrv{err: appErrors.Clone(appErrors.ErrInvalidStep, "select a date and time first")})

	c, rec := newTestContext(http.MethodPost, "/bookings/drafts/draft-1/next", nil, studentClaims)
	c.AddParam("draftId", "draft-1")
	handler.Next(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_STEP", decodeEnvelope(t, rec).Error.Code)
}

func TestBookingSubmitReplayReturnsOK(t *testing.T) {
	svc := &fakeBookingSrv{confirmation: &dto.BookingConfirmation{Class: models.ScheduledClass{ID: "class-1"}}}
	handler := NewBookingHandler(svc)

	c, rec := newTestContext(http.MethodPost, "/bookings/drafts/draft-1/submit", nil, studentClaims)
	handler.Submit(c)
	assert.Equal(t, http.StatusCreated, rec.Code)

	svc.confirmation.Replay = true
	c, rec = newTestContext(http.MethodPost, "/bookings/drafts/draft-1/submit", nil, studentClaims)
	handler.Submit(c)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBookingDiscardDraft(t *testing.T) {
	handler := NewBookingHandler(&fakeBookingSrv{})

	c, rec := newTestContext(http.MethodDelete, "/bookings/drafts/draft-1", nil, studentClaims)
	handler.DiscardDraft(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
