package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository/memory"
	"github.com/noah-isme/discipulus-api/internal/seed"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
	"github.com/noah-isme/discipulus-api/pkg/jobs"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []jobs.Job
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func newSeededStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := memory.NewSeededStore(time.Now(), time.UTC)
	require.NoError(t, err)
	return store
}

func newBookingFixture(t *testing.T) (*BookingService, *recordingQueue, *memory.Store) {
	store := newSeededStore(t)
	queue := &recordingQueue{}
	svc := NewBookingService(
		memory.NewTeacherRepository(store),
		memory.NewClassRepository(store),
		memory.NewDraftRepository(store),
		queue,
		nil,
		BookingOptions{WindowDays: 14, DraftTTL: time.Hour, MeetingBaseURL: "https://meet.example.com/", Location: time.UTC},
		nil,
	)
	return svc, queue, store
}

func nextWeekday(day time.Weekday) string {
	now := time.Now().UTC()
	days := (int(day) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days).Format(models.DateLayout)
}

func walkToPayment(t *testing.T, svc *BookingService, draftID, date, clock string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.UpdateDraft(ctx, draftID, seed.DemoStudentID, models.BookingDraftPatch{Date: &date, Time: &clock})
	require.NoError(t, err)
	_, err = svc.Next(ctx, draftID, seed.DemoStudentID)
	require.NoError(t, err)
	duration := 90
	_, err = svc.UpdateDraft(ctx, draftID, seed.DemoStudentID, models.BookingDraftPatch{Duration: &duration})
	require.NoError(t, err)
	view, err := svc.Next(ctx, draftID, seed.DemoStudentID)
	require.NoError(t, err)
	require.True(t, view.CanSubmit)
}

func TestBookingAvailabilityHidesBookedSlots(t *testing.T) {
	svc, _, _ := newBookingFixture(t)

	all, err := svc.Availability(context.Background(), "1", "", 0)
	require.NoError(t, err)
	assert.Len(t, all.Times, 25)
	require.Len(t, all.Durations, 4)
	assert.Equal(t, 67.5, all.Durations[2].Price)
	for _, d := range all.Dates {
		assert.Contains(t, []string{"Segunda", "Terça", "Quarta", "Sexta"}, d.Weekday)
	}

	monday := nextWeekday(time.Monday)
	day, err := svc.Availability(context.Background(), "1", monday, 60)
	require.NoError(t, err)
	assert.Len(t, day.Times, 22)
	assert.NotContains(t, day.Times, "13:30")
	assert.NotContains(t, day.Times, "14:00")
	assert.NotContains(t, day.Times, "14:30")
	assert.Contains(t, day.Times, "13:00")

	_, err = svc.Availability(context.Background(), "1", nextWeekday(time.Thursday), 60)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Availability(context.Background(), "404", "", 0)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestBookingDraftLifecycle(t *testing.T) {
	svc, queue, store := newBookingFixture(t)
	ctx := context.Background()

	view, err := svc.CreateDraft(ctx, "1", seed.DemoStudentID, "João Silva")
	require.NoError(t, err)
	assert.Equal(t, models.StepSchedule, view.Step)
	assert.Equal(t, 60, view.Duration)
	assert.Equal(t, 45.0, view.Price)
	assert.Equal(t, "Matemática", view.Subject)
	assert.False(t, view.CanAdvance)

	_, err = svc.Next(ctx, view.ID, seed.DemoStudentID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStep)

	_, err = svc.GetDraft(ctx, view.ID, "someone-else")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	walkToPayment(t, svc, view.ID, nextWeekday(time.Friday), "10:00")

	confirmation, err := svc.Submit(ctx, view.ID, seed.DemoStudentID)
	require.NoError(t, err)
	assert.False(t, confirmation.Replay)
	assert.Equal(t, models.ClassUpcoming, confirmation.Class.Status)
	assert.Equal(t, 67.5, confirmation.Class.Price)
	require.NotNil(t, confirmation.Class.MeetingLink)
	assert.Equal(t, "https://meet.example.com/"+confirmation.Class.ID, *confirmation.Class.MeetingLink)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobBookingConfirmation, queue.jobs[0].Type)

	_, err = svc.GetDraft(ctx, view.ID, seed.DemoStudentID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	again, err := svc.Submit(ctx, view.ID, seed.DemoStudentID)
	require.NoError(t, err)
	assert.True(t, again.Replay)
	assert.Equal(t, confirmation.Class.ID, again.Class.ID)
	assert.Len(t, queue.jobs, 1)

	classes, err := memory.NewClassRepository(store).ListByStudent(ctx, seed.DemoStudentID)
	require.NoError(t, err)
	assert.Len(t, classes, 3)
}

func TestBookingSubmitRequiresPaymentStep(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	ctx := context.Background()

	view, err := svc.CreateDraft(ctx, "1", seed.DemoStudentID, "João Silva")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, view.ID, seed.DemoStudentID)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStep)
}

func TestBookingSubmitConflictWhenSlotTaken(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	ctx := context.Background()

	view, err := svc.CreateDraft(ctx, "1", seed.DemoStudentID, "João Silva")
	require.NoError(t, err)
	walkToPayment(t, svc, view.ID, nextWeekday(time.Monday), "13:30")

	_, err = svc.Submit(ctx, view.ID, seed.DemoStudentID)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestBookingRejectsUnavailableSelection(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	ctx := context.Background()

	view, err := svc.CreateDraft(ctx, "1", seed.DemoStudentID, "João Silva")
	require.NoError(t, err)

	thursday := nextWeekday(time.Thursday)
	_, err = svc.UpdateDraft(ctx, view.ID, seed.DemoStudentID, models.BookingDraftPatch{Date: &thursday})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	late := "21:00"
	_, err = svc.UpdateDraft(ctx, view.ID, seed.DemoStudentID, models.BookingDraftPatch{Time: &late})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	require.NoError(t, svc.DiscardDraft(ctx, view.ID, seed.DemoStudentID))
	_, err = svc.GetDraft(ctx, view.ID, seed.DemoStudentID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
