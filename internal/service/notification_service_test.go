package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/pkg/jobs"
)

func TestNotificationServiceLogsBookingConfirmation(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	svc := NewNotificationService(NewMetricsService(), zap.New(core))

	class := models.ScheduledClass{ID: "class-1", StudentID: "student-1", TeacherID: "1", Date: "2025-03-10", Time: "14:00"}
	err := svc.Handle(context.Background(), jobs.Job{ID: "class-1", Type: JobBookingConfirmation, Payload: class})
	require.NoError(t, err)

	entries := logs.FilterMessage("booking confirmation sent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "class-1", entries[0].ContextMap()["class_id"])
}

func TestNotificationServiceRejectsUnknownJobs(t *testing.T) {
	svc := NewNotificationService(nil, nil)

	err := svc.Handle(context.Background(), jobs.Job{Type: "sms"})
	assert.Error(t, err)

	err = svc.Handle(context.Background(), jobs.Job{Type: JobBookingConfirmation, Payload: "not a class"})
	assert.Error(t, err)

	svc.Observe(jobs.Job{Type: "sms"}, err)
}
