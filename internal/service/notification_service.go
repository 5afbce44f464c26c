package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/pkg/jobs"
)

// NotificationService delivers queued notifications. There is no email
// gateway, so a delivery is a structured log entry.
type NotificationService struct {
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{metrics: metrics, logger: logger}
}

// Handle processes one notification job. It satisfies jobs.Handler.
func (s *NotificationService) Handle(ctx context.Context, job jobs.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch job.Type {
	case JobBookingConfirmation:
		class, ok := job.Payload.(models.ScheduledClass)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", job.Payload, job.Type)
		}
		s.logger.Info("booking confirmation sent",
			zap.String("class_id", class.ID),
			zap.String("student_id", class.StudentID),
			zap.String("teacher_id", class.TeacherID),
			zap.String("date", class.Date),
			zap.String("time", class.Time),
			zap.Int("attempt", job.Attempt),
		)
		return nil
	default:
		return fmt.Errorf("unknown notification type %q", job.Type)
	}
}

// Observe records the outcome of each job attempt. It satisfies jobs.Observer.
func (s *NotificationService) Observe(job jobs.Job, err error) {
	s.metrics.RecordJobRun(job.Type, err)
	if err != nil {
		s.logger.Warn("notification attempt failed", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(err))
	}
}
