package dto

import (
	"time"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// ScheduleOverview partitions the principal's classes by status.
type ScheduleOverview struct {
	Upcoming  []models.ScheduledClass `json:"upcoming"`
	Completed []models.ScheduledClass `json:"completed"`
	Cancelled []models.ScheduledClass `json:"cancelled"`
}

// CancellationPolicy describes the informational cancellation fee rule.
type CancellationPolicy struct {
	ClassID         string    `json:"class_id"`
	FeeWindowHours  int       `json:"fee_window_hours"`
	StartsAt        time.Time `json:"starts_at"`
	WithinFeeWindow bool      `json:"within_fee_window"`
	Message         string    `json:"message"`
}
