package dto

import "github.com/noah-isme/discipulus-api/internal/models"

// DurationOption is a selectable lesson length and its price.
type DurationOption struct {
	Minutes int     `json:"minutes"`
	Price   float64 `json:"price"`
}

// TeacherAvailability lists bookable dates and slots for a teacher.
type TeacherAvailability struct {
	TeacherID  string                 `json:"teacher_id"`
	HourlyRate float64                `json:"hourly_rate"`
	Date       string                 `json:"date,omitempty"`
	Dates      []models.AvailableDate `json:"dates"`
	Times      []string               `json:"times"`
	Durations  []DurationOption       `json:"durations"`
}

// BookingDraftView decorates a draft with wizard affordances.
type BookingDraftView struct {
	models.BookingDraft
	CanAdvance bool `json:"can_advance"`
	CanSubmit  bool `json:"can_submit"`
}

// BookingConfirmation is returned after a successful submit.
type BookingConfirmation struct {
	Class   models.ScheduledClass `json:"class"`
	Message string                `json:"message"`
	Replay  bool                  `json:"replay"`
}
