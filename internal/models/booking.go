package models

import "time"

// BookingStep is the wizard position.
type BookingStep int

const (
	StepSchedule BookingStep = 1
	StepDetails  BookingStep = 2
	StepPayment  BookingStep = 3
)

// PaymentMethod is recorded on the class; nothing is charged.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentPix    PaymentMethod = "pix"
)

// Valid reports whether the payment method is supported.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCredit || p == PaymentPix
}

// DefaultLessonDuration is the preselected duration in minutes.
const DefaultLessonDuration = 60

// LessonDurations are the selectable lesson lengths in minutes.
var LessonDurations = []int{30, 60, 90, 120}

// IsLessonDuration reports whether minutes is a selectable duration.
func IsLessonDuration(minutes int) bool {
	for _, d := range LessonDurations {
		if d == minutes {
			return true
		}
	}
	return false
}

// BookingDraft is the server-held state of a booking wizard.
type BookingDraft struct {
	ID            string        `json:"id"`
	TeacherID     string        `json:"teacher_id"`
	StudentID     string        `json:"student_id"`
	StudentName   string        `json:"student_name,omitempty"`
	Step          BookingStep   `json:"step"`
	Date          string        `json:"date,omitempty"`
	Time          string        `json:"time,omitempty"`
	Duration      int           `json:"duration"`
	Subject       string        `json:"subject,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	HourlyRate    float64       `json:"hourly_rate"`
	Price         float64       `json:"price"`
	CreatedAt     time.Time     `json:"created_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
}

// Expired reports whether the draft outlived its TTL.
func (d BookingDraft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// BookingDraftPatch carries optional wizard field edits.
type BookingDraftPatch struct {
	Date          *string        `json:"date,omitempty"`
	Time          *string        `json:"time,omitempty"`
	Duration      *int           `json:"duration,omitempty"`
	Subject       *string        `json:"subject,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
}

// AvailableDate is a bookable calendar day.
type AvailableDate struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Display string `json:"display"`
}
