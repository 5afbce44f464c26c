package models

import "time"

// ClassStatus is the lifecycle state of a scheduled class.
type ClassStatus string

const (
	ClassUpcoming  ClassStatus = "upcoming"
	ClassCompleted ClassStatus = "completed"
	ClassCancelled ClassStatus = "cancelled"
)

// Date and time layouts used by bookings.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ScheduledClass is a booked lesson.
type ScheduledClass struct {
	ID            string        `db:"id" json:"id"`
	TeacherID     string        `db:"teacher_id" json:"teacher_id"`
	TeacherName   string        `db:"teacher_name" json:"teacher_name"`
	TeacherAvatar string        `db:"teacher_avatar" json:"teacher_avatar"`
	StudentID     string        `db:"student_id" json:"student_id"`
	StudentName   string        `db:"student_name" json:"student_name"`
	Subject       string        `db:"subject" json:"subject"`
	Date          string        `db:"class_date" json:"date"`
	Time          string        `db:"start_time" json:"time"`
	Duration      int           `db:"duration" json:"duration"`
	Status        ClassStatus   `db:"status" json:"status"`
	MeetingLink   *string       `db:"meeting_link" json:"meeting_link,omitempty"`
	Price         float64       `db:"price" json:"price"`
	Notes         string        `db:"notes" json:"notes,omitempty"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
	BookingKey    *string       `db:"booking_key" json:"-"`
	CancelledAt   *time.Time    `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// StartsAt resolves the class start in the given location.
func (c ScheduledClass) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout+" "+TimeLayout, c.Date+" "+c.Time, loc)
}

// EndsAt resolves the class end in the given location.
func (c ScheduledClass) EndsAt(loc *time.Location) (time.Time, error) {
	start, err := c.StartsAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(c.Duration) * time.Minute), nil
}

// Overlaps reports whether the class occupies part of [start, start+minutes).
func (c ScheduledClass) Overlaps(clock string, minutes int) bool {
	a, err := time.Parse(TimeLayout, c.Time)
	if err != nil {
		return false
	}
	b, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return false
	}
	aEnd := a.Add(time.Duration(c.Duration) * time.Minute)
	bEnd := b.Add(time.Duration(minutes) * time.Minute)
	return a.Before(bEnd) && b.Before(aEnd)
}

// RescheduleRequest moves an upcoming class.
type RescheduleRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" validate:"required,datetime=15:04"`
}
