package models

import (
	"time"

	"github.com/lib/pq"
)

// Weekday names used by teacher availability lists.
const (
	WeekdaySunday    = "Domingo"
	WeekdayMonday    = "Segunda"
	WeekdayTuesday   = "Terça"
	WeekdayWednesday = "Quarta"
	WeekdayThursday  = "Quinta"
	WeekdayFriday    = "Sexta"
	WeekdaySaturday  = "Sábado"
)

// WeekdayNames is indexed by time.Weekday.
var WeekdayNames = [7]string{
	WeekdaySunday,
	WeekdayMonday,
	WeekdayTuesday,
	WeekdayWednesday,
	WeekdayThursday,
	WeekdayFriday,
	WeekdaySaturday,
}

// WeekdayName returns the availability name for a weekday.
func WeekdayName(day time.Weekday) string {
	return WeekdayNames[day]
}

// IsWeekdayName reports whether name is a valid availability entry.
func IsWeekdayName(name string) bool {
	for _, candidate := range WeekdayNames {
		if candidate == name {
			return true
		}
	}
	return false
}

// Teacher represents a tutor listed in the catalog.
type Teacher struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Avatar       string         `db:"avatar" json:"avatar"`
	Subjects     pq.StringArray `db:"subjects" json:"subjects"`
	Rating       float64        `db:"rating" json:"rating"`
	ReviewCount  int            `db:"review_count" json:"review_count"`
	HourlyRate   float64        `db:"hourly_rate" json:"hourly_rate"`
	Experience   string         `db:"experience" json:"experience"`
	Bio          string         `db:"bio" json:"bio"`
	Languages    pq.StringArray `db:"languages" json:"languages"`
	Availability pq.StringArray `db:"availability" json:"availability"`
	Verified     bool           `db:"verified" json:"verified"`
}

// HasSubject reports whether the teacher teaches the named subject.
func (t Teacher) HasSubject(subject string) bool {
	for _, s := range t.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// AvailableOn reports whether the teacher accepts lessons on the weekday.
func (t Teacher) AvailableOn(day time.Weekday) bool {
	name := WeekdayName(day)
	for _, a := range t.Availability {
		if a == name {
			return true
		}
	}
	return false
}

// TeacherProfile is the dashboard view of a teacher record.
type TeacherProfile struct {
	Teacher
	Email          string         `db:"email" json:"email"`
	Education      string         `db:"education" json:"education"`
	Certifications pq.StringArray `db:"certifications" json:"certifications"`
	Phone          string         `db:"phone" json:"phone"`
	Location       string         `db:"location" json:"location"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Catalog sort keys.
const (
	SortByRating    = "rating"
	SortByPriceLow  = "price-low"
	SortByPriceHigh = "price-high"
	SortByReviews   = "reviews"
)

// TeacherQuery captures catalog browsing criteria.
type TeacherQuery struct {
	Search   string
	Category string
	Subjects []string
	SortBy   string
}
