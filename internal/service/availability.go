package service

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/discipulus-api/internal/models"
)

const (
	slotStartMinutes = 8 * 60
	slotEndMinutes   = 20 * 60
	slotStepMinutes  = 30
)

var monthNames = [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// AvailableDates returns the days from tomorrow through today+days whose
// weekday is in the availability list, evaluated in now's location.
func AvailableDates(availability []string, now time.Time, days int) []models.AvailableDate {
	allowed := make(map[string]struct{}, len(availability))
	for _, a := range availability {
		allowed[a] = struct{}{}
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	out := make([]models.AvailableDate, 0, days)
	for i := 1; i <= days; i++ {
		day := today.AddDate(0, 0, i)
		name := models.WeekdayName(day.Weekday())
		if _, ok := allowed[name]; !ok {
			continue
		}
		out = append(out, models.AvailableDate{
			Date:    day.Format(models.DateLayout),
			Weekday: name,
			Display: fmt.Sprintf("%s, %d de %s", name, day.Day(), monthNames[day.Month()-1]),
		})
	}
	return out
}

// TimeSlots returns every half-hour start from 08:00 through 20:00.
func TimeSlots() []string {
	out := make([]string, 0, (slotEndMinutes-slotStartMinutes)/slotStepMinutes+1)
	for m := slotStartMinutes; m <= slotEndMinutes; m += slotStepMinutes {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// IsTimeSlot reports whether clock is one of the bookable slots.
func IsTimeSlot(clock string) bool {
	for _, s := range TimeSlots() {
		if s == clock {
			return true
		}
	}
	return false
}

// FreeSlots removes the slots whose lesson of the given length would overlap
// a booked class.
func FreeSlots(slots []string, booked []models.ScheduledClass, minutes int) []string {
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		taken := false
		for _, c := range booked {
			if c.Overlaps(slot, minutes) {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, slot)
		}
	}
	return out
}

// LessonPrice returns hourly rate * minutes / 60 rounded to cents.
func LessonPrice(hourlyRate float64, minutes int) float64 {
	return math.Round(hourlyRate*float64(minutes)/60*100) / 100
}

// IsAvailableDate reports whether date is within the booking window and on
// one of the teacher's weekdays.
func IsAvailableDate(availability []string, date string, now time.Time, days int) bool {
	for _, d := range AvailableDates(availability, now, days) {
		if d.Date == date {
			return true
		}
	}
	return false
}
