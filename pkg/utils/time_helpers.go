package utils

import "time"

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

// CombineDateTime merges separate date and time form fields into one timestamp.
// An empty time defaults to midnight, an empty date is an error.
func CombineDateTime(dateStr, timeStr string) (time.Time, error) {
	if timeStr == "" {
		return time.ParseInLocation(DateLayout, dateStr, time.Local)
	}
	return time.ParseInLocation(DateTimeLayout, dateStr+" "+timeStr, time.Local)
}

// IsUrgentAppointment reports whether an appointment falls on the same or the
// next calendar day relative to now.
func IsUrgentAppointment(appointment, now time.Time) bool {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	diff := day(appointment).Sub(day(now))
	return diff >= 0 && diff <= 24*time.Hour
}
