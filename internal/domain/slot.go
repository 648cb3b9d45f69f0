package domain

import "time"

// Slot is a candidate appointment interval produced by availability enumeration
type Slot struct {
	Start time.Time
	End   time.Time
}

// DurationMinutes returns the slot length in minutes
func (s Slot) DurationMinutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// Overlaps reports whether the slot intersects [start, end)
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}
