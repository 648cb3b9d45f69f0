package scheduling

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// Candidates lazily enumerates slot candidates for day: fixed step of the default
// duration from dayStart while the slot fits before dayEnd, skipping anything that
// touches [lunchStart, lunchEnd). Non-work days yield nothing.
// The sequence keeps no state and can be ranged over again.
func Candidates(day time.Time, rules domain.BusinessRules) iter.Seq[domain.Slot] {
	return func(yield func(domain.Slot) bool) {
		if rules.DefaultDurationMinutes <= 0 || !rules.IsWorkDay(day) {
			return
		}

		local := day.In(rules.Location)
		step := time.Duration(rules.DefaultDurationMinutes) * time.Minute
		dayStart, dayEnd := rules.DayBounds(local)
		lunchStart, lunchEnd := rules.LunchStart.On(local), rules.LunchEnd.On(local)

		for start := dayStart; !start.Add(step).After(dayEnd); start = start.Add(step) {
			slot := domain.Slot{Start: start, End: start.Add(step)}
			if lunchStart.Before(lunchEnd) && slot.Overlaps(lunchStart, lunchEnd) {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

// OpenSlots returns up to count chronologically ordered slots on day that the
// conflict engine considers safe against existing.
func OpenSlots(day time.Time, count int, existing []*domain.Appointment, rules domain.BusinessRules) []domain.Slot {
	return OpenSlotsAfter(day, time.Time{}, count, existing, rules)
}

// OpenSlotsAfter is OpenSlots that also drops candidates starting before notBefore.
// A zero notBefore disables the filter.
func OpenSlotsAfter(
	day, notBefore time.Time,
	count int,
	existing []*domain.Appointment,
	rules domain.BusinessRules,
) []domain.Slot {
	slots := make([]domain.Slot, 0)
	if count <= 0 {
		return slots
	}

	engine := NewConflictEngine(rules.BufferMinutes)
	for slot := range Candidates(day, rules) {
		if !notBefore.IsZero() && slot.Start.Before(notBefore) {
			continue
		}
		if !engine.Evaluate(slot.Start, slot.DurationMinutes(), existing).IsSafe() {
			continue
		}
		slots = append(slots, slot)
		if len(slots) == count {
			break
		}
	}
	return slots
}

// ResolveDay parses YYYY-MM-DD in the rules' timezone. Empty or unparsable input
// falls back to today; the second return value reports whether the fallback was used.
func ResolveDay(raw string, now time.Time, rules domain.BusinessRules) (time.Time, bool) {
	if raw != "" {
		if day, err := rules.ParseDate(raw); err == nil {
			return day, false
		}
	}
	return rules.Today(now), true
}

// OpenSlotsForDay resolves raw with ResolveDay and returns open slots for that day
func OpenSlotsForDay(
	raw string,
	now time.Time,
	count int,
	existing []*domain.Appointment,
	rules domain.BusinessRules,
) (time.Time, []domain.Slot) {
	day, _ := ResolveDay(raw, now, rules)
	return day, OpenSlots(day, count, existing, rules)
}
