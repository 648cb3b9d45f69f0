package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/scheduling"
)

// openSlotsForService подбирает слоты под длительность конкретной услуги
// Кандидаты берутся из той же сетки, что и для длительности по умолчанию;
// слот должен закончиться до конца дня, не задевать обед и быть безопасным по буферу
func openSlotsForService(
	day, notBefore time.Time,
	count, durationMinutes int,
	existing []*domain.Appointment,
	rules domain.BusinessRules,
) []domain.Slot {
	engine := scheduling.NewConflictEngine(rules.BufferMinutes)
	_, dayEnd := rules.DayBounds(day)
	lunch := domain.Slot{Start: rules.LunchStart.On(day), End: rules.LunchEnd.On(day)}
	duration := time.Duration(durationMinutes) * time.Minute

	slots := make([]domain.Slot, 0, count)
	for candidate := range scheduling.Candidates(day, rules) {
		if candidate.Start.Before(notBefore) {
			continue
		}

		slot := domain.Slot{Start: candidate.Start, End: candidate.Start.Add(duration)}
		if slot.End.After(dayEnd) {
			break
		}
		// Обед нулевой длины не блокирует ничего
		if lunch.End.After(lunch.Start) && slot.Overlaps(lunch.Start, lunch.End) {
			continue
		}
		if !engine.Evaluate(slot.Start, durationMinutes, existing).IsSafe() {
			continue
		}

		slots = append(slots, slot)
		if len(slots) == count {
			break
		}
	}
	return slots
}
