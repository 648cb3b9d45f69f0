package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.Count < 0 {
		return fmt.Errorf("%w: count must not be negative", ErrInvalidInput)
	}
	return nil
}

// resolveCount применяет значение по умолчанию и верхнюю границу
func resolveCount(count int) int {
	if count == 0 {
		return domain.DefaultAvailabilitySlotsCount
	}
	return min(count, domain.MaxAvailabilityCount)
}

// resolveDate парсит дату; пустая строка означает сегодня, прошедшие дни запрещены
func resolveDate(raw string, now time.Time, rules domain.BusinessRules) (time.Time, error) {
	today := rules.Today(now)
	if raw == "" {
		return today, nil
	}

	day, err := rules.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: expected YYYY-MM-DD, got %q", ErrInvalidDate, raw)
	}
	if day.Before(today) {
		return time.Time{}, fmt.Errorf("%w: %s is in the past", ErrInvalidDate, raw)
	}
	return day, nil
}
