package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// monday 2026-10-19 in the default timezone
func testDay(t *testing.T) (time.Time, domain.BusinessRules) {
	t.Helper()
	rules := domain.DefaultBusinessRules()
	day, err := rules.ParseDate("2026-10-19")
	require.NoError(t, err)
	return day, rules
}

func at(day time.Time, hour, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

func booked(id, service string, start time.Time, minutes int) *domain.Appointment {
	return &domain.Appointment{
		ID:      id,
		Service: service,
		Start:   start,
		End:     start.Add(time.Duration(minutes) * time.Minute),
		Status:  domain.StatusBooked,
	}
}

// Minutes converts an int to a time.Duration of minutes
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
