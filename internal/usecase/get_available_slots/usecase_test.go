package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
)

type stubAppointments struct {
	booked []*domain.Appointment
	err    error
	calls  int
}

func (s *stubAppointments) GetBookedOverlapping(_ context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.Appointment, 0)
	for _, a := range s.booked {
		if a.Start.Before(to) && a.End.After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// текущее время: среда 2026-10-14 08:00
func newTestUseCase(repo *stubAppointments) (*UseCase, domain.BusinessRules) {
	rules := domain.DefaultBusinessRules()
	uc := NewUseCase(repo, rules, logger.NewNop())
	uc.timeProvider = fixedClock{now: time.Date(2026, 10, 14, 8, 0, 0, 0, rules.Location)}
	return uc, rules
}

func startTimes(slots []domain.Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format(domain.TimeFormat))
	}
	return out
}

func TestExecute_DefaultDuration(t *testing.T) {
	repo := &stubAppointments{}
	uc, rules := newTestUseCase(repo)
	monday := time.Date(2026, 10, 19, 9, 0, 0, 0, rules.Location)
	repo.booked = []*domain.Appointment{
		{ID: "a1", Start: monday, End: monday.Add(30 * time.Minute), Status: domain.StatusBooked},
	}

	resp, err := uc.Execute(context.Background(), &Request{Date: "2026-10-19"})
	require.NoError(t, err)

	assert.True(t, resp.WorkDay)
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30", "13:00"}, startTimes(resp.Slots))
	assert.Equal(t, 100, resp.IntegrityScore)
	for _, s := range resp.Slots {
		assert.Equal(t, rules.DefaultDurationMinutes, s.DurationMinutes())
	}
}

func TestExecute_ServiceDuration(t *testing.T) {
	repo := &stubAppointments{}
	uc, rules := newTestUseCase(repo)
	monday := time.Date(2026, 10, 19, 9, 0, 0, 0, rules.Location)
	repo.booked = []*domain.Appointment{
		{ID: "a1", Start: monday, End: monday.Add(30 * time.Minute), Status: domain.StatusBooked},
	}

	resp, err := uc.Execute(context.Background(), &Request{Date: "2026-10-19", ServiceKey: "facial"})
	require.NoError(t, err)

	// 11:30 задевает обед, 60 минут
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "13:00", "13:30"}, startTimes(resp.Slots))
	for _, s := range resp.Slots {
		assert.Equal(t, 60, s.DurationMinutes())
	}
}

func TestExecute_TodayDropsNothingBeforeOpening(t *testing.T) {
	uc, _ := newTestUseCase(&stubAppointments{})

	resp, err := uc.Execute(context.Background(), &Request{Count: 2})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", resp.Date.Format(domain.DateFormat))
	assert.Equal(t, []string{"09:00", "09:30"}, startTimes(resp.Slots))
}

func TestExecute_CountIsCapped(t *testing.T) {
	uc, _ := newTestUseCase(&stubAppointments{})

	resp, err := uc.Execute(context.Background(), &Request{Date: "2026-10-19", Count: 1000})
	require.NoError(t, err)
	// 09:00-12:00 и 13:00-17:00 с шагом 30 минут
	assert.Len(t, resp.Slots, 14)
}

func TestExecute_NonWorkDay(t *testing.T) {
	repo := &stubAppointments{}
	uc, _ := newTestUseCase(repo)

	resp, err := uc.Execute(context.Background(), &Request{Date: "2026-10-17"})
	require.NoError(t, err)
	assert.False(t, resp.WorkDay)
	assert.Empty(t, resp.Slots)
	assert.Zero(t, repo.calls)
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		repoErr error
		wantErr error
	}{
		{name: "nil request", req: nil, wantErr: ErrInvalidInput},
		{name: "negative count", req: &Request{Count: -1}, wantErr: ErrInvalidInput},
		{name: "bad date", req: &Request{Date: "19.10.2026"}, wantErr: ErrInvalidDate},
		{name: "past date", req: &Request{Date: "2026-10-13"}, wantErr: ErrInvalidDate},
		{name: "unknown service", req: &Request{Date: "2026-10-19", ServiceKey: "massage"}, wantErr: ErrServiceNotFound},
		{name: "repository failure", req: &Request{Date: "2026-10-19"}, repoErr: errors.New("db down"), wantErr: ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, _ := newTestUseCase(&stubAppointments{err: tt.repoErr})
			_, err := uc.Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
