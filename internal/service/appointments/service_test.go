package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentAgent/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentAgent/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/ptr"
)

type stubRepository struct {
	byID        map[string]*domain.Appointment
	err         error
	cancelCalls int
	listStatus  *domain.AppointmentStatus
}

func (r *stubRepository) GetByID(_ context.Context, id string) (*domain.Appointment, error) {
	if r.err != nil {
		return nil, r.err
	}
	a, ok := r.byID[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubRepository) List(_ context.Context, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	r.listStatus = status
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Appointment, 0, len(r.byID))
	for _, a := range r.byID {
		if status == nil || a.Status == *status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubRepository) Cancel(_ context.Context, id string) error {
	r.cancelCalls++
	if r.err != nil {
		return r.err
	}
	a, ok := r.byID[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Status = domain.StatusCancelled
	return nil
}

func newStubRepository() *stubRepository {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	return &stubRepository{byID: map[string]*domain.Appointment{
		"abc12345": {ID: "abc12345", Name: "Ann", Contact: "ann@example.com", Service: "Glow Consultation",
			Start: start, End: start.Add(30 * time.Minute), Status: domain.StatusBooked},
		"def67890": {ID: "def67890", Name: "Bob", Contact: "bob@example.com", Service: "Deep Hydration Facial",
			Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour), Status: domain.StatusCancelled},
	}}
}

func TestService_List(t *testing.T) {
	repo := newStubRepository()
	svc := NewService(repo, logger.NewNop())

	resp, err := svc.List(context.Background(), &models.ListAppointmentsRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)
	assert.Nil(t, repo.listStatus)

	resp, err = svc.List(context.Background(), &models.ListAppointmentsRequest{Status: ptr.Ptr("booked")})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "abc12345", resp.Appointments[0].ID)
	assert.Equal(t, "2026-10-19", resp.Appointments[0].Date)
	assert.Equal(t, "10:00", resp.Appointments[0].StartTime)
	assert.Equal(t, 30, resp.Appointments[0].DurationMinutes)

	_, err = svc.List(context.Background(), &models.ListAppointmentsRequest{Status: ptr.Ptr("pending")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Cancel(t *testing.T) {
	t.Run("booked appointment is cancelled", func(t *testing.T) {
		repo := newStubRepository()
		svc := NewService(repo, logger.NewNop())

		resp, err := svc.Cancel(context.Background(), "abc12345")
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.Equal(t, 1, repo.cancelCalls)
	})

	t.Run("already cancelled is a no-op", func(t *testing.T) {
		repo := newStubRepository()
		svc := NewService(repo, logger.NewNop())

		resp, err := svc.Cancel(context.Background(), "def67890")
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusCancelled), resp.Status)
		assert.Zero(t, repo.cancelCalls)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := NewService(newStubRepository(), logger.NewNop())

		_, err := svc.Cancel(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrAppointmentNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewService(newStubRepository(), logger.NewNop())

		_, err := svc.Cancel(context.Background(), " ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := newStubRepository()
		repo.err = errors.New("db down")
		svc := NewService(repo, logger.NewNop())

		_, err := svc.Cancel(context.Background(), "abc12345")
		assert.ErrorIs(t, err, ErrInternal)
	})
}

func TestService_GetByID(t *testing.T) {
	svc := NewService(newStubRepository(), logger.NewNop())

	resp, err := svc.GetByID(context.Background(), "abc12345")
	require.NoError(t, err)
	assert.Equal(t, "Ann", resp.Name)

	_, err = svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
