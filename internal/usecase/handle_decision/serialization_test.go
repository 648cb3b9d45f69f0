package handle_decision

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-AppointmentAgent/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/simpletxmanager"
)

// contendedAppointments отдает ошибку сериализации на первых failures чтениях пересечений,
// как это делает репозиторий поверх lib/pq
type contendedAppointments struct {
	*memoryAppointments

	mu       sync.Mutex
	failures int
	reads    int
}

func (r *contendedAppointments) GetBookedOverlapping(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	r.mu.Lock()
	r.reads++
	fail := r.failures > 0
	if fail {
		r.failures--
	}
	r.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("%w: GetBookedOverlapping - execute query: %w",
			appointmentRepo.ErrExecQuery, &pq.Error{Code: "40001", Message: "could not serialize access"})
	}
	return r.memoryAppointments.GetBookedOverlapping(ctx, from, to)
}

func newSQLHarness(t *testing.T, repo *contendedAppointments) (*UseCase, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rules := domain.DefaultBusinessRules()
	uc := NewUseCase(repo, &memoryPreferences{}, &recordingNotifier{result: true},
		simpletxmanager.NewTransactionManager(db), lock.NewMemoryLocker(), rules, nil, logger.NewNop())
	uc.timeProvider = fixedClock{now: time.Date(2026, 10, 14, 8, 0, 0, 0, rules.Location)}
	return uc, mock
}

func TestBook_RetriesSerializationFailureInsideTx(t *testing.T) {
	repo := &contendedAppointments{memoryAppointments: newMemoryAppointments(), failures: 1}
	uc, mock := newSQLHarness(t, repo)

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := uc.Execute(context.Background(), &Request{Decision: bookDecision("2026-10-19", "10:00", email)})
	require.NoError(t, err)

	data, ok := resp.Data.(*ConfirmationData)
	require.True(t, ok)
	assert.Equal(t, email, data.Appointment.Contact)
	assert.Len(t, repo.active(email), 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBook_SerializationFailureKeepsCause(t *testing.T) {
	repo := &contendedAppointments{memoryAppointments: newMemoryAppointments(), failures: 100}
	uc, mock := newSQLHarness(t, repo)

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	resp, err := uc.Execute(context.Background(), &Request{Decision: bookDecision("2026-10-19", "10:00", email)})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, appointmentRepo.ErrExecQuery)

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
	assert.Equal(t, 3, repo.reads)
	assert.Empty(t, repo.byID)
	require.NoError(t, mock.ExpectationsWereMet())
}
