package handle_decision

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-AppointmentAgent/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/ptr"
)

// memoryAppointments хранилище записей в памяти; возвращает копии
type memoryAppointments struct {
	mu   sync.Mutex
	byID map[string]domain.Appointment
	err  error
}

func newMemoryAppointments() *memoryAppointments {
	return &memoryAppointments{byID: make(map[string]domain.Appointment)}
}

func (r *memoryAppointments) Insert(_ context.Context, appt *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[appt.ID]; ok {
		return appointmentRepo.ErrDuplicateID
	}
	r.byID[appt.ID] = *appt
	return nil
}

func (r *memoryAppointments) GetBookedOverlapping(_ context.Context, from, to time.Time) ([]*domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool {
		return a.Status == domain.StatusBooked && a.Start.Before(to) && a.End.After(from)
	}, true)
}

func (r *memoryAppointments) GetActiveByContact(_ context.Context, contact string) ([]*domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool {
		return a.Status == domain.StatusBooked && a.Contact == contact
	}, true)
}

func (r *memoryAppointments) GetAllByContact(_ context.Context, contact string) ([]*domain.Appointment, error) {
	return r.filter(func(a domain.Appointment) bool { return a.Contact == contact }, false)
}

func (r *memoryAppointments) Cancel(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	a, ok := r.byID[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Status = domain.StatusCancelled
	r.byID[id] = a
	return nil
}

func (r *memoryAppointments) filter(keep func(domain.Appointment) bool, asc bool) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Appointment, 0)
	for _, a := range r.byID {
		if keep(a) {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if asc {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Start.After(out[j].Start)
	})
	return out, nil
}

func (r *memoryAppointments) snapshot() map[string]domain.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[string]domain.Appointment, len(r.byID))
	for k, v := range r.byID {
		cp[k] = v
	}
	return cp
}

func (r *memoryAppointments) restore(s map[string]domain.Appointment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = s
}

func (r *memoryAppointments) active(contact string) []*domain.Appointment {
	out, _ := r.GetActiveByContact(context.Background(), contact)
	return out
}

// snapshotTx откатывает изменения хранилища, если fn вернула ошибку
type snapshotTx struct {
	repo  *memoryAppointments
	calls int
}

func (m *snapshotTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.DoSerializable(ctx, fn)
}

func (m *snapshotTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	saved := m.repo.snapshot()
	if err := fn(ctx); err != nil {
		m.repo.restore(saved)
		return err
	}
	return nil
}

type memoryPreferences struct {
	mu    sync.Mutex
	notes map[string]string
	err   error
}

func (p *memoryPreferences) Append(_ context.Context, contact, addition string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	if p.notes == nil {
		p.notes = make(map[string]string)
	}
	p.notes[contact] = domain.UserPreferences{Contact: contact, Notes: p.notes[contact]}.Append(addition)
	return nil
}

type notifyCall struct {
	To, Name, Date, Clock string
	Details               map[string]string
}

type recordingNotifier struct {
	mu     sync.Mutex
	calls  []notifyCall
	result bool
}

func (n *recordingNotifier) Notify(_ context.Context, to, name, date, clock string, details map[string]string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{To: to, Name: name, Date: date, Clock: clock, Details: details})
	return n.result
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveBooking(intent, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, intent+":"+outcome)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type harness struct {
	uc       *UseCase
	repo     *memoryAppointments
	tx       *snapshotTx
	prefs    *memoryPreferences
	notifier *recordingNotifier
	metrics  *recordingMetrics
	rules    domain.BusinessRules
}

// Wednesday 2026-10-14 08:00 local; bookings target Monday 2026-10-19
func newHarness(t *testing.T, mutate ...func(*domain.BusinessRules)) *harness {
	t.Helper()

	rules := domain.DefaultBusinessRules()
	for _, m := range mutate {
		m(&rules)
	}

	h := &harness{
		repo:     newMemoryAppointments(),
		prefs:    &memoryPreferences{},
		notifier: &recordingNotifier{result: true},
		metrics:  &recordingMetrics{},
		rules:    rules,
	}
	h.tx = &snapshotTx{repo: h.repo}
	h.uc = NewUseCase(h.repo, h.prefs, h.notifier, h.tx, lock.NewMemoryLocker(), rules, h.metrics, logger.NewNop())
	h.uc.timeProvider = fixedClock{now: time.Date(2026, 10, 14, 8, 0, 0, 0, rules.Location)}
	return h
}

func (h *harness) at(day, hour, minute int) time.Time {
	return time.Date(2026, 10, day, hour, minute, 0, 0, h.rules.Location)
}

func (h *harness) seed(id, contact, service string, start time.Time, minutes int) {
	h.repo.byID[id] = domain.Appointment{
		ID:      id,
		Name:    "Seeded",
		Contact: contact,
		Service: service,
		Start:   start,
		End:     start.Add(time.Duration(minutes) * time.Minute),
		Status:  domain.StatusBooked,
	}
}

func bookDecision(date, clock, email string) domain.BookingDecision {
	d := domain.BookingDecision{
		Intent:       domain.IntentBook,
		Confidence:   0.95,
		UserName:     ptr.Ptr("Ana"),
		ResponseText: "Booking you in.",
	}
	if date != "" {
		d.TargetDate = ptr.Ptr(date)
	}
	if clock != "" {
		d.TargetTime = ptr.Ptr(clock)
	}
	if email != "" {
		d.UserEmail = ptr.Ptr(email)
	}
	return d
}

var errStorageDown = errors.New("connection refused")
