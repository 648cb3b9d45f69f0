package handle_decision

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Insert(ctx context.Context, appt *domain.Appointment) error
	GetBookedOverlapping(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error)
	GetActiveByContact(ctx context.Context, contact string) ([]*domain.Appointment, error)
	GetAllByContact(ctx context.Context, contact string) ([]*domain.Appointment, error)
	Cancel(ctx context.Context, id string) error
}

// PreferencesRepository интерфейс репозитория предпочтений
type PreferencesRepository interface {
	Append(ctx context.Context, contact, addition string) error
}

// Notifier отправка подтверждения; неудача не откатывает запись
type Notifier interface {
	Notify(ctx context.Context, toAddress, name, date, clock string, details map[string]string) bool
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// DayLocker критическая секция read-evaluate-write на календарный день
type DayLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Metrics счетчик исходов бронирования
type Metrics interface {
	ObserveBooking(intent, outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
