package process_message

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/brain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
)

// DecisionResolver извлекает решение из сообщения (brain.FallbackResolver)
type DecisionResolver interface {
	Resolve(ctx context.Context, message string, history []brain.ChatMessage, contextSummary string) (domain.BookingDecision, error)
}

// DecisionHandler оркестратор бронирования
type DecisionHandler interface {
	Execute(ctx context.Context, req *handle_decision.Request) (*handle_decision.Response, error)
}

// PreferencesRepository интерфейс репозитория предпочтений
type PreferencesRepository interface {
	Get(ctx context.Context, contact string) (*domain.UserPreferences, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetBookedOverlapping(ctx context.Context, from, to time.Time) ([]*domain.Appointment, error)
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
