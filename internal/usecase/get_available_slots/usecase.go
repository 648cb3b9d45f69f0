package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/scheduling"
)

// UseCase use case для получения свободных слотов на день
type UseCase struct {
	appointments AppointmentRepository
	rules        domain.BusinessRules
	engine       scheduling.ConflictEngine
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	rules domain.BusinessRules,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		rules:        rules,
		engine:       scheduling.NewConflictEngine(rules.BufferMinutes),
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("GetAvailableSlots: date=%q, count=%d, service=%q", req.Date, req.Count, req.ServiceKey)

	// 2. Получаем текущее время и день запроса
	now := uc.timeProvider.Now()
	day, err := resolveDate(req.Date, now, uc.rules)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 3. Определяем длительность услуги
	var service *domain.Service
	if req.ServiceKey != "" {
		svc, ok := uc.rules.Services.Get(req.ServiceKey)
		if !ok {
			uc.logger.Warn("GetAvailableSlots: service %q not found", req.ServiceKey)
			return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, req.ServiceKey)
		}
		service = &svc
	}

	// 4. Нерабочий день - пустой список без обращения к хранилищу
	if !uc.rules.IsWorkDay(day) {
		uc.logger.Info("GetAvailableSlots: %s is not a work day", day.Format(domain.DateFormat))
		return &Response{Date: day, WorkDay: false, Slots: []domain.Slot{}, IntegrityScore: 100}, nil
	}

	// 5. Получаем занятые записи дня с учетом буфера
	from, to := uc.engine.Window(uc.rules.DayBounds(day))
	existing, err := uc.appointments.GetBookedOverlapping(ctx, from, to)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments: %v", err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}

	// 6. Подбираем слоты, прошедшее время не предлагаем
	count := resolveCount(req.Count)
	var slots []domain.Slot
	if service == nil || service.DurationMinutes == uc.rules.DefaultDurationMinutes {
		slots = scheduling.OpenSlotsAfter(day, now, count, existing, uc.rules)
	} else {
		slots = openSlotsForService(day, now, count, service.DurationMinutes, existing, uc.rules)
	}

	uc.logger.Info("GetAvailableSlots: found %d slots for %s", len(slots), day.Format(domain.DateFormat))

	return &Response{
		Date:           day,
		WorkDay:        true,
		Slots:          slots,
		IntegrityScore: scheduling.IntegrityScore(existing),
	}, nil
}
