package handle_decision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/scheduling"
)

const (
	tracerName = "appointment-agent"

	// сколько раз пересоздавать запись при коллизии id
	maxIDAttempts = 3

	defaultGuestName = "Guest"
)

// FallbackText ответ, когда решение не содержит текста
const FallbackText = "How can I help you with your appointment?"

// UseCase оркестратор бронирования: один переход конечного автомата на запрос
type UseCase struct {
	appointments AppointmentRepository
	preferences  PreferencesRepository
	notifier     Notifier
	txManager    TransactionManager
	locker       DayLocker
	rules        domain.BusinessRules
	engine       scheduling.ConflictEngine
	metrics      Metrics
	timeProvider TimeProvider
	newID        func() string
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointments AppointmentRepository,
	preferences PreferencesRepository,
	notifier Notifier,
	txManager TransactionManager,
	locker DayLocker,
	rules domain.BusinessRules,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointments: appointments,
		preferences:  preferences,
		notifier:     notifier,
		txManager:    txManager,
		locker:       locker,
		rules:        rules,
		engine:       scheduling.NewConflictEngine(rules.BufferMinutes),
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		newID:        newAppointmentID,
		logger:       logger,
	}
}

// Execute обрабатывает одно решение
// Ошибку возвращает только для некорректного запроса (ErrInvalidInput) и сбоя хранилища (ErrInternal),
// все остальные исходы выражены текстом ответа
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *Response, err error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("HandleDecision: validation failed: %v", err)
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "handle_decision.Execute",
		trace.WithAttributes(
			attribute.String("decision.intent", string(req.Decision.Intent)),
			attribute.Float64("decision.confidence", req.Decision.Confidence),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	uc.logger.Info("HandleDecision: session=%s, intent=%s, confidence=%.2f",
		req.Caller.SessionID, req.Decision.Intent, req.Decision.Confidence)

	uc.rememberPreferences(ctx, req)

	switch req.Decision.Intent {
	case domain.IntentBook:
		return uc.book(ctx, req)
	case domain.IntentAvailability:
		return uc.availability(ctx, req)
	case domain.IntentCancel:
		return uc.cancel(ctx, req)
	case domain.IntentReschedule:
		return uc.reschedule(ctx, req)
	case domain.IntentQuestion:
		if isHistoryRequest(req.Message) {
			return uc.history(ctx, req)
		}
	}

	return passThrough(req.Decision), nil
}

// rememberPreferences дописывает обнаруженные предпочтения независимо от исхода перехода
// Запись идет под ключом caller.PreferencesKey, по которому их читает process_message;
// если решение раскрыло другой контакт, предпочтения дублируются и под ним.
// Сбой записи предпочтений не прерывает запрос
func (uc *UseCase) rememberPreferences(ctx context.Context, req *Request) {
	addition := domain.JoinPreferences(req.Decision.DetectedPreferences)
	if addition == "" {
		return
	}

	keys := preferenceKeys(req.Caller.PreferencesKey(), req.Decision.ResolveContact(req.Caller))
	if len(keys) == 0 {
		uc.logger.Warn("HandleDecision: preferences dropped, caller has no identity")
		return
	}

	for _, key := range keys {
		if err := uc.preferences.Append(ctx, key, addition); err != nil {
			uc.logger.Warn("HandleDecision: failed to append preferences for %s: %v", key, err)
		}
	}
}

func preferenceKeys(callerKey, contact string) []string {
	keys := make([]string, 0, 2)
	if callerKey != "" {
		keys = append(keys, callerKey)
	}
	if contact != "" && contact != callerKey {
		keys = append(keys, contact)
	}
	return keys
}

// proposedStart собирает начало записи из даты и времени решения
// Отсутствующее время заменяется базовым; нераспознанный ввод обрабатывается по политике DateFallback
func (uc *UseCase) proposedStart(d domain.BookingDecision, now time.Time) (time.Time, error) {
	date, clock := domain.Value(d.TargetDate), domain.Value(d.TargetTime)
	if clock == "" {
		clock = uc.rules.BaselineTime.String()
	}

	start, err := uc.rules.ParseDateTime(date, clock)
	if err == nil {
		return start, nil
	}

	if uc.rules.DateFallback == domain.DateFallbackNow {
		uc.logger.Warn("HandleDecision: unparsable date=%q time=%q, falling back to now", date, clock)
		return now.In(uc.rules.Location).Truncate(time.Minute), nil
	}
	return time.Time{}, fmt.Errorf("%w: date=%q time=%q", ErrUnparsableDateTime, date, clock)
}

// dayWindow интервал выборки записей: рабочий день и предлагаемый слот, расширенные на буфер
func (uc *UseCase) dayWindow(start, end time.Time) (time.Time, time.Time) {
	dayStart, dayEnd := uc.rules.DayBounds(start)
	if start.Before(dayStart) {
		dayStart = start
	}
	if end.After(dayEnd) {
		dayEnd = end
	}
	return uc.engine.Window(dayStart, dayEnd)
}

func (uc *UseCase) lockDay(ctx context.Context, day time.Time) (func(), error) {
	key := "day:" + day.In(uc.rules.Location).Format(domain.DateFormat)
	unlock, err := uc.locker.Lock(ctx, key)
	if err != nil {
		uc.logger.Error("HandleDecision: failed to lock %s: %v", key, err)
		return nil, fmt.Errorf("%w: failed to lock day: %v", ErrInternal, err)
	}
	return unlock, nil
}

func (uc *UseCase) observe(intent domain.Intent, outcome string) {
	if uc.metrics != nil {
		uc.metrics.ObserveBooking(string(intent), outcome)
	}
}

func passThrough(d domain.BookingDecision) *Response {
	text := d.ResponseText
	if strings.TrimSpace(text) == "" {
		text = FallbackText
	}
	return &Response{Text: text, Intent: d.Intent}
}

func internalErr(op string, err error) error {
	if errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

func newAppointmentID() string {
	return uuid.NewString()[:domain.AppointmentIDLength]
}

func formatWhen(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("Mon, Jan 02 at 15:04")
}

func nameOr(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
