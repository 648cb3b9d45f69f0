package process_message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
)

const tracerName = "appointment-agent"

// UseCase конвейер сообщения: контекст -> решение -> оркестратор
type UseCase struct {
	resolver     DecisionResolver
	handler      DecisionHandler
	preferences  PreferencesRepository
	appointments AppointmentRepository
	rules        domain.BusinessRules
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	resolver DecisionResolver,
	handler DecisionHandler,
	preferences PreferencesRepository,
	appointments AppointmentRepository,
	rules domain.BusinessRules,
	logger Logger,
) *UseCase {
	return &UseCase{
		resolver:     resolver,
		handler:      handler,
		preferences:  preferences,
		appointments: appointments,
		rules:        rules,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute обрабатывает сообщение пользователя
func (uc *UseCase) Execute(ctx context.Context, req *Request) (resp *handle_decision.Response, err error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ProcessMessage: validation failed: %v", err)
		return nil, err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "process_message.Execute",
		trace.WithAttributes(attribute.Int("chat.history_turns", len(req.History))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	caller := domain.Caller{SessionID: req.SessionID, Contact: req.Contact}
	uc.logger.Info("ProcessMessage: session=%s, history=%d", req.SessionID, len(req.History))

	summary := uc.buildSummary(ctx, caller)

	// Resolver обязан вернуть решение даже при сбое модели; ошибка здесь означает неверную сборку
	decision, err := uc.resolver.Resolve(ctx, req.Message, req.History, summary.String())
	if err != nil {
		uc.logger.Error("ProcessMessage: resolver failed: %v", err)
		return nil, fmt.Errorf("%w: resolve decision: %v", ErrInternal, err)
	}
	span.SetAttributes(
		attribute.String("decision.intent", string(decision.Intent)),
		attribute.Float64("decision.confidence", decision.Confidence),
	)

	resp, err = uc.handler.Execute(ctx, &handle_decision.Request{
		Decision: decision,
		Message:  req.Message,
		Caller:   caller,
	})
	if err != nil {
		if errors.Is(err, handle_decision.ErrInvalidInput) {
			// модель вернула решение, которое не проходит валидацию: отвечаем как на вопрос
			uc.logger.Warn("ProcessMessage: decision rejected by orchestrator: %v", err)
			text := decision.ResponseText
			if strings.TrimSpace(text) == "" {
				text = handle_decision.FallbackText
			}
			return &handle_decision.Response{Text: text, Intent: domain.IntentQuestion}, nil
		}
		return nil, err
	}

	return resp, nil
}

// buildSummary собирает контекст; сбои хранилища здесь не фатальны
func (uc *UseCase) buildSummary(ctx context.Context, caller domain.Caller) contextSummary {
	now := uc.timeProvider.Now()
	summary := contextSummary{Now: now, Rules: uc.rules}

	if key := caller.PreferencesKey(); key != "" {
		prefs, err := uc.preferences.Get(ctx, key)
		if err != nil {
			uc.logger.Warn("ProcessMessage: failed to load preferences for %s: %v", key, err)
		} else if prefs != nil {
			summary.Preferences = prefs.Notes
		}
	}

	today := uc.rules.Today(now)
	from, to := uc.rules.DayBounds(today)
	booked, err := uc.appointments.GetBookedOverlapping(ctx, from, to)
	if err != nil {
		uc.logger.Warn("ProcessMessage: failed to load today's appointments: %v", err)
		return summary
	}
	summary.Today = booked
	return summary
}
