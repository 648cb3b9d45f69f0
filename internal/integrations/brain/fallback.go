package brain

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

const (
	FallbackReasonTimeout     = "timeout"
	FallbackReasonError       = "error"
	FallbackReasonUnavailable = "not_configured"
)

// FallbackResolver ограничивает основную стратегию по времени и при сбое переходит на запасную
type FallbackResolver struct {
	primary  Resolver
	fallback Resolver
	timeout  time.Duration
	observer FallbackObserver
	logger   Logger
}

// NewFallbackResolver создает обертку. primary может быть nil (провайдер не настроен)
func NewFallbackResolver(primary, fallback Resolver, timeout time.Duration, observer FallbackObserver, logger Logger) *FallbackResolver {
	return &FallbackResolver{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		observer: observer,
		logger:   logger,
	}
}

// Resolve never returns an error
func (r *FallbackResolver) Resolve(ctx context.Context, message string, history []ChatMessage, contextSummary string) (domain.BookingDecision, error) {
	if r.primary == nil {
		r.observe(FallbackReasonUnavailable)
		return r.resolveFallback(ctx, message, history, contextSummary), nil
	}

	primaryCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		primaryCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	decision, err := r.primary.Resolve(primaryCtx, message, history, contextSummary)
	if err == nil {
		return decision, nil
	}

	reason := FallbackReasonError
	if errors.Is(err, context.DeadlineExceeded) {
		reason = FallbackReasonTimeout
	}
	r.logger.Warn("FallbackResolver: primary resolver failed (%s), switching to offline rules: %v", reason, err)
	r.observe(reason)

	return r.resolveFallback(ctx, message, history, contextSummary), nil
}

func (r *FallbackResolver) resolveFallback(ctx context.Context, message string, history []ChatMessage, contextSummary string) domain.BookingDecision {
	if r.fallback == nil {
		return DefaultDecision()
	}
	// запасная стратегия локальная, отмена родительского контекста ей не мешает
	decision, err := r.fallback.Resolve(context.WithoutCancel(ctx), message, history, contextSummary)
	if err != nil {
		r.logger.Error("FallbackResolver: fallback resolver failed: %v", err)
		return DefaultDecision()
	}
	return decision
}

func (r *FallbackResolver) observe(reason string) {
	if r.observer != nil {
		r.observer.ObserveBrainFallback(reason)
	}
}
