package brain

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

const (
	DefaultHistoryLimit = 10
	DefaultRetries      = 2
	DefaultMaxTokens    = 600
)

// LLMConfig настройки стратегии на языковой модели
type LLMConfig struct {
	// Models перебираются по кругу между попытками; пустой список означает модель клиента по умолчанию
	Models       []string
	Retries      int
	HistoryLimit int
	MaxTokens    int32
	Temperature  float32
}

// LLMResolver извлекает решение через языковую модель
type LLMResolver struct {
	client LLMClient
	cfg    LLMConfig
	logger Logger
}

// NewLLMResolver создает стратегию на языковой модели
func NewLLMResolver(client LLMClient, cfg LLMConfig, logger Logger) *LLMResolver {
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &LLMResolver{client: client, cfg: cfg, logger: logger}
}

// Resolve делает до Retries+1 попыток; после ошибки разбора модель получает обратную связь и пробует снова
func (r *LLMResolver) Resolve(ctx context.Context, message string, history []ChatMessage, contextSummary string) (domain.BookingDecision, error) {
	messages := make([]ChatMessage, 0, r.cfg.HistoryLimit+1)
	messages = append(messages, recentHistory(history, r.cfg.HistoryLimit)...)
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: message})

	system := buildSystemPrompt(contextSummary)

	var lastErr error
	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.BookingDecision{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		resp, err := r.client.Complete(ctx, LLMRequest{
			Model:       r.model(attempt),
			System:      system,
			Messages:    messages,
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		})
		if err != nil {
			lastErr = err
			r.logger.Warn("LLMResolver: attempt %d failed: %v", attempt+1, err)
			continue
		}

		decision, err := ParseDecision(resp.Text)
		if err == nil {
			return decision, nil
		}

		lastErr = err
		r.logger.Warn("LLMResolver: attempt %d returned invalid decision: %v", attempt+1, err)
		messages = append(messages,
			ChatMessage{Role: ChatRoleAssistant, Content: resp.Text},
			ChatMessage{Role: ChatRoleUser, Content: fmt.Sprintf("System: JSON Error: %v. Fix and return PURE JSON.", err)},
		)
	}

	return domain.BookingDecision{}, fmt.Errorf("%w: %w", ErrUnavailable, lastErr)
}

func (r *LLMResolver) model(attempt int) string {
	if len(r.cfg.Models) == 0 {
		return ""
	}
	return r.cfg.Models[attempt%len(r.cfg.Models)]
}

func recentHistory(history []ChatMessage, limit int) []ChatMessage {
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case ChatRoleUser, ChatRoleAssistant:
			out = append(out, m)
		}
	}
	return out
}

func buildSystemPrompt(contextSummary string) string {
	var b strings.Builder
	b.WriteString("You are a senior AI receptionist that books, moves and cancels appointments.\n\n")
	b.WriteString("CONTEXT:\n")
	b.WriteString(contextSummary)
	b.WriteString(`

RULES:
1. Never guess. If the date, time or email is unclear, list it in "missing_info" and ask for it.
2. You MUST extract "user_email" for booking, cancelling and rescheduling.
3. Dates are YYYY-MM-DD and times are HH:MM in the business timezone.
4. Use the "correction" intent when the user points out a mistake you made.
5. Put stable user preferences ("prefers mornings") into "detected_preferences".

Reply with ONE JSON object and nothing else:
{
  "intent": "book|reschedule|cancel|availability|question|greeting|correction",
  "confidence": 0.0,
  "target_date": "YYYY-MM-DD",
  "target_time": "HH:MM",
  "user_name": "string",
  "user_contact": "string",
  "user_email": "string",
  "missing_info": [],
  "detected_preferences": [],
  "reasoning": "string",
  "response_text": "string"
}`)
	return b.String()
}
