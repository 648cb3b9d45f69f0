package brain

import (
	"context"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage одна реплика диалога
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Resolver превращает сообщение пользователя в структурированное решение
type Resolver interface {
	Resolve(ctx context.Context, message string, history []ChatMessage, contextSummary string) (domain.BookingDecision, error)
}

// LLMRequest запрос к языковой модели
type LLMRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
}

// LLMResponse ответ языковой модели
type LLMResponse struct {
	Text string
}

// LLMClient транспорт до конкретного провайдера (Gemini, OpenRouter)
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// FallbackObserver получает причину перехода на офлайн-стратегию (метрики)
type FallbackObserver interface {
	ObserveBrainFallback(reason string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
