package brain

import "errors"

var (
	// ErrInvalidDecision возвращается, когда ответ модели не удалось разобрать в решение
	ErrInvalidDecision = errors.New("brain: invalid decision payload")

	// ErrUnavailable возвращается, когда модель не ответила корректно ни с одной попытки
	ErrUnavailable = errors.New("brain: upstream unavailable")
)
