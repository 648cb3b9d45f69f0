package process_message

import (
	"fmt"
	"strings"
)

// validateRequest проверяет входные данные
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Message) == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(req.Message) > MaxMessageLength {
		return fmt.Errorf("%w: message must be at most %d bytes", ErrInvalidInput, MaxMessageLength)
	}
	if len(req.History) > MaxHistoryTurns {
		return fmt.Errorf("%w: history must be at most %d turns", ErrInvalidInput, MaxHistoryTurns)
	}
	return nil
}
