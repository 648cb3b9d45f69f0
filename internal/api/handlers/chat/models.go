package chat

import (
	"github.com/m04kA/SMC-AppointmentAgent/internal/integrations/brain"
	processMessage "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/process_message"
)

// ChatRequest HTTP request model
type ChatRequest struct {
	SessionID string              `json:"session_id"`
	Contact   string              `json:"contact,omitempty"`
	Message   string              `json:"message"`
	History   []brain.ChatMessage `json:"history"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *ChatRequest) ToUseCaseRequest() *processMessage.Request {
	return &processMessage.Request{
		SessionID: r.SessionID,
		Contact:   r.Contact,
		Message:   r.Message,
		History:   r.History,
	}
}
