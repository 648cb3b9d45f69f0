package handle_decision

import (
	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	handleDecision "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
)

// DecisionRequest HTTP request model: решение уже извлечено вызывающей стороной
type DecisionRequest struct {
	SessionID string                 `json:"session_id"`
	Contact   string                 `json:"contact,omitempty"`
	Message   string                 `json:"message"`
	Decision  domain.BookingDecision `json:"decision"`
}

// ToUseCaseRequest конвертирует HTTP request в модель use case
func (r *DecisionRequest) ToUseCaseRequest() *handleDecision.Request {
	return &handleDecision.Request{
		Decision: r.Decision,
		Message:  r.Message,
		Caller:   domain.Caller{SessionID: r.SessionID, Contact: r.Contact},
	}
}
