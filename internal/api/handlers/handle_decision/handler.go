package handle_decision

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers"
	handleDecision "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/handle_decision"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDecision    = "некорректное решение: проверьте intent и confidence"
)

type Handler struct {
	useCase HandleDecisionUseCase
	logger  Logger
}

func NewHandler(useCase HandleDecisionUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/decisions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req DecisionRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /decisions - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, handleDecision.ErrInvalidInput):
			h.logger.Warn("POST /decisions - Invalid decision: intent=%s, error=%v", req.Decision.Intent, err)
			handlers.RespondBadRequest(w, msgInvalidDecision)

		default:
			h.logger.Error("POST /decisions - Failed to handle decision: intent=%s, error=%v", req.Decision.Intent, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /decisions - Decision handled: intent=%s, has_data=%t", result.Intent, result.Data != nil)
	handlers.RespondJSON(w, http.StatusOK, result)
}
