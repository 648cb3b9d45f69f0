package chat

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers"
	processMessage "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/process_message"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidMessage     = "сообщение пустое или слишком длинное"
)

type Handler struct {
	useCase ProcessMessageUseCase
	logger  Logger
}

func NewHandler(useCase ProcessMessageUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/chat
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /chat - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest())
	if err != nil {
		switch {
		case errors.Is(err, processMessage.ErrInvalidInput):
			h.logger.Warn("POST /chat - Invalid message: session_id=%s, error=%v", req.SessionID, err)
			handlers.RespondBadRequest(w, msgInvalidMessage)

		default:
			h.logger.Error("POST /chat - Failed to process message: session_id=%s, error=%v", req.SessionID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /chat - Message processed: session_id=%s, intent=%s", req.SessionID, result.Intent)
	handlers.RespondJSON(w, http.StatusOK, result)
}
