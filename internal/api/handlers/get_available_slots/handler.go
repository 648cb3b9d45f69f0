package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentAgent/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/get_available_slots"
)

const (
	msgInvalidCount    = "некорректное количество слотов"
	msgInvalidDate     = "некорректная дата, ожидается YYYY-MM-DD не в прошлом"
	msgServiceNotFound = "услуга не найдена"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/availability
// Query params: date (optional, YYYY-MM-DD), count (optional), service (optional, ключ услуги)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dateStr := query.Get("date")

	useCaseReq, err := ToUseCaseRequest(dateStr, query.Get("count"), query.Get("service"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid count: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCount)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /availability - Invalid date: date=%s", dateStr)
			handlers.RespondBadRequest(w, msgInvalidDate)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidCount)

		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /availability - Service not found: service=%s", useCaseReq.ServiceKey)
			handlers.RespondNotFound(w, msgServiceNotFound)

		default:
			h.logger.Error("GET /availability - Failed to get slots: date=%s, error=%v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - Slots retrieved successfully: date=%s, slots_count=%d",
		result.Date.Format(domain.DateFormat), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
