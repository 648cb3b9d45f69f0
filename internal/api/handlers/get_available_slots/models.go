package get_available_slots

import (
	"strconv"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentAgent/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date           string          `json:"date"`
	WorkDay        bool            `json:"workDay"`
	IntegrityScore int             `json:"integrityScore"`
	Slots          []AvailableSlot `json:"slots"`
}

// AvailableSlot модель временного слота
type AvailableSlot struct {
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]AvailableSlot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = AvailableSlot{
			StartTime:       slot.Start.Format(domain.TimeFormat),
			EndTime:         slot.End.Format(domain.TimeFormat),
			DurationMinutes: slot.DurationMinutes(),
		}
	}

	return &AvailableSlotsResponse{
		Date:           resp.Date.Format(domain.DateFormat),
		WorkDay:        resp.WorkDay,
		IntegrityScore: resp.IntegrityScore,
		Slots:          slots,
	}
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(date, countStr, serviceKey string) (*getAvailableSlots.Request, error) {
	count := 0
	if countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, err
		}
		count = parsed
	}

	return &getAvailableSlots.Request{
		Date:       date,
		Count:      count,
		ServiceKey: serviceKey,
	}, nil
}
