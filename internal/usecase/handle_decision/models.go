package handle_decision

import (
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

const (
	DataTypeConfirmation = "confirmation"
	DataTypeCancellation = "cancellation"
	DataTypeSlots        = "slots"
	DataTypeHistory      = "history"
)

// Исходы для метрики booking_outcomes_total
const (
	OutcomeBooked      = "booked"
	OutcomeConflict    = "conflict"
	OutcomeCancelled   = "cancelled"
	OutcomeRescheduled = "rescheduled"
	OutcomeNotFound    = "not_found"
	OutcomeRejected    = "rejected"
)

// Request входные данные оркестратора
type Request struct {
	Decision domain.BookingDecision
	// Message исходный текст пользователя: выбор услуги и запрос истории
	Message string
	Caller  domain.Caller
}

// Response ответ оркестратора; Data равен nil на любом неуспешном пути
type Response struct {
	Text   string        `json:"text"`
	Intent domain.Intent `json:"intent"`
	Data   any           `json:"data"`
}

// AppointmentData запись в ответе
type AppointmentData struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Contact string    `json:"contact"`
	Service string    `json:"service"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Status  string    `json:"status"`
}

// ConfirmationMeta оценки нового слота
type ConfirmationMeta struct {
	QualityScore   int  `json:"quality_score"`
	IntegrityScore int  `json:"integrity_score"`
	EmailSent      bool `json:"email_sent"`
}

// ConfirmationData успешная запись или перенос
type ConfirmationData struct {
	Type        string           `json:"type"`
	Appointment AppointmentData  `json:"appointment"`
	Previous    *AppointmentData `json:"previous,omitempty"`
	Meta        ConfirmationMeta `json:"meta"`
}

// CancellationData отмененная запись
type CancellationData struct {
	Type        string          `json:"type"`
	Appointment AppointmentData `json:"appointment"`
}

// SlotData свободный слот
type SlotData struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SlotsData свободные слоты на день
type SlotsData struct {
	Type  string     `json:"type"`
	Date  string     `json:"date"`
	Slots []SlotData `json:"slots"`
}

// HistoryData все записи пользователя, новые первыми
type HistoryData struct {
	Type         string            `json:"type"`
	Contact      string            `json:"contact"`
	Appointments []AppointmentData `json:"appointments"`
}

func toAppointmentData(a *domain.Appointment) AppointmentData {
	return AppointmentData{
		ID:      a.ID,
		Name:    a.Name,
		Contact: a.Contact,
		Service: a.Service,
		Start:   a.Start,
		End:     a.End,
		Status:  string(a.Status),
	}
}

func toSlotsData(day time.Time, slots []domain.Slot) *SlotsData {
	out := &SlotsData{Type: DataTypeSlots, Date: day.Format(domain.DateFormat), Slots: make([]SlotData, 0, len(slots))}
	for _, s := range slots {
		out.Slots = append(out.Slots, SlotData{Start: s.Start, End: s.End})
	}
	return out
}
