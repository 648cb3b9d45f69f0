package handle_decision

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// cancel отменяет самую раннюю активную запись пользователя
func (uc *UseCase) cancel(ctx context.Context, req *Request) (*Response, error) {
	d := req.Decision
	contact := d.ResolveContact(req.Caller)
	if contact == "" {
		return &Response{Text: "I need your email address to find your appointment.", Intent: d.Intent}, nil
	}

	var cancelled *domain.Appointment
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appt, err := uc.cancelEarliest(txCtx, contact)
		cancelled = appt
		return err
	})
	switch {
	case errors.Is(err, errNoActiveAppointment):
		uc.observe(d.Intent, OutcomeNotFound)
		return &Response{
			Text:   fmt.Sprintf("I couldn't find any active appointments for %s.", contact),
			Intent: d.Intent,
		}, nil
	case err != nil:
		uc.logger.Error("HandleDecision: cancel failed for %s: %v", contact, err)
		return nil, err
	}

	uc.logger.Info("HandleDecision: cancelled id=%s for %s", cancelled.ID, contact)
	uc.observe(d.Intent, OutcomeCancelled)

	return &Response{
		Text: fmt.Sprintf("Cancelled your %s on %s.", cancelled.Service,
			formatWhen(cancelled.Start, uc.rules.Location)),
		Intent: d.Intent,
		Data:   &CancellationData{Type: DataTypeCancellation, Appointment: toAppointmentData(cancelled)},
	}, nil
}

// cancelEarliest берет активные записи по возрастанию начала и отменяет первую
func (uc *UseCase) cancelEarliest(ctx context.Context, contact string) (*domain.Appointment, error) {
	active, err := uc.appointments.GetActiveByContact(ctx, contact)
	if err != nil {
		return nil, internalErr("get active appointments", err)
	}
	if len(active) == 0 {
		return nil, errNoActiveAppointment
	}

	earliest := *active[0]
	if err := uc.appointments.Cancel(ctx, earliest.ID); err != nil {
		return nil, internalErr("cancel appointment", err)
	}
	earliest.Status = domain.StatusCancelled
	return &earliest, nil
}
