package handle_decision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// reschedule отменяет самую раннюю активную запись и, если задано новое время, бронирует его
// Отмена и новая запись выполняются в одной сериализуемой транзакции: при конфликте
// старая запись остается на месте. Без нового времени отмена фиксируется сразу
func (uc *UseCase) reschedule(ctx context.Context, req *Request) (*Response, error) {
	d := req.Decision
	contact := d.ResolveContact(req.Caller)
	if contact == "" {
		return &Response{
			Text:   "I need your email address to find your existing appointment for rescheduling.",
			Intent: d.Intent,
		}, nil
	}

	now := uc.timeProvider.Now()
	hasNewTime := domain.Value(d.TargetDate) != "" && domain.Value(d.TargetTime) != ""

	var newStart time.Time
	if hasNewTime {
		start, err := uc.proposedStart(d, now)
		if err != nil {
			uc.logger.Warn("HandleDecision: reschedule rejected: %v", err)
			uc.observe(d.Intent, OutcomeRejected)
			return clarifyDateTime(d.Intent), nil
		}
		newStart = start

		unlock, err := uc.lockDay(ctx, newStart)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var (
		old *domain.Appointment
		res bookingResult
	)
	err := uc.serializableWithIDRetry(ctx, func(txCtx context.Context) error {
		res = bookingResult{}
		appt, err := uc.cancelEarliest(txCtx, contact)
		if err != nil {
			return err
		}
		old = appt

		if !hasNewTime {
			return nil
		}

		name, duration := uc.inheritFrom(old, d, req.Message)
		if !uc.rules.WithinHours(newStart, newStart.Add(time.Duration(duration)*time.Minute)) {
			return errOutsideHours
		}
		res, err = uc.bookInTx(txCtx, bookingInput{
			Name:            name,
			Contact:         old.Contact,
			ServiceName:     old.Service,
			DurationMinutes: duration,
			Start:           newStart,
		})
		return err
	})

	switch {
	case errors.Is(err, errNoActiveAppointment):
		uc.observe(d.Intent, OutcomeNotFound)
		return &Response{Text: "No existing appointment found to reschedule.", Intent: d.Intent}, nil
	case errors.Is(err, errOutsideHours):
		uc.logger.Warn("HandleDecision: reschedule rejected, %s is outside business hours", newStart.Format(time.RFC3339))
		uc.observe(d.Intent, OutcomeRejected)
		resp := uc.outsideHours(d.Intent)
		resp.Text = fmt.Sprintf("I kept your appointment on %s. %s", formatWhen(old.Start, uc.rules.Location), resp.Text)
		return resp, nil
	case errors.Is(err, errSlotConflict):
		prefix := fmt.Sprintf("I kept your appointment on %s. ", formatWhen(old.Start, uc.rules.Location))
		return uc.conflictResponse(d.Intent, res, newStart, now, prefix), nil
	case err != nil:
		uc.logger.Error("HandleDecision: reschedule failed for %s: %v", contact, err)
		return nil, err
	}

	if !hasNewTime {
		uc.logger.Info("HandleDecision: reschedule cancelled id=%s, waiting for a new time", old.ID)
		uc.observe(d.Intent, OutcomeCancelled)
		return &Response{
			Text:   fmt.Sprintf("Cancelled %s. What new time would you like?", formatWhen(old.Start, uc.rules.Location)),
			Intent: d.Intent,
			Data:   &CancellationData{Type: DataTypeCancellation, Appointment: toAppointmentData(old)},
		}, nil
	}

	uc.logger.Info("HandleDecision: rescheduled id=%s -> id=%s", old.ID, res.appointment.ID)
	uc.observe(d.Intent, OutcomeRescheduled)

	text := fmt.Sprintf("Rescheduled from %s to %s.",
		formatWhen(old.Start, uc.rules.Location), formatWhen(res.appointment.Start, uc.rules.Location))
	return uc.confirm(ctx, req, res, old, text), nil
}

// inheritFrom имя и длительность новой записи: из решения, иначе из отмененной записи
func (uc *UseCase) inheritFrom(old *domain.Appointment, d domain.BookingDecision, message string) (string, int) {
	name := nameOr(domain.Value(d.UserName), old.Name)

	if service, ok := uc.rules.Services.ByName(old.Service); ok {
		return name, service.DurationMinutes
	}
	if minutes := old.DurationMinutes(); minutes > 0 {
		return name, minutes
	}
	return name, uc.rules.Services.ResolveBest(message).DurationMinutes
}
