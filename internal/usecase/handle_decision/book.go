package handle_decision

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentAgent/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentAgent/internal/scheduling"
)

const emailSentNote = " Confirmation email sent."

// bookingInput данные новой записи
type bookingInput struct {
	Name            string
	Contact         string
	ServiceName     string
	DurationMinutes int
	Start           time.Time
}

// bookingResult итог проверки и вставки
type bookingResult struct {
	appointment *domain.Appointment
	verdict     scheduling.ConflictVerdict
	// dayBooked занятые записи дня до вставки
	dayBooked []*domain.Appointment
}

// book создает запись, если решение достаточно уверенное и полное
func (uc *UseCase) book(ctx context.Context, req *Request) (*Response, error) {
	d := req.Decision
	if !canAutoBook(d) {
		uc.logger.Info("HandleDecision: book pass-through, confidence=%.2f, missing=%v", d.Confidence, d.MissingInfo)
		return passThrough(d), nil
	}

	now := uc.timeProvider.Now()
	start, err := uc.proposedStart(d, now)
	if err != nil {
		uc.logger.Warn("HandleDecision: book rejected: %v", err)
		uc.observe(d.Intent, OutcomeRejected)
		return clarifyDateTime(d.Intent), nil
	}

	contact := d.ResolveContact(req.Caller)
	if contact == "" {
		uc.observe(d.Intent, OutcomeRejected)
		return &Response{Text: "To confirm the booking, may I have your email address?", Intent: d.Intent}, nil
	}

	service := uc.rules.Services.ResolveBest(req.Message)
	in := bookingInput{
		Name:            nameOr(domain.Value(d.UserName), defaultGuestName),
		Contact:         contact,
		ServiceName:     service.Name,
		DurationMinutes: service.DurationMinutes,
		Start:           start,
	}

	if !uc.rules.WithinHours(start, start.Add(time.Duration(in.DurationMinutes)*time.Minute)) {
		uc.logger.Warn("HandleDecision: book rejected, %s is outside business hours", start.Format(time.RFC3339))
		uc.observe(d.Intent, OutcomeRejected)
		return uc.outsideHours(d.Intent), nil
	}

	unlock, err := uc.lockDay(ctx, start)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res bookingResult
	err = uc.serializableWithIDRetry(ctx, func(txCtx context.Context) error {
		var err error
		res, err = uc.bookInTx(txCtx, in)
		return err
	})
	switch {
	case errors.Is(err, errSlotConflict):
		return uc.conflictResponse(d.Intent, res, start, now, "I paused this booking. "), nil
	case err != nil:
		uc.logger.Error("HandleDecision: book failed: %v", err)
		return nil, err
	}

	uc.logger.Info("HandleDecision: booked id=%s service=%q start=%s", res.appointment.ID, res.appointment.Service,
		res.appointment.Start.Format(time.RFC3339))
	uc.observe(d.Intent, OutcomeBooked)

	text := d.ResponseText
	if strings.TrimSpace(text) == "" {
		text = fmt.Sprintf("You're booked for %s on %s.", res.appointment.Service,
			formatWhen(res.appointment.Start, uc.rules.Location))
	}
	return uc.confirm(ctx, req, res, nil, text), nil
}

// bookInTx проверяет конфликты и вставляет запись
// Вызывается внутри транзакции под блокировкой дня. При конфликте возвращает errSlotConflict,
// чтобы транзакция откатилась
func (uc *UseCase) bookInTx(ctx context.Context, in bookingInput) (bookingResult, error) {
	end := in.Start.Add(time.Duration(in.DurationMinutes) * time.Minute)
	from, to := uc.dayWindow(in.Start, end)

	existing, err := uc.appointments.GetBookedOverlapping(ctx, from, to)
	if err != nil {
		return bookingResult{}, internalErr("get booked appointments", err)
	}

	res := bookingResult{dayBooked: existing}
	res.verdict = uc.engine.Evaluate(in.Start, in.DurationMinutes, existing)
	if !res.verdict.IsSafe() {
		return res, errSlotConflict
	}

	appt := &domain.Appointment{
		ID:      uc.newID(),
		Name:    in.Name,
		Contact: in.Contact,
		Service: in.ServiceName,
		Start:   in.Start,
		End:     end,
		Status:  domain.StatusBooked,
	}
	if err := appt.Validate(); err != nil {
		return res, internalErr("validate appointment", err)
	}

	if err := uc.appointments.Insert(ctx, appt); err != nil {
		if errors.Is(err, appointmentRepo.ErrDuplicateID) {
			return res, err
		}
		return res, internalErr("insert appointment", err)
	}

	res.appointment = appt
	return res, nil
}

// serializableWithIDRetry повторяет транзакцию целиком, если сгенерированный id уже занят
func (uc *UseCase) serializableWithIDRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		err = uc.txManager.DoSerializable(ctx, fn)
		if !errors.Is(err, appointmentRepo.ErrDuplicateID) {
			return err
		}
		uc.logger.Warn("HandleDecision: appointment id collision, attempt %d", attempt+1)
	}
	return internalErr("insert appointment", err)
}

// confirm считает оценки нового слота и отправляет подтверждение (best-effort)
func (uc *UseCase) confirm(ctx context.Context, req *Request, res bookingResult, previous *domain.Appointment, text string) *Response {
	appt := res.appointment
	quality := scheduling.BookingQuality(appt.Start.In(uc.rules.Location))
	integrity := scheduling.IntegrityScore(append(slices.Clone(res.dayBooked), appt))

	sent := false
	if email := req.Decision.ResolveEmail(req.Caller); email != "" {
		local := appt.Start.In(uc.rules.Location)
		sent = uc.notifier.Notify(ctx, email, appt.Name, local.Format(domain.DateFormat), local.Format(domain.TimeFormat),
			map[string]string{
				"service":         appt.Service,
				"quality_score":   strconv.Itoa(quality),
				"integrity_score": strconv.Itoa(integrity),
			})
	}
	if sent {
		text += emailSentNote
	}

	data := &ConfirmationData{
		Type:        DataTypeConfirmation,
		Appointment: toAppointmentData(appt),
		Meta: ConfirmationMeta{
			QualityScore:   quality,
			IntegrityScore: integrity,
			EmailSent:      sent,
		},
	}
	if previous != nil {
		prev := toAppointmentData(previous)
		data.Previous = &prev
	}

	return &Response{Text: text, Intent: req.Decision.Intent, Data: data}
}

// conflictResponse объясняет конфликт и предлагает свободные слоты того же дня; ничего не бронирует
func (uc *UseCase) conflictResponse(intent domain.Intent, res bookingResult, start, now time.Time, prefix string) *Response {
	if res.verdict.Recommendation == scheduling.RecommendationUnknown {
		uc.observe(intent, OutcomeRejected)
		return clarifyDateTime(intent)
	}
	uc.observe(intent, OutcomeConflict)

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString("Conflict detected: ")
	b.WriteString(strings.Join(res.verdict.Descriptions, ", "))
	b.WriteString(".")

	alternatives := scheduling.OpenSlotsAfter(start, now, domain.MaxAlternativeSlots, res.dayBooked, uc.rules)
	if len(alternatives) == 0 {
		b.WriteString(" Would you like to try another day?")
	} else {
		times := make([]string, 0, len(alternatives))
		for _, s := range alternatives {
			times = append(times, s.Start.In(uc.rules.Location).Format(domain.TimeFormat))
		}
		b.WriteString(" Open times that day: ")
		b.WriteString(strings.Join(times, ", "))
		b.WriteString(".")
	}

	uc.logger.Info("HandleDecision: conflict at %s: %v", start.Format(time.RFC3339), res.verdict.Descriptions)
	return &Response{Text: b.String(), Intent: intent}
}

func clarifyDateTime(intent domain.Intent) *Response {
	return &Response{
		Text:   "I want to make sure I get this right. Could you confirm the date (YYYY-MM-DD) and time you have in mind?",
		Intent: intent,
	}
}

func (uc *UseCase) outsideHours(intent domain.Intent) *Response {
	r := uc.rules
	return &Response{
		Text: fmt.Sprintf("That time is outside our hours: %s %s-%s, closed for lunch %s-%s. Which other date and time would suit you?",
			r.WorkDays, r.DayStart, r.DayEnd, r.LunchStart, r.LunchEnd),
		Intent: intent,
	}
}
