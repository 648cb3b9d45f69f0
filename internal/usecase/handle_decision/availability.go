package handle_decision

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/scheduling"
)

// availability свободные слоты на запрошенный день (или сегодня); состояние не меняет
func (uc *UseCase) availability(ctx context.Context, req *Request) (*Response, error) {
	d := req.Decision
	now := uc.timeProvider.Now()

	raw := domain.Value(d.TargetDate)
	day, fellBack := scheduling.ResolveDay(raw, now, uc.rules)
	if fellBack && raw != "" {
		uc.logger.Warn("HandleDecision: unparsable availability date=%q, using today", raw)
	}

	from, to := uc.engine.Window(uc.rules.DayBounds(day))
	existing, err := uc.appointments.GetBookedOverlapping(ctx, from, to)
	if err != nil {
		uc.logger.Error("HandleDecision: failed to get booked appointments: %v", err)
		return nil, internalErr("get booked appointments", err)
	}

	slots := scheduling.OpenSlotsAfter(day, now, domain.DefaultAvailabilitySlotsCount, existing, uc.rules)

	label := day.Format("Mon, Jan 02")
	text := d.ResponseText
	switch {
	case len(slots) == 0:
		text = fmt.Sprintf("There are no open slots on %s.", label)
	case strings.TrimSpace(text) == "":
		text = fmt.Sprintf("Here are the open times for %s.", label)
	}

	return &Response{Text: text, Intent: d.Intent, Data: toSlotsData(day, slots)}, nil
}
