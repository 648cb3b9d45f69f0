package handle_decision

import (
	"context"
	"fmt"
	"strings"
)

// isHistoryRequest сообщение просит показать записи пользователя
func isHistoryRequest(message string) bool {
	msg := strings.ToLower(message)
	return strings.Contains(msg, "my appointment") ||
		strings.Contains(msg, "my booking") ||
		strings.Contains(msg, "history")
}

// history возвращает все записи пользователя, новые первыми
func (uc *UseCase) history(ctx context.Context, req *Request) (*Response, error) {
	d := req.Decision
	contact := d.ResolveContact(req.Caller)
	if contact == "" {
		return &Response{Text: "I can definitely look that up. What is your email address?", Intent: d.Intent}, nil
	}

	all, err := uc.appointments.GetAllByContact(ctx, contact)
	if err != nil {
		uc.logger.Error("HandleDecision: failed to get history for %s: %v", contact, err)
		return nil, internalErr("get appointment history", err)
	}

	if len(all) == 0 {
		return &Response{Text: fmt.Sprintf("I found no booking history for %s.", contact), Intent: d.Intent}, nil
	}

	data := &HistoryData{Type: DataTypeHistory, Contact: contact, Appointments: make([]AppointmentData, 0, len(all))}
	lines := make([]string, 0, len(all))
	for _, a := range all {
		lines = append(lines, fmt.Sprintf("- %s (%s) [%s]",
			a.Start.In(uc.rules.Location).Format("Jan 02, 15:04"), a.Service, strings.ToUpper(string(a.Status))))
		data.Appointments = append(data.Appointments, toAppointmentData(a))
	}

	return &Response{
		Text:   "Here is your full booking history:\n" + strings.Join(lines, "\n"),
		Intent: d.Intent,
		Data:   data,
	}, nil
}

