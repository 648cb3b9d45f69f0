package process_message

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/internal/scheduling"
)

// contextSummary снимок состояния, который получает модель вместе с сообщением
type contextSummary struct {
	Now         time.Time
	Rules       domain.BusinessRules
	Preferences string
	// Today занятые записи сегодняшнего дня; nil, если загрузить не удалось
	Today []*domain.Appointment
}

func (s contextSummary) String() string {
	local := s.Now.In(s.Rules.Location)

	var b strings.Builder
	fmt.Fprintf(&b, "Current Time: %s (%s)\n", local.Format(time.RFC3339), local.Weekday())
	fmt.Fprintf(&b, "Business: %s\n", s.Rules.BusinessName)
	fmt.Fprintf(&b, "Timezone: %s\n", s.Rules.Location)
	fmt.Fprintf(&b, "Hours: %s %s-%s (lunch %s-%s)\n",
		s.Rules.WorkDays, s.Rules.DayStart, s.Rules.DayEnd, s.Rules.LunchStart, s.Rules.LunchEnd)

	b.WriteString("\nSERVICES:\n")
	for _, svc := range s.Rules.Services.All() {
		fmt.Fprintf(&b, "- %s: %s (%dm, $%.2f)\n", svc.Key, svc.Name, svc.DurationMinutes, svc.Price)
	}

	prefs := s.Preferences
	if prefs == "" {
		prefs = "None yet"
	}
	fmt.Fprintf(&b, "\nUser Preferences: %s\n", prefs)

	if s.Today != nil {
		b.WriteString("\nSYSTEM INTELLIGENCE:\n")
		fmt.Fprintf(&b, "- Optimization: %s\n", scheduling.FragmentationReport(s.Today))
		fmt.Fprintf(&b, "- Integrity Score: %d/100\n", scheduling.IntegrityScore(s.Today))
	}

	return b.String()
}
