package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

const (
	maxIntegrityScore = 100

	deadGapMinutes   = 15
	usableGapMinutes = 30

	deadGapPenalty  = 15
	shortGapPenalty = 5

	// minutes a single fragment is estimated to waste
	fragmentCostMinutes = 15
)

// Gap is the idle interval between two consecutive appointments
type Gap struct {
	After   *domain.Appointment
	Before  *domain.Appointment
	Minutes float64
}

// Gaps returns the gaps between consecutive appointments ordered by start time.
// Non-positive gaps (back-to-back or overlapping) are included as-is.
func Gaps(appointments []*domain.Appointment) []Gap {
	sorted := sortedByStart(appointments)
	if len(sorted) < 2 {
		return nil
	}

	gaps := make([]Gap, 0, len(sorted)-1)
	for i := 0; i < len(sorted)-1; i++ {
		gaps = append(gaps, Gap{
			After:   sorted[i],
			Before:  sorted[i+1],
			Minutes: sorted[i+1].Start.Sub(sorted[i].End).Minutes(),
		})
	}
	return gaps
}

// IntegrityScore rates calendar fragmentation on 0..100.
// Gaps in (0,15) cost 15 each and gaps in [15,30) cost 5 each; others are free.
func IntegrityScore(appointments []*domain.Appointment) int {
	penalty := 0
	for _, g := range Gaps(appointments) {
		penalty += gapPenalty(g.Minutes)
	}
	return max(0, maxIntegrityScore-penalty)
}

func gapPenalty(minutes float64) int {
	switch {
	case minutes > 0 && minutes < deadGapMinutes:
		return deadGapPenalty
	case minutes >= deadGapMinutes && minutes < usableGapMinutes:
		return shortGapPenalty
	default:
		return 0
	}
}

// FragmentationReport summarizes sub-30-minute fragments for the decision context
func FragmentationReport(appointments []*domain.Appointment) string {
	if len(appointments) == 0 {
		return "Calendar is clean."
	}

	fragments := make([]string, 0)
	for _, g := range Gaps(appointments) {
		if g.Minutes > 0 && g.Minutes < usableGapMinutes {
			fragments = append(fragments, fmt.Sprintf("%dm gap after %s", int(g.Minutes), serviceOrDefault(g.After)))
		}
	}
	if len(fragments) == 0 {
		return "Schedule is optimized."
	}

	shown := fragments
	if len(shown) > 2 {
		shown = shown[:2]
	}
	return fmt.Sprintf("Optimization opportunity: found %d fragments (%s). Rearranging could save ~%d mins.",
		len(fragments), strings.Join(shown, ", "), len(fragments)*fragmentCostMinutes)
}

// BookingQuality scores a slot start: Monday before 10:00 costs 10,
// hours 10 through 15 earn 5, capped at 100.
func BookingQuality(start time.Time) int {
	score := maxIntegrityScore
	if start.Weekday() == time.Monday && start.Hour() < 10 {
		score -= 10
	}
	if start.Hour() >= 10 && start.Hour() <= 15 {
		score += 5
	}
	return min(maxIntegrityScore, score)
}

func sortedByStart(appointments []*domain.Appointment) []*domain.Appointment {
	sorted := make([]*domain.Appointment, 0, len(appointments))
	for _, a := range appointments {
		if a != nil {
			sorted = append(sorted, a)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})
	return sorted
}

func serviceOrDefault(a *domain.Appointment) string {
	if a.Service == "" {
		return "appointment"
	}
	return a.Service
}
