package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// Recommendation is the binary outcome of a conflict check,
// plus Unknown for input that could not be evaluated.
type Recommendation string

const (
	RecommendationSafe    Recommendation = "safe"
	RecommendationUnsafe  Recommendation = "unsafe"
	RecommendationUnknown Recommendation = "unknown"
)

// ConflictVerdict is the result of evaluating one proposed interval
type ConflictVerdict struct {
	HasConflict    bool
	Conflicting    []*domain.Appointment
	Descriptions   []string
	Recommendation Recommendation
}

// IsSafe is true only for a definite safe verdict. Unknown is not safe.
func (v ConflictVerdict) IsSafe() bool {
	return v.Recommendation == RecommendationSafe
}

// ConflictEngine checks proposed intervals against booked appointments with a symmetric buffer
type ConflictEngine struct {
	buffer time.Duration
}

// NewConflictEngine creates an engine with the given buffer in minutes. Negative values are treated as zero.
func NewConflictEngine(bufferMinutes int) ConflictEngine {
	if bufferMinutes < 0 {
		bufferMinutes = 0
	}
	return ConflictEngine{buffer: time.Duration(bufferMinutes) * time.Minute}
}

// Buffer returns the configured buffer
func (e ConflictEngine) Buffer() time.Duration {
	return e.buffer
}

// Evaluate checks [start, start+duration) against every booked appointment.
// A conflict is start < existingEnd+buffer AND end+buffer > existingStart.
// All conflicts are collected, not just the first.
func (e ConflictEngine) Evaluate(start time.Time, durationMinutes int, existing []*domain.Appointment) ConflictVerdict {
	if start.IsZero() || durationMinutes <= 0 {
		return unknownVerdict()
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	verdict := ConflictVerdict{Recommendation: RecommendationSafe}
	for _, appt := range existing {
		if appt == nil || !appt.IsActive() {
			continue
		}
		if !e.overlaps(start, end, appt) {
			continue
		}
		verdict.Conflicting = append(verdict.Conflicting, appt)
		verdict.Descriptions = append(verdict.Descriptions, describeConflict(appt))
	}

	if len(verdict.Conflicting) > 0 {
		verdict.HasConflict = true
		verdict.Recommendation = RecommendationUnsafe
	}
	return verdict
}

// EvaluateRaw parses date (YYYY-MM-DD) and clock (HH:MM) in the rules' timezone and evaluates the result.
// Unparsable input yields RecommendationUnknown instead of an error.
func (e ConflictEngine) EvaluateRaw(
	date, clock string,
	durationMinutes int,
	existing []*domain.Appointment,
	rules domain.BusinessRules,
) ConflictVerdict {
	start, err := rules.ParseDateTime(date, clock)
	if err != nil {
		return unknownVerdict()
	}
	return e.Evaluate(start, durationMinutes, existing)
}

// Window returns the interval whose booked appointments can conflict with [start, end)
func (e ConflictEngine) Window(start, end time.Time) (time.Time, time.Time) {
	return start.Add(-e.buffer), end.Add(e.buffer)
}

func (e ConflictEngine) overlaps(start, end time.Time, appt *domain.Appointment) bool {
	return start.Before(appt.End.Add(e.buffer)) && end.Add(e.buffer).After(appt.Start)
}

func describeConflict(appt *domain.Appointment) string {
	service := appt.Service
	if service == "" {
		service = "appointment"
	}
	return fmt.Sprintf("overlaps or violates buffer with %s (%s-%s)",
		service, appt.Start.Format(domain.TimeFormat), appt.End.Format(domain.TimeFormat))
}

func unknownVerdict() ConflictVerdict {
	return ConflictVerdict{Recommendation: RecommendationUnknown}
}
