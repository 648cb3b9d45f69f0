package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

func TestConflictEngine_BufferBoundary(t *testing.T) {
	day, _ := testDay(t)
	engine := NewConflictEngine(5)
	existing := []*domain.Appointment{booked("a1", "Glow Consultation", at(day, 10, 0), 30)}

	tests := []struct {
		name     string
		hour     int
		minute   int
		duration int
		want     Recommendation
	}{
		{name: "within buffer after", hour: 10, minute: 33, duration: 30, want: RecommendationUnsafe},
		{name: "exactly buffer after", hour: 10, minute: 35, duration: 30, want: RecommendationSafe},
		{name: "buffer minus one after", hour: 10, minute: 34, duration: 30, want: RecommendationUnsafe},
		{name: "exactly buffer before", hour: 9, minute: 25, duration: 30, want: RecommendationSafe},
		{name: "buffer minus one before", hour: 9, minute: 26, duration: 30, want: RecommendationUnsafe},
		{name: "direct overlap", hour: 10, minute: 15, duration: 30, want: RecommendationUnsafe},
		{name: "far away", hour: 14, minute: 0, duration: 60, want: RecommendationSafe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := engine.Evaluate(at(day, tt.hour, tt.minute), tt.duration, existing)
			assert.Equal(t, tt.want, v.Recommendation)
			assert.Equal(t, tt.want == RecommendationUnsafe, v.HasConflict)
		})
	}
}

func TestConflictEngine_CollectsAllConflicts(t *testing.T) {
	day, _ := testDay(t)
	engine := NewConflictEngine(5)
	existing := []*domain.Appointment{
		booked("a1", "Glow Consultation", at(day, 10, 0), 30),
		booked("a2", "Deep Hydration Facial", at(day, 10, 40), 60),
		booked("a3", "Laser Precision Therapy", at(day, 15, 0), 45),
	}

	v := engine.Evaluate(at(day, 10, 20), 45, existing)

	require.True(t, v.HasConflict)
	require.Len(t, v.Conflicting, 2)
	assert.Equal(t, "a1", v.Conflicting[0].ID)
	assert.Equal(t, "a2", v.Conflicting[1].ID)
	require.Len(t, v.Descriptions, 2)
	assert.Contains(t, v.Descriptions[0], "Glow Consultation")
	assert.Contains(t, v.Descriptions[1], "Deep Hydration Facial")
}

func TestConflictEngine_IgnoresCancelled(t *testing.T) {
	day, _ := testDay(t)
	cancelled := booked("a1", "Glow Consultation", at(day, 10, 0), 30)
	cancelled.Status = domain.StatusCancelled

	v := NewConflictEngine(5).Evaluate(at(day, 10, 0), 30, []*domain.Appointment{cancelled, nil})

	assert.True(t, v.IsSafe())
	assert.Empty(t, v.Conflicting)
}

func TestConflictEngine_UnknownOnMalformedInput(t *testing.T) {
	day, rules := testDay(t)
	engine := NewConflictEngine(rules.BufferMinutes)

	assert.Equal(t, RecommendationUnknown, engine.EvaluateRaw("tomorrow-ish", "10:00", 30, nil, rules).Recommendation)
	assert.Equal(t, RecommendationUnknown, engine.EvaluateRaw("2026-10-19", "ten", 30, nil, rules).Recommendation)
	assert.Equal(t, RecommendationUnknown, engine.Evaluate(at(day, 10, 0), 0, nil).Recommendation)
	assert.False(t, engine.Evaluate(at(day, 10, 0), 0, nil).IsSafe())
	assert.Equal(t, RecommendationSafe, engine.EvaluateRaw("2026-10-19", "10:00", 30, nil, rules).Recommendation)
}

func TestConflictEngine_ZeroBufferAllowsBackToBack(t *testing.T) {
	day, _ := testDay(t)
	existing := []*domain.Appointment{booked("a1", "x", at(day, 10, 0), 30)}

	assert.True(t, NewConflictEngine(0).Evaluate(at(day, 10, 30), 30, existing).IsSafe())
	assert.True(t, NewConflictEngine(-3).Evaluate(at(day, 9, 30), 30, existing).IsSafe())
	assert.False(t, NewConflictEngine(0).Evaluate(at(day, 10, 29), 30, existing).IsSafe())
}

func TestConflictEngine_Window(t *testing.T) {
	day, _ := testDay(t)
	engine := NewConflictEngine(5)

	from, to := engine.Window(at(day, 10, 0), at(day, 10, 30))

	assert.Equal(t, at(day, 9, 55), from)
	assert.Equal(t, at(day, 10, 35), to)
}
