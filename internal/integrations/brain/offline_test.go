package brain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// Wednesday 2026-10-14 08:00 in Chicago
func fixedNow() time.Time {
	loc, _ := time.LoadLocation("America/Chicago")
	return time.Date(2026, 10, 14, 8, 0, 0, 0, loc)
}

func TestOfflineResolver(t *testing.T) {
	r := NewOfflineResolver(domain.DefaultBusinessRules(), fixedNow)

	tests := []struct {
		name        string
		message     string
		intent      domain.Intent
		date        string
		clock       string
		email       string
		missing     []string
		confidence  float64
		textContain string
	}{
		{
			name: "greeting", message: "Hello!", intent: domain.IntentGreeting,
			confidence: OfflineConfidence, textContain: "Hello",
		},
		{
			name: "greeting needs whole word", message: "this is something", intent: domain.IntentQuestion,
			confidence: CatchAllConfidence,
		},
		{
			name: "identity", message: "are you a bot?", intent: domain.IntentGreeting,
			confidence: OfflineConfidence, textContain: "Aura Aesthetics",
		},
		{
			name: "cancel with email", message: "Please cancel ana@example.com", intent: domain.IntentCancel,
			email: "ana@example.com", confidence: OfflineConfidence,
		},
		{
			name: "cancel without email", message: "cancel my booking", intent: domain.IntentQuestion,
			missing: []string{"email"}, confidence: OfflineConfidence, textContain: "email",
		},
		{
			name: "availability", message: "any free slots?", intent: domain.IntentAvailability,
			date: "2026-10-14", confidence: OfflineConfidence,
		},
		{
			name: "availability tomorrow", message: "what is open tomorrow", intent: domain.IntentAvailability,
			date: "2026-10-15", confidence: OfflineConfidence,
		},
		{
			name: "book full", message: "book me at 3pm, ana2@example.com", intent: domain.IntentBook,
			date: "2026-10-14", clock: "15:00", email: "ana2@example.com", confidence: OfflineConfidence,
		},
		{
			name: "book explicit date", message: "I want a facial on 2026-10-20 at 10:30",
			intent: domain.IntentBook, date: "2026-10-20", clock: "10:30",
			missing: []string{"email"}, confidence: OfflineConfidence,
		},
		{
			name: "book missing time", message: "I'd like to book a facial", intent: domain.IntentBook,
			date: "2026-10-14", missing: []string{"time"}, confidence: OfflineConfidence,
		},
		{
			name: "history before book", message: "show my appointments ana@example.com",
			intent: domain.IntentQuestion, email: "ana@example.com", confidence: OfflineConfidence,
			textContain: "history",
		},
		{
			name: "catch all", message: "what is the meaning of life", intent: domain.IntentQuestion,
			confidence: CatchAllConfidence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.Resolve(context.Background(), tt.message, nil, "")
			require.NoError(t, err)

			assert.Equal(t, tt.intent, d.Intent)
			assert.Equal(t, tt.confidence, d.Confidence)
			assert.Equal(t, tt.date, domain.Value(d.TargetDate))
			assert.Equal(t, tt.clock, domain.Value(d.TargetTime))
			assert.Equal(t, tt.email, domain.Value(d.UserEmail))
			assert.Equal(t, tt.missing, d.MissingInfo)
			if tt.textContain != "" {
				assert.Contains(t, d.ResponseText, tt.textContain)
			}
			assert.False(t, d.Confidence > domain.BookConfidenceThreshold, "offline decisions must not auto-book")
		})
	}
}
