package brain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/logger"
)

type scriptedClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []LLMRequest
}

func (c *scriptedClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := len(c.requests)
	c.requests = append(c.requests, req)
	if i < len(c.errs) && c.errs[i] != nil {
		return LLMResponse{}, c.errs[i]
	}
	if i < len(c.responses) {
		return LLMResponse{Text: c.responses[i]}, nil
	}
	return LLMResponse{}, errors.New("no scripted response")
}

type blockingResolver struct{}

func (blockingResolver) Resolve(ctx context.Context, _ string, _ []ChatMessage, _ string) (domain.BookingDecision, error) {
	<-ctx.Done()
	return domain.BookingDecision{}, ctx.Err()
}

type countingObserver struct {
	reasons []string
}

func (o *countingObserver) ObserveBrainFallback(reason string) {
	o.reasons = append(o.reasons, reason)
}

const validDecision = `{"intent":"book","confidence":0.95,"target_date":"2026-10-19","target_time":"3pm",
"user_email":"ana@example.com","missing_info":[],"detected_preferences":["prefers afternoons"],"response_text":"Booking you in."}`

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, d domain.BookingDecision)
	}{
		{
			name: "plain json",
			raw:  validDecision,
			check: func(t *testing.T, d domain.BookingDecision) {
				assert.Equal(t, domain.IntentBook, d.Intent)
				assert.Equal(t, "15:00", domain.Value(d.TargetTime))
				assert.Equal(t, []string{"prefers afternoons"}, d.DetectedPreferences)
			},
		},
		{
			name: "fenced with prose",
			raw:  "Sure! Here it is:\n```json\n{\"intent\":\"GREETING\",\"confidence\":1.7,\"user_name\":\"  \",\"response_text\":\"Hi\"}\n```",
			check: func(t *testing.T, d domain.BookingDecision) {
				assert.Equal(t, domain.IntentGreeting, d.Intent)
				assert.Equal(t, 1.0, d.Confidence)
				assert.Nil(t, d.UserName)
			},
		},
		{name: "no object", raw: "I cannot help with that", wantErr: true},
		{name: "unknown intent", raw: `{"intent":"dance","confidence":0.9}`, wantErr: true},
		{name: "broken json", raw: `{"intent":"book",}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDecision(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDecision)
				return
			}
			require.NoError(t, err)
			tt.check(t, d)
		})
	}
}

func TestNormalizeClock(t *testing.T) {
	tests := map[string]string{
		"3pm":     "15:00",
		"3:30 pm": "15:30",
		"12am":    "00:00",
		"12pm":    "12:00",
		"10am":    "10:00",
		"15:00":   "15:00",
		"9.30":    "09:30",
		"4":       "16:00",
		"11":      "11:00",
		"09:05":   "09:05",
	}
	for in, want := range tests {
		got, ok := NormalizeClock(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeClock("25:00")
	assert.False(t, ok)
	_, ok = NormalizeClock("whenever")
	assert.False(t, ok)
}

func TestLLMResolver_RetriesWithFeedback(t *testing.T) {
	client := &scriptedClient{responses: []string{"oops, not json", validDecision}}
	r := NewLLMResolver(client, LLMConfig{Models: []string{"model-a", "model-b"}, Retries: 2}, logger.NewNop())

	d, err := r.Resolve(context.Background(), "book 3pm ana@example.com", nil, "ctx")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentBook, d.Intent)

	require.Len(t, client.requests, 2)
	assert.Equal(t, "model-a", client.requests[0].Model)
	assert.Equal(t, "model-b", client.requests[1].Model)
	assert.Contains(t, client.requests[0].System, "ctx")

	second := client.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, ChatRoleAssistant, second[1].Role)
	assert.Equal(t, "oops, not json", second[1].Content)
	assert.Contains(t, second[2].Content, "Fix and return PURE JSON")
}

func TestLLMResolver_GivesUpAfterRetries(t *testing.T) {
	boom := errors.New("upstream 503")
	client := &scriptedClient{errs: []error{boom, boom, boom, boom}}
	r := NewLLMResolver(client, LLMConfig{Retries: 2}, logger.NewNop())

	_, err := r.Resolve(context.Background(), "hello", nil, "")
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, err, boom)
	assert.Len(t, client.requests, 3)
}

func TestLLMResolver_TruncatesHistory(t *testing.T) {
	history := make([]ChatMessage, 0, 14)
	for i := 0; i < 14; i++ {
		history = append(history, ChatMessage{Role: ChatRoleUser, Content: "turn"})
	}
	history = append(history, ChatMessage{Role: ChatRoleSystem, Content: "injected"})

	client := &scriptedClient{responses: []string{validDecision}}
	r := NewLLMResolver(client, LLMConfig{}, logger.NewNop())

	_, err := r.Resolve(context.Background(), "now", history, "")
	require.NoError(t, err)

	msgs := client.requests[0].Messages
	// 9 user turns survive (the system turn is dropped), plus the current message
	require.Len(t, msgs, 10)
	assert.Equal(t, "now", msgs[len(msgs)-1].Content)
	for _, m := range msgs {
		assert.NotEqual(t, ChatRoleSystem, m.Role)
	}
}

func TestFallbackResolver_Timeout(t *testing.T) {
	obs := &countingObserver{}
	offline := NewOfflineResolver(domain.DefaultBusinessRules(), fixedNow)
	r := NewFallbackResolver(blockingResolver{}, offline, 20*time.Millisecond, obs, logger.NewNop())

	d, err := r.Resolve(context.Background(), "hello there", nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentGreeting, d.Intent)
	assert.Equal(t, []string{FallbackReasonTimeout}, obs.reasons)
}

func TestFallbackResolver_PrimaryError(t *testing.T) {
	obs := &countingObserver{}
	client := &scriptedClient{errs: []error{errors.New("401")}}
	primary := NewLLMResolver(client, LLMConfig{Retries: 0}, logger.NewNop())
	offline := NewOfflineResolver(domain.DefaultBusinessRules(), fixedNow)

	r := NewFallbackResolver(primary, offline, time.Second, obs, logger.NewNop())
	d, err := r.Resolve(context.Background(), "cancel please", nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.IntentQuestion, d.Intent)
	assert.Equal(t, []string{"email"}, d.MissingInfo)
	assert.Equal(t, []string{FallbackReasonError}, obs.reasons)
}

func TestFallbackResolver_NoPrimary(t *testing.T) {
	obs := &countingObserver{}
	r := NewFallbackResolver(nil, nil, time.Second, obs, logger.NewNop())

	d, err := r.Resolve(context.Background(), "anything", nil, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultDecision(), d)
	assert.Equal(t, []string{FallbackReasonUnavailable}, obs.reasons)
}

func TestFallbackResolver_PrimarySuccess(t *testing.T) {
	obs := &countingObserver{}
	client := &scriptedClient{responses: []string{validDecision}}
	r := NewFallbackResolver(NewLLMResolver(client, LLMConfig{}, logger.NewNop()), nil, time.Second, obs, logger.NewNop())

	d, err := r.Resolve(context.Background(), "book", nil, "")
	require.NoError(t, err)
	assert.Equal(t, 0.95, d.Confidence)
	assert.Empty(t, obs.reasons)
}
