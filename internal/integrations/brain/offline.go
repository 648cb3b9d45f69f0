package brain

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
	"github.com/m04kA/SMC-AppointmentAgent/pkg/ptr"
)

const (
	// OfflineConfidence держится на пороге автобронирования, поэтому офлайн-решения никогда не бронируют сами
	OfflineConfidence = domain.BookConfidenceThreshold
	// CatchAllConfidence уверенность ответа по умолчанию
	CatchAllConfidence = 0.3
)

const catchAllText = "I can certainly assist you with our services. " +
	"Would you like to check availability or book an appointment?"

var isoDatePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// OfflineResolver детерминированная стратегия на правилах, работает без внешних сервисов
type OfflineResolver struct {
	rules domain.BusinessRules
	now   func() time.Time
}

// NewOfflineResolver создает офлайн-стратегию. now == nil означает time.Now
func NewOfflineResolver(rules domain.BusinessRules, now func() time.Time) *OfflineResolver {
	if now == nil {
		now = time.Now
	}
	return &OfflineResolver{rules: rules, now: now}
}

// DefaultDecision ответ, когда ни одна стратегия не смогла разобрать сообщение
func DefaultDecision() domain.BookingDecision {
	return domain.BookingDecision{
		Intent:       domain.IntentQuestion,
		Confidence:   CatchAllConfidence,
		Reasoning:    "catch-all",
		ResponseText: catchAllText,
	}
}

// Resolve never fails
func (r *OfflineResolver) Resolve(_ context.Context, message string, _ []ChatMessage, _ string) (domain.BookingDecision, error) {
	msg := strings.ToLower(message)
	words := wordSet(msg)
	email, hasEmail := findEmail(message)

	decision := domain.BookingDecision{Confidence: OfflineConfidence, Reasoning: "offline rules"}
	if hasEmail {
		decision.UserEmail = ptr.Ptr(email)
	}

	switch {
	case words.any("cancel", "delete", "remove"):
		decision.Intent = domain.IntentCancel
		if !hasEmail {
			decision.Intent = domain.IntentQuestion
			decision.MissingInfo = []string{"email"}
			decision.ResponseText = "I can certainly handle that cancellation. " +
				"Could you please confirm the email address used for the booking?"
			return decision, nil
		}
		decision.ResponseText = "Let me cancel that for you."
		return decision, nil

	case words.has("history") || (words.has("my") && words.any("appointment", "appointments", "booking", "bookings")):
		decision.Intent = domain.IntentQuestion
		if !hasEmail {
			decision.MissingInfo = []string{"email"}
			decision.ResponseText = "I can show your history. What is your email address?"
			return decision, nil
		}
		decision.ResponseText = "Retrieving your booking history..."
		return decision, nil

	case words.has("reschedule") || words.has("move"):
		decision.Intent = domain.IntentQuestion
		decision.MissingInfo = []string{"date", "time", "email"}
		decision.ResponseText = "I can move your appointment. " +
			"Please share your email address and the new date and time."
		return decision, nil

	case words.any("available", "availability", "slots", "when", "open", "free"):
		decision.Intent = domain.IntentAvailability
		decision.TargetDate = ptr.Ptr(r.targetDate(msg))
		decision.ResponseText = "Let me pull up our current availability for you."
		return decision, nil

	case words.any("book", "schedule", "appointment", "reservation", "want"):
		return r.book(decision, msg), nil

	case words.any("who", "bot", "agent", "real", "offline") || strings.Contains(msg, "your name"):
		decision.Intent = domain.IntentGreeting
		decision.ResponseText = "I am the booking assistant of " + r.rules.BusinessName +
			", ready to help you manage your appointments."
		return decision, nil

	case words.any("hi", "hello", "hey", "start") || strings.Contains(msg, "good morning") ||
		strings.Contains(msg, "good evening") || strings.Contains(msg, "good afternoon"):
		decision.Intent = domain.IntentGreeting
		decision.ResponseText = "Hello! I can help you schedule appointments or check availability. " +
			"How may I assist you?"
		return decision, nil
	}

	return DefaultDecision(), nil
}

func (r *OfflineResolver) book(decision domain.BookingDecision, msg string) domain.BookingDecision {
	decision.Intent = domain.IntentBook
	decision.TargetDate = ptr.Ptr(r.targetDate(msg))

	clock, hasClock := findClock(msg)
	if hasClock {
		decision.TargetTime = ptr.Ptr(clock)
	}

	switch {
	case !hasClock:
		decision.MissingInfo = append(decision.MissingInfo, "time")
		decision.ResponseText = "I can arrange that. What time works best for you?"
	case decision.UserEmail == nil:
		decision.MissingInfo = append(decision.MissingInfo, "email")
		decision.ResponseText = "Excellent choice for " + clock + ". To confirm, may I have your email address?"
	default:
		decision.ResponseText = "Perfect. I'm securing your appointment for " + clock + ". One moment..."
	}
	return decision
}

// targetDate: explicit YYYY-MM-DD, "tomorrow" or today
func (r *OfflineResolver) targetDate(msg string) string {
	if m := isoDatePattern.FindStringSubmatch(msg); m != nil {
		if _, err := r.rules.ParseDate(m[1]); err == nil {
			return m[1]
		}
	}
	today := r.rules.Today(r.now())
	if strings.Contains(msg, "tomorrow") {
		today = today.AddDate(0, 0, 1)
	}
	return today.Format(domain.DateFormat)
}

type wordBag map[string]struct{}

func wordSet(s string) wordBag {
	set := make(wordBag)
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) }) {
		set[w] = struct{}{}
	}
	return set
}

func (w wordBag) has(word string) bool {
	_, ok := w[word]
	return ok
}

func (w wordBag) any(list ...string) bool {
	for _, word := range list {
		if w.has(word) {
			return true
		}
	}
	return false
}
