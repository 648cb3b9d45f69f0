package domain

import "strings"

// Intent is the primary purpose of a caller message
type Intent string

const (
	IntentBook         Intent = "book"
	IntentReschedule   Intent = "reschedule"
	IntentCancel       Intent = "cancel"
	IntentAvailability Intent = "availability"
	IntentQuestion     Intent = "question"
	IntentGreeting     Intent = "greeting"
	IntentCorrection   Intent = "correction"
)

// IsValid reports whether i is a known intent
func (i Intent) IsValid() bool {
	switch i {
	case IntentBook, IntentReschedule, IntentCancel, IntentAvailability,
		IntentQuestion, IntentGreeting, IntentCorrection:
		return true
	}
	return false
}

// BookingDecision is the structured output of intent extraction.
// Everything except Intent and Confidence is optional and untrusted.
type BookingDecision struct {
	Intent              Intent   `json:"intent"`
	Confidence          float64  `json:"confidence"`
	TargetDate          *string  `json:"target_date,omitempty"`
	TargetTime          *string  `json:"target_time,omitempty"`
	UserName            *string  `json:"user_name,omitempty"`
	UserContact         *string  `json:"user_contact,omitempty"`
	UserEmail           *string  `json:"user_email,omitempty"`
	MissingInfo         []string `json:"missing_info"`
	DetectedPreferences []string `json:"detected_preferences"`
	Reasoning           string   `json:"reasoning,omitempty"`
	ResponseText        string   `json:"response_text"`
}

// Caller identifies who sent the request. It replaces any process-wide session state.
type Caller struct {
	SessionID string
	Contact   string
}

// PreferencesKey is the key preferences are read under: the caller's contact, else the session id
func (c Caller) PreferencesKey() string {
	if contact := strings.TrimSpace(c.Contact); contact != "" {
		return contact
	}
	return strings.TrimSpace(c.SessionID)
}

// ResolveContact picks the identity key: email, then contact, then the caller's own contact
func (d BookingDecision) ResolveContact(caller Caller) string {
	for _, p := range []*string{d.UserEmail, d.UserContact} {
		if p != nil && strings.TrimSpace(*p) != "" {
			return strings.TrimSpace(*p)
		}
	}
	return strings.TrimSpace(caller.Contact)
}

// ResolveEmail returns the email to notify, if any field looks like one
func (d BookingDecision) ResolveEmail(caller Caller) string {
	for _, p := range []*string{d.UserEmail, d.UserContact} {
		if p != nil && strings.Contains(*p, "@") {
			return strings.TrimSpace(*p)
		}
	}
	if strings.Contains(caller.Contact, "@") {
		return strings.TrimSpace(caller.Contact)
	}
	return ""
}

// Value returns the trimmed string behind an optional field
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
