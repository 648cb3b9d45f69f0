package handle_decision

import (
	"fmt"
	"math"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

// validateRequest проверяет входные данные
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}

	d := req.Decision
	if !d.Intent.IsValid() {
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidInput, d.Intent)
	}
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be within [0, 1]", ErrInvalidInput)
	}
	if len(domain.Value(d.UserName)) > domain.MaxNameLength {
		return fmt.Errorf("%w: user_name is too long", ErrInvalidInput)
	}
	for _, p := range []*string{d.UserContact, d.UserEmail} {
		if len(domain.Value(p)) > domain.MaxContactLength {
			return fmt.Errorf("%w: contact is too long", ErrInvalidInput)
		}
	}
	if len(domain.JoinPreferences(d.DetectedPreferences)) > domain.MaxPreferencesLength {
		return fmt.Errorf("%w: detected_preferences are too long", ErrInvalidInput)
	}

	return nil
}

// canAutoBook уверенность строго выше порога и ничего не требуется уточнить
func canAutoBook(d domain.BookingDecision) bool {
	return d.Confidence > domain.BookConfidenceThreshold && len(d.MissingInfo) == 0
}
