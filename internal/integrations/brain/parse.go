package brain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/m04kA/SMC-AppointmentAgent/internal/domain"
)

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON вырезает JSON-объект из ответа модели (markdown-ограждения, текст вокруг)
func extractJSON(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	obj := jsonObjectPattern.FindString(text)
	if obj == "" {
		return "", fmt.Errorf("%w: no JSON object in response", ErrInvalidDecision)
	}
	return obj, nil
}

// ParseDecision разбирает и нормализует решение из сырого ответа модели
func ParseDecision(raw string) (domain.BookingDecision, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return domain.BookingDecision{}, err
	}

	var decision domain.BookingDecision
	if err := json.Unmarshal([]byte(obj), &decision); err != nil {
		return domain.BookingDecision{}, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}

	decision.Intent = domain.Intent(strings.ToLower(strings.TrimSpace(string(decision.Intent))))
	if !decision.Intent.IsValid() {
		return domain.BookingDecision{}, fmt.Errorf("%w: unknown intent %q", ErrInvalidDecision, decision.Intent)
	}

	decision.Confidence = min(max(decision.Confidence, 0), 1)
	decision.TargetDate = blankToNil(decision.TargetDate)
	decision.UserName = blankToNil(decision.UserName)
	decision.UserContact = blankToNil(decision.UserContact)
	decision.UserEmail = blankToNil(decision.UserEmail)
	decision.TargetTime = blankToNil(decision.TargetTime)
	if decision.TargetTime != nil {
		// Нераспознанное время оставляем как есть: оркестратор ответит уточняющим вопросом
		if clock, ok := NormalizeClock(*decision.TargetTime); ok {
			decision.TargetTime = &clock
		}
	}

	return decision, nil
}

func blankToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" || strings.EqualFold(v, "null") {
		return nil
	}
	return &v
}
