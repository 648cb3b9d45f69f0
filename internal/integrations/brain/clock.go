package brain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// 3pm, 3:30 pm, 15:00, 9.30, at 4
	clockPattern = regexp.MustCompile(`(?i)\b(at\s+)?(\d{1,2})(?:[:.](\d{2}))?\s?(am|pm)?\b`)
	emailPattern = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)
)

// NormalizeClock converts loose time expressions to HH:MM.
// A bare hour from 1 to 7 is read as afternoon.
func NormalizeClock(s string) (string, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return clockFromMatch(m)
}

// findClock returns the first time expression in free text.
// Email addresses are ignored, and a bare number needs "at" in front of it.
func findClock(text string) (string, bool) {
	stripped := emailPattern.ReplaceAllString(text, " ")
	for _, m := range clockPattern.FindAllStringSubmatch(stripped, -1) {
		if m[1] == "" && m[3] == "" && m[4] == "" {
			continue
		}
		if clock, ok := clockFromMatch(m); ok {
			return clock, true
		}
	}
	return "", false
}

func clockFromMatch(m []string) (string, bool) {
	hour, err := strconv.Atoi(m[2])
	if err != nil {
		return "", false
	}
	minute := 0
	if m[3] != "" {
		if minute, err = strconv.Atoi(m[3]); err != nil {
			return "", false
		}
	}

	switch strings.ToLower(m[4]) {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 12 {
			hour += 12
		}
	default:
		if m[3] == "" && hour >= 1 && hour <= 7 {
			hour += 12
		}
	}

	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// findEmail returns the first email address in text
func findEmail(text string) (string, bool) {
	m := emailPattern.FindString(text)
	return m, m != ""
}
