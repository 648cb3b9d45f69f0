package domain

import "strings"

// PreferencesSeparator joins accumulated preference notes
const PreferencesSeparator = "; "

// UserPreferences free-text memory about a caller, keyed by contact
type UserPreferences struct {
	Contact string
	Notes   string
}

// JoinPreferences renders detected preferences the way they are appended to notes
func JoinPreferences(prefs []string) string {
	cleaned := make([]string, 0, len(prefs))
	for _, p := range prefs {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, PreferencesSeparator)
}

// Append returns notes with addition appended. Existing notes are never dropped.
func (p UserPreferences) Append(addition string) string {
	if addition == "" {
		return p.Notes
	}
	if p.Notes == "" {
		return addition
	}
	return p.Notes + PreferencesSeparator + addition
}
