package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentAgent/pkg/ptr"
)

func TestBookingDecision_ResolveContact(t *testing.T) {
	caller := Caller{SessionID: "s1", Contact: "caller@example.com"}

	d := BookingDecision{UserEmail: ptr.Ptr("ana@example.com"), UserContact: ptr.Ptr("555-0100")}
	assert.Equal(t, "ana@example.com", d.ResolveContact(caller))

	d = BookingDecision{UserEmail: ptr.Ptr("  "), UserContact: ptr.Ptr("555-0100")}
	assert.Equal(t, "555-0100", d.ResolveContact(caller))
	assert.Equal(t, "caller@example.com", d.ResolveEmail(caller))

	d = BookingDecision{}
	assert.Equal(t, "caller@example.com", d.ResolveContact(caller))
	assert.Equal(t, "", d.ResolveContact(Caller{}))
}

func TestIntent_IsValid(t *testing.T) {
	assert.True(t, IntentCorrection.IsValid())
	assert.False(t, Intent("purchase").IsValid())
}

func TestUserPreferences_Append(t *testing.T) {
	prefs := UserPreferences{Contact: "ana@example.com"}

	notes := prefs.Append(JoinPreferences([]string{"prefers mornings", " ", "sensitive skin"}))
	assert.Equal(t, "prefers mornings; sensitive skin", notes)

	prefs.Notes = notes
	assert.Equal(t, "prefers mornings; sensitive skin; no fragrance", prefs.Append("no fragrance"))
	assert.Equal(t, notes, prefs.Append(""))
}

func TestCaller_PreferencesKey(t *testing.T) {
	assert.Equal(t, "ann@example.com", Caller{SessionID: "s42", Contact: " ann@example.com "}.PreferencesKey())
	assert.Equal(t, "s42", Caller{SessionID: "s42"}.PreferencesKey())
	assert.Equal(t, "", Caller{}.PreferencesKey())
}
