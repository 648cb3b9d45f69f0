package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	return s == StatusBooked || s == StatusCancelled
}

// Appointment is a single calendar entry. Appointments are never deleted;
// cancellation only flips Status to StatusCancelled.
type Appointment struct {
	ID      string
	Name    string
	Contact string // identity key, usually an email
	Service string // display name of the booked service
	Start   time.Time
	End     time.Time
	Status  AppointmentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment still holds its slot
func (a *Appointment) IsActive() bool {
	return a.Status == StatusBooked
}

// CanBeCancelled returns true if cancellation would change the appointment
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusBooked
}

// DurationMinutes length of the appointment in whole minutes
func (a *Appointment) DurationMinutes() int {
	return int(a.End.Sub(a.Start) / time.Minute)
}

// Validate checks the structural invariants of an appointment
func (a *Appointment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("appointment id is required")
	}
	if !a.End.After(a.Start) {
		return fmt.Errorf("appointment %s: end must be after start", a.ID)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("appointment %s: invalid status %q", a.ID, a.Status)
	}
	return nil
}
