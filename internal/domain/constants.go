package domain

// Default business rules, used when config leaves a field empty
const (
	DefaultBusinessName           = "Aura Aesthetics"
	DefaultTimezone               = "America/Chicago"
	DefaultDayStart               = "09:00"
	DefaultDayEnd                 = "17:00"
	DefaultLunchStart             = "12:00"
	DefaultLunchEnd               = "13:00"
	DefaultBaselineTime           = "09:00"
	DefaultDurationMinutes        = 30
	DefaultBufferMinutes          = 5
	DefaultServiceKey             = "consultation"
	DefaultAvailabilitySlotsCount = 5
)

// Booking policy thresholds
const (
	// BookConfidenceThreshold decision confidence must be strictly above this to book
	BookConfidenceThreshold = 0.8

	// MaxAlternativeSlots how many open slots a conflict explanation offers
	MaxAlternativeSlots = 3

	// MaxAvailabilityCount upper bound for a single availability query
	MaxAvailabilityCount = 32

	// AppointmentIDLength length of the opaque appointment id
	AppointmentIDLength = 8
)

// Validation limits
const (
	MaxNameLength        = 200
	MaxContactLength     = 320
	MaxPreferencesLength = 4000
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// DateFallbackPolicy what booking does with an absent or unparsable target date
type DateFallbackPolicy string

const (
	// DateFallbackReject asks the caller for a valid date and books nothing
	DateFallbackReject DateFallbackPolicy = "reject"

	// DateFallbackNow substitutes the current local date
	DateFallbackNow DateFallbackPolicy = "now"
)

// IsValid reports whether p is a known policy
func (p DateFallbackPolicy) IsValid() bool {
	return p == DateFallbackReject || p == DateFallbackNow
}
