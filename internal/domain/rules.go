package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode"

	"github.com/m04kA/SMC-AppointmentAgent/pkg/types"
)

// Service is one entry of the service catalog
type Service struct {
	Key             string
	Name            string
	DurationMinutes int
	Price           float64
}

// MatchKind ranks how a service was matched against free text. Lower is better.
type MatchKind int

const (
	MatchExactKey MatchKind = iota
	MatchNameSubstring
	MatchDefault
)

func (k MatchKind) String() string {
	switch k {
	case MatchExactKey:
		return "exact_key"
	case MatchNameSubstring:
		return "name_substring"
	default:
		return "default"
	}
}

// ServiceMatch is a ranked candidate returned by ServiceCatalog.Resolve
type ServiceMatch struct {
	Service Service
	Kind    MatchKind
}

// ServiceCatalog is a read-only set of services with a designated default
type ServiceCatalog struct {
	services   map[string]Service
	keys       []string
	defaultKey string
}

// NewServiceCatalog builds a catalog. Keys are normalized to lower case.
func NewServiceCatalog(services []Service, defaultKey string) (ServiceCatalog, error) {
	if len(services) == 0 {
		return ServiceCatalog{}, fmt.Errorf("service catalog is empty")
	}

	c := ServiceCatalog{
		services:   make(map[string]Service, len(services)),
		keys:       make([]string, 0, len(services)),
		defaultKey: strings.ToLower(defaultKey),
	}
	for _, s := range services {
		s.Key = strings.ToLower(strings.TrimSpace(s.Key))
		if s.Key == "" || s.Name == "" {
			return ServiceCatalog{}, fmt.Errorf("service key and name are required")
		}
		if s.DurationMinutes <= 0 {
			return ServiceCatalog{}, fmt.Errorf("service %s: duration must be positive", s.Key)
		}
		if _, dup := c.services[s.Key]; dup {
			return ServiceCatalog{}, fmt.Errorf("service %s: duplicate key", s.Key)
		}
		c.services[s.Key] = s
		c.keys = append(c.keys, s.Key)
	}
	sort.Strings(c.keys)

	if _, ok := c.services[c.defaultKey]; !ok {
		return ServiceCatalog{}, fmt.Errorf("default service %q is not in catalog", defaultKey)
	}
	return c, nil
}

// Get returns a service by key
func (c ServiceCatalog) Get(key string) (Service, bool) {
	s, ok := c.services[strings.ToLower(key)]
	return s, ok
}

// ByName returns a service by its display name, case-insensitive
func (c ServiceCatalog) ByName(name string) (Service, bool) {
	for _, key := range c.keys {
		if strings.EqualFold(c.services[key].Name, name) {
			return c.services[key], true
		}
	}
	return Service{}, false
}

// Default returns the baseline service
func (c ServiceCatalog) Default() Service {
	return c.services[c.defaultKey]
}

// All returns services ordered by key
func (c ServiceCatalog) All() []Service {
	out := make([]Service, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.services[key])
	}
	return out
}

// Resolve ranks catalog services against free text:
// exact key word first, then name substring, then the default service.
// Within one kind candidates are ordered by key. Each service appears once.
func (c ServiceCatalog) Resolve(text string) []ServiceMatch {
	lower := strings.ToLower(text)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	seen := make(map[string]bool)
	matches := make([]ServiceMatch, 0, len(c.keys)+1)

	for _, key := range c.keys {
		if words[key] {
			matches = append(matches, ServiceMatch{Service: c.services[key], Kind: MatchExactKey})
			seen[key] = true
		}
	}
	for _, key := range c.keys {
		if seen[key] {
			continue
		}
		if strings.Contains(lower, strings.ToLower(c.services[key].Name)) {
			matches = append(matches, ServiceMatch{Service: c.services[key], Kind: MatchNameSubstring})
			seen[key] = true
		}
	}
	if !seen[c.defaultKey] {
		matches = append(matches, ServiceMatch{Service: c.Default(), Kind: MatchDefault})
	}
	return matches
}

// ResolveBest returns the top-ranked service for text
func (c ServiceCatalog) ResolveBest(text string) Service {
	return c.Resolve(text)[0].Service
}

// WeekdaySet is a value-type set of weekdays
type WeekdaySet [7]bool

// NewWeekdaySet builds a set from weekdays
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s[d] = true
	}
	return s
}

// ParseWeekdays parses names like "Mon", "monday", "Tue"
func ParseWeekdays(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, n := range names {
		d, ok := parseWeekday(n)
		if !ok {
			return WeekdaySet{}, fmt.Errorf("unknown weekday %q", n)
		}
		s[d] = true
	}
	return s, nil
}

func parseWeekday(name string) (time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) < 3 {
		return 0, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, true
		}
	}
	return 0, false
}

// Contains reports whether d is in the set
func (s WeekdaySet) Contains(d time.Weekday) bool {
	return s[d]
}

// IsEmpty reports whether no day is set
func (s WeekdaySet) IsEmpty() bool {
	return s == WeekdaySet{}
}

// String renders the set as "Mon,Tue,..."
func (s WeekdaySet) String() string {
	parts := make([]string, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s[d] {
			parts = append(parts, d.String()[:3])
		}
	}
	return strings.Join(parts, ",")
}

// BusinessRules is immutable scheduling configuration for a single calendar.
// It is built once at start-up and passed by value.
type BusinessRules struct {
	BusinessName           string
	Location               *time.Location
	WorkDays               WeekdaySet
	DayStart               types.TimeString
	DayEnd                 types.TimeString
	LunchStart             types.TimeString
	LunchEnd               types.TimeString
	BaselineTime           types.TimeString
	BufferMinutes          int
	DefaultDurationMinutes int
	DateFallback           DateFallbackPolicy
	Services               ServiceCatalog
}

// DefaultBusinessRules returns the stock rules of the demo clinic
func DefaultBusinessRules() BusinessRules {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	catalog, _ := NewServiceCatalog([]Service{
		{Key: "consultation", Name: "Glow Consultation", DurationMinutes: 30, Price: 50},
		{Key: "facial", Name: "Deep Hydration Facial", DurationMinutes: 60, Price: 120},
		{Key: "laser", Name: "Laser Precision Therapy", DurationMinutes: 45, Price: 200},
	}, DefaultServiceKey)

	return BusinessRules{
		BusinessName:           DefaultBusinessName,
		Location:               loc,
		WorkDays:               NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		DayStart:               types.MustTimeString(DefaultDayStart),
		DayEnd:                 types.MustTimeString(DefaultDayEnd),
		LunchStart:             types.MustTimeString(DefaultLunchStart),
		LunchEnd:               types.MustTimeString(DefaultLunchEnd),
		BaselineTime:           types.MustTimeString(DefaultBaselineTime),
		BufferMinutes:          DefaultBufferMinutes,
		DefaultDurationMinutes: DefaultDurationMinutes,
		DateFallback:           DateFallbackReject,
		Services:               catalog,
	}
}

// Validate checks internal consistency of the rules
func (r BusinessRules) Validate() error {
	if r.Location == nil {
		return fmt.Errorf("timezone is required")
	}
	if r.WorkDays.IsEmpty() {
		return fmt.Errorf("at least one work day is required")
	}
	if !r.DayStart.IsBefore(r.DayEnd) {
		return fmt.Errorf("day_start %s must be before day_end %s", r.DayStart, r.DayEnd)
	}
	if r.LunchStart.IsAfter(r.LunchEnd) {
		return fmt.Errorf("lunch_start %s must not be after lunch_end %s", r.LunchStart, r.LunchEnd)
	}
	if r.BufferMinutes < 0 {
		return fmt.Errorf("buffer_minutes must be >= 0")
	}
	if r.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("default_duration_minutes must be positive")
	}
	if firstEnd, err := r.DayStart.AddMinutes(r.DefaultDurationMinutes); err != nil || firstEnd.IsAfter(r.DayEnd) {
		return fmt.Errorf("default_duration_minutes %d does not fit between %s and %s",
			r.DefaultDurationMinutes, r.DayStart, r.DayEnd)
	}
	if !r.DateFallback.IsValid() {
		return fmt.Errorf("unknown date fallback policy %q", r.DateFallback)
	}
	if len(r.Services.keys) == 0 {
		return fmt.Errorf("service catalog is empty")
	}
	return nil
}

// IsWorkDay reports whether t falls on a work day in the business timezone
func (r BusinessRules) IsWorkDay(t time.Time) bool {
	return r.WorkDays.Contains(t.In(r.Location).Weekday())
}

// Buffer returns the mandatory gap between appointments
func (r BusinessRules) Buffer() time.Duration {
	return time.Duration(r.BufferMinutes) * time.Minute
}

// Today returns local midnight of the day containing now
func (r BusinessRules) Today(now time.Time) time.Time {
	y, m, d := now.In(r.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Location)
}

// ParseDate parses YYYY-MM-DD as local midnight in the business timezone
func (r BusinessRules) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, strings.TrimSpace(s), r.Location)
}

// ParseDateTime combines a YYYY-MM-DD date and an HH:MM time in the business timezone
func (r BusinessRules) ParseDateTime(date, clock string) (time.Time, error) {
	day, err := r.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := types.NewTimeStringFromString(strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, err
	}
	return ts.On(day), nil
}

// DayBounds returns [dayStart, dayEnd) of the given local day
func (r BusinessRules) DayBounds(day time.Time) (time.Time, time.Time) {
	day = day.In(r.Location)
	return r.DayStart.On(day), r.DayEnd.On(day)
}

// WithinHours reports whether [start, end) lies on a work day inside the day bounds
// and does not touch the lunch break
func (r BusinessRules) WithinHours(start, end time.Time) bool {
	if !end.After(start) || !r.IsWorkDay(start) {
		return false
	}
	local := start.In(r.Location)
	dayStart, dayEnd := r.DayBounds(local)
	if start.Before(dayStart) || end.After(dayEnd) {
		return false
	}
	lunchStart, lunchEnd := r.LunchStart.On(local), r.LunchEnd.On(local)
	if lunchStart.Before(lunchEnd) && start.Before(lunchEnd) && end.After(lunchStart) {
		return false
	}
	return true
}
