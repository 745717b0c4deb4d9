package engine

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a fixed Monday-first day-of-week enumeration. Weekday-to-date
// resolution never compares locale-formatted names; all localized input goes
// through ParseWeekday once at the boundary.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[string]Weekday{
	"monday": Monday, "mon": Monday, "lundi": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "mardi": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday, "mercredi": Wednesday,
	"thursday": Thursday, "thu": Thursday, "jeudi": Thursday,
	"friday": Friday, "fri": Friday, "vendredi": Friday,
	"saturday": Saturday, "sat": Saturday, "samedi": Saturday,
	"sunday": Sunday, "sun": Sunday, "dimanche": Sunday,
}

// ParseWeekday resolves an English or French weekday name (full or
// three-letter abbreviation) to its enum value.
func ParseWeekday(s string) (Weekday, error) {
	if d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

// WeekdayOf converts a calendar date to the Monday-first enumeration.
func WeekdayOf(t time.Time) Weekday {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // Sunday
	}
	return Weekday(wd)
}

func (d Weekday) String() string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return names[d-1]
}

// TimeRange is a wall-clock time-of-day range in HH:MM format, half-open
// [Start, End). A range with Start >= End is invalid and yields no slots.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Availability is one participant-declared availability window. Recurring
// entries carry a Weekday and a zero Date; concrete entries carry a Date
// (midnight, date only) and a zero Weekday.
type Availability struct {
	Weekday Weekday     `json:"weekday,omitempty"`
	Date    time.Time   `json:"date"`
	Ranges  []TimeRange `json:"ranges"`
}

// Recurring reports whether the entry recurs by weekday instead of naming a
// concrete date.
func (a Availability) Recurring() bool {
	return a.Date.IsZero()
}

// BusyInterval is an externally-sourced occupied period, half-open
// [Start, End). Supplied per optimization call, never mutated or cached.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PreferredWindow is a weekday-bound time-of-day window that earns a flat
// bonus for slots fully contained in it.
type PreferredWindow struct {
	Weekday Weekday `json:"weekday"`
	Start   string  `json:"start"`
	End     string  `json:"end"`
}

// Rules configures slot generation and scoring. All fields are optional;
// the zero value yields 60-minute slots over a 4-week horizon with only the
// always-on heuristics applied.
type Rules struct {
	SlotDuration   int               `json:"slot_duration_minutes,omitempty"`
	LookaheadWeeks int               `json:"lookahead_weeks,omitempty"`
	PreferNearTerm bool              `json:"prefer_near_term,omitempty"`
	PreferHalfDays bool              `json:"prefer_half_days,omitempty"`
	PreferredTimes []PreferredWindow `json:"preferred_times,omitempty"`

	// Reserved for inter-slot spacing constraints. Declared and persisted
	// but not consulted by any scoring heuristic.
	MinLatencyMinutes int `json:"min_latency_minutes,omitempty"`
	MaxLatencyMinutes int `json:"max_latency_minutes,omitempty"`
}

// CandidateSlot is a fixed-duration span carved out of an availability
// window, not yet scored. Ephemeral: created fresh per call.
type CandidateSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ProposedSlot is a candidate that survived busy-interval filtering,
// scored 0-100 with human-readable justifications.
type ProposedSlot struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Score   int       `json:"score"`
	Reasons []string  `json:"reasons"`
}

// minuteOfDay parses an HH:MM string to minutes since midnight.
func minuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// atMinute places a minutes-since-midnight offset on a calendar date.
func atMinute(date time.Time, m int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, date.Location())
}

// civilDate reduces a timestamp to its calendar date at midnight UTC, the
// engine's single civil time reference. Callers may hand us dates parsed in
// UTC and a "today" read from a local clock; comparing them as instants
// would shift civil dates across timezone offsets.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sameDate reports whether two timestamps fall on the same calendar date.
func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
