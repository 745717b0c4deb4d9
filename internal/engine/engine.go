package engine

import (
	"context"
	"time"
)

const (
	// DefaultSlotMinutes is the candidate slot granularity when the rules
	// leave SlotDuration unset.
	DefaultSlotMinutes = 60

	// DefaultLookaheadWeeks bounds recurring-availability expansion.
	DefaultLookaheadWeeks = 4

	// MaxProposals caps the ranked result list.
	MaxProposals = 5
)

// CalendarSource is the single capability consumed from the external
// calendar integration: busy intervals for a time range. Implementations
// own their transport; the engine only sees the result.
type CalendarSource interface {
	BusyIntervals(ctx context.Context, from, to time.Time) ([]BusyInterval, error)
}

// OptimizeSchedule computes a ranked list of non-conflicting candidate
// meeting slots from participant availability, scheduling rules, and an
// optional external calendar.
//
// The engine is a pure function of its inputs: today is passed explicitly
// rather than read from the clock, so identical inputs always yield an
// identical ordered result. It never fails: invalid ranges yield zero
// slots, a nil or erroring calendar source degrades to an empty busy set,
// and an empty result list is a valid outcome.
func OptimizeSchedule(ctx context.Context, availability []Availability, rules Rules, source CalendarSource, today time.Time) []ProposedSlot {
	today = civilDate(today)

	lookahead := rules.LookaheadWeeks
	if lookahead <= 0 {
		lookahead = DefaultLookaheadWeeks
	}
	slotMinutes := rules.SlotDuration
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}

	concrete := ExpandAvailability(availability, today, lookahead)

	// Fail open on calendar errors: scheduling stays usable without busy
	// data, the affected slots just rank as if the calendar were empty.
	var busy []BusyInterval
	if source != nil {
		horizon := today.AddDate(0, 0, lookahead*7)
		if intervals, err := source.BusyIntervals(ctx, today, horizon); err == nil {
			busy = intervals
		}
	}

	candidates := []CandidateSlot{}
	for _, avail := range concrete {
		candidates = append(candidates, FindFreeSlots(avail, busy, slotMinutes)...)
	}

	proposals := ScoreSlots(candidates, rules, busy, today)
	return RankProposals(proposals, MaxProposals)
}
