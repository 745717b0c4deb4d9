package engine

import (
	"fmt"
	"sort"
	"time"
)

const (
	baseScore          = 50
	nearTermCloseBonus = 20
	nearTermWeekBonus  = 10
	gapFillBonus       = 15
	gapFillMaxMinutes  = 60
	preferredBonus     = 10
	halfDayBonus       = 25
)

// Reason strings surfaced to participants. The product is French-facing.
const (
	reasonVeryNear  = "Créneau très proche (< 2 jours)"
	reasonNear      = "Créneau proche (< 7 jours)"
	reasonGapAfter  = "Limite les temps morts après un créneau occupé"
	reasonGapBefore = "Limite les temps morts avant un créneau occupé"
	reasonPreferred = "Correspond à vos horaires préférés"
)

// halfDayPeriod is a fixed reference block rewarded when mostly filled by
// contiguous candidate slots.
type halfDayPeriod struct {
	name     string
	startMin int
	endMin   int
}

var halfDayPeriods = []halfDayPeriod{
	{name: "matin", startMin: 9 * 60, endMin: 12 * 60},
	{name: "après-midi", startMin: 14 * 60, endMin: 18 * 60},
}

// ScoreSlots attaches a score and justification list to every candidate.
//
// Every candidate starts at 50; each heuristic is strictly additive and
// independently gated by its rule flag (gap-filling is always on). The final
// score is clamped to [0, 100]. Input order is preserved so the ranker's
// stable sort keeps generation order among ties.
func ScoreSlots(candidates []CandidateSlot, rules Rules, busy []BusyInterval, today time.Time) []ProposedSlot {
	slotMinutes := rules.SlotDuration
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}
	today = civilDate(today)

	proposals := make([]ProposedSlot, 0, len(candidates))
	for _, c := range candidates {
		score := baseScore
		reasons := []string{}

		if rules.PreferNearTerm {
			bonus, reason := nearTermScore(c, today)
			if bonus > 0 {
				score += bonus
				reasons = append(reasons, reason)
			}
		}

		bonus, gapReasons := gapFillScore(c, busy)
		score += bonus
		reasons = append(reasons, gapReasons...)

		if matchesPreferredTime(c, rules.PreferredTimes) {
			score += preferredBonus
			reasons = append(reasons, reasonPreferred)
		}

		if rules.PreferHalfDays {
			if run, period := halfDayRun(c, candidates, slotMinutes); run > 0 {
				score += halfDayBonus
				reasons = append(reasons, fmt.Sprintf("Demi-journée %s (%d créneaux consécutifs)", period, run))
			}
		}

		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}

		proposals = append(proposals, ProposedSlot{
			Start:   c.Start,
			End:     c.End,
			Score:   score,
			Reasons: reasons,
		})
	}
	return proposals
}

// RankProposals sorts proposals by score descending (stable, so equal
// scores keep their generation order) and truncates to the top N.
func RankProposals(proposals []ProposedSlot, topN int) []ProposedSlot {
	if topN <= 0 {
		topN = MaxProposals
	}
	ranked := make([]ProposedSlot, len(proposals))
	copy(ranked, proposals)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// nearTermScore rewards temporal proximity to today. The tiers are mutually
// exclusive; only the highest matching one applies.
func nearTermScore(c CandidateSlot, today time.Time) (int, string) {
	days := int(civilDate(c.Start).Sub(today).Hours() / 24)
	switch {
	case days <= 1:
		return nearTermCloseBonus, reasonVeryNear
	case days <= 7:
		return nearTermWeekBonus, reasonNear
	default:
		return 0, ""
	}
}

// gapFillScore rewards slots adjacent to existing busy time on the same
// date. Each side contributes independently when the gap to the nearest
// busy interval is at most an hour, so a slot sandwiched between two busy
// periods earns the bonus twice.
func gapFillScore(c CandidateSlot, busy []BusyInterval) (int, []string) {
	score := 0
	reasons := []string{}

	var before, after *BusyInterval
	for i := range busy {
		b := busy[i]
		if !sameDate(b.Start, c.Start) {
			continue
		}
		if !b.End.After(c.Start) { // busy ends at or before slot start
			if before == nil || b.End.After(before.End) {
				before = &busy[i]
			}
		}
		if !b.Start.Before(c.End) { // busy starts at or after slot end
			if after == nil || b.Start.Before(after.Start) {
				after = &busy[i]
			}
		}
	}

	if before != nil {
		gap := c.Start.Sub(before.End).Minutes()
		if gap >= 0 && gap <= gapFillMaxMinutes {
			score += gapFillBonus
			reasons = append(reasons, reasonGapAfter)
		}
	}
	if after != nil {
		gap := after.Start.Sub(c.End).Minutes()
		if gap >= 0 && gap <= gapFillMaxMinutes {
			score += gapFillBonus
			reasons = append(reasons, reasonGapBefore)
		}
	}
	return score, reasons
}

// matchesPreferredTime reports whether the slot is fully contained in a
// preferred window declared for its weekday.
func matchesPreferredTime(c CandidateSlot, windows []PreferredWindow) bool {
	day := WeekdayOf(c.Start)
	slotStart := c.Start.Hour()*60 + c.Start.Minute()
	slotEnd := c.End.Hour()*60 + c.End.Minute()
	for _, w := range windows {
		if w.Weekday != day {
			continue
		}
		winStart, err := minuteOfDay(w.Start)
		if err != nil {
			continue
		}
		winEnd, err := minuteOfDay(w.End)
		if err != nil {
			continue
		}
		if slotStart >= winStart && slotEnd <= winEnd {
			return true
		}
	}
	return false
}

// halfDayRun measures the contiguous run of same-date candidates that
// includes c within a recognized half-day period. It returns the run length
// and the period name when the run fills enough of the period to qualify,
// zero otherwise.
//
// The qualification threshold is ceil(period / slot) - 1: one missing edge
// slot is tolerated, so a 09:00-12:00 morning with 60-minute slots needs a
// run of at least 2.
func halfDayRun(c CandidateSlot, all []CandidateSlot, slotMinutes int) (int, string) {
	slotStart := c.Start.Hour()*60 + c.Start.Minute()
	slotEnd := c.End.Hour()*60 + c.End.Minute()

	for _, p := range halfDayPeriods {
		if slotStart < p.startMin || slotEnd > p.endMin {
			continue
		}

		// All same-date candidates fully inside this period.
		inPeriod := []CandidateSlot{}
		for _, other := range all {
			if !sameDate(other.Start, c.Start) {
				continue
			}
			oStart := other.Start.Hour()*60 + other.Start.Minute()
			oEnd := other.End.Hour()*60 + other.End.Minute()
			if oStart >= p.startMin && oEnd <= p.endMin {
				inPeriod = append(inPeriod, other)
			}
		}
		sort.Slice(inPeriod, func(i, j int) bool {
			return inPeriod[i].Start.Before(inPeriod[j].Start)
		})

		run := contiguousRunAround(inPeriod, c)
		periodMinutes := p.endMin - p.startMin
		threshold := (periodMinutes+slotMinutes-1)/slotMinutes - 1
		if threshold < 1 {
			threshold = 1
		}
		if run >= threshold {
			return run, p.name
		}
		return 0, ""
	}
	return 0, ""
}

// contiguousRunAround returns the length of the adjacent-slot run (next
// slot starts at or before the previous one ends) containing c within a
// start-sorted slice.
func contiguousRunAround(sorted []CandidateSlot, c CandidateSlot) int {
	idx := -1
	for i, s := range sorted {
		if s.Start.Equal(c.Start) && s.End.Equal(c.End) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0
	}

	runStart := idx
	for runStart > 0 && !sorted[runStart].Start.After(sorted[runStart-1].End) {
		runStart--
	}
	runEnd := idx
	for runEnd < len(sorted)-1 && !sorted[runEnd+1].Start.After(sorted[runEnd].End) {
		runEnd++
	}
	return runEnd - runStart + 1
}
