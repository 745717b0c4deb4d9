package engine

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"
)

var rruleWeekdays = map[Weekday]rrule.Weekday{
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
	Sunday:    rrule.SU,
}

// ExpandAvailability converts a mix of recurring and concrete availability
// entries into concrete per-date records within the lookahead horizon.
//
// Recurring entries sharing a weekday accumulate their time ranges into a
// single record per matching date. Today counts as an occurrence when its
// weekday matches; the comparison is date-only, filtering slots whose time
// of day has already passed is the caller's concern. Concrete dates strictly
// before today are dropped silently.
func ExpandAvailability(entries []Availability, today time.Time, lookaheadWeeks int) []Availability {
	if lookaheadWeeks <= 0 {
		lookaheadWeeks = DefaultLookaheadWeeks
	}
	today = civilDate(today)
	horizon := today.AddDate(0, 0, lookaheadWeeks*7-1)

	byDate := map[time.Time]*Availability{}
	var order []time.Time

	add := func(date time.Time, ranges []TimeRange) {
		rec, ok := byDate[date]
		if !ok {
			rec = &Availability{Date: date}
			byDate[date] = rec
			order = append(order, date)
		}
		rec.Ranges = append(rec.Ranges, ranges...)
	}

	// Group recurring ranges per weekday so one rule covers all entries
	// for that day.
	rangesByDay := map[Weekday][]TimeRange{}
	for _, e := range entries {
		if !e.Recurring() {
			// Civil-date comparison: a date parsed in UTC must not be
			// dropped because today came from a west-of-UTC clock.
			date := civilDate(e.Date)
			if date.Before(today) {
				continue
			}
			add(date, e.Ranges)
			continue
		}
		if _, ok := rruleWeekdays[e.Weekday]; !ok {
			continue
		}
		rangesByDay[e.Weekday] = append(rangesByDay[e.Weekday], e.Ranges...)
	}

	for day := Monday; day <= Sunday; day++ {
		ranges, ok := rangesByDay[day]
		if !ok {
			continue
		}
		rr, err := rrule.NewRRule(rrule.ROption{
			Freq:      rrule.WEEKLY,
			Byweekday: []rrule.Weekday{rruleWeekdays[day]},
			Dtstart:   today,
			Until:     horizon,
		})
		if err != nil {
			continue
		}
		for _, occ := range rr.All() {
			add(civilDate(occ), ranges)
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	out := make([]Availability, 0, len(order))
	for _, date := range order {
		out = append(out, *byDate[date])
	}
	return out
}
