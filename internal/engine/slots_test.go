package engine

import (
	"testing"
	"time"
)

func busyAt(date time.Time, start, end string) BusyInterval {
	s, _ := minuteOfDay(start)
	e, _ := minuteOfDay(end)
	return BusyInterval{Start: atMinute(date, s), End: atMinute(date, e)}
}

func TestFindFreeSlotsSlicing(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		ranges      []TimeRange
		slotMinutes int
		wantStarts  []string
	}{
		{
			name:        "three hour window yields three hourly slots",
			ranges:      []TimeRange{{Start: "09:00", End: "12:00"}},
			slotMinutes: 60,
			wantStarts:  []string{"09:00", "10:00", "11:00"},
		},
		{
			name:        "partial trailing slot is not emitted",
			ranges:      []TimeRange{{Start: "09:00", End: "10:30"}},
			slotMinutes: 60,
			wantStarts:  []string{"09:00"},
		},
		{
			name:        "thirty minute granularity",
			ranges:      []TimeRange{{Start: "09:00", End: "10:30"}},
			slotMinutes: 30,
			wantStarts:  []string{"09:00", "09:30", "10:00"},
		},
		{
			name:        "inverted range yields nothing",
			ranges:      []TimeRange{{Start: "12:00", End: "09:00"}},
			slotMinutes: 60,
			wantStarts:  []string{},
		},
		{
			name:        "zero length range yields nothing",
			ranges:      []TimeRange{{Start: "09:00", End: "09:00"}},
			slotMinutes: 60,
			wantStarts:  []string{},
		},
		{
			name:        "malformed range is skipped, others survive",
			ranges:      []TimeRange{{Start: "late", End: "later"}, {Start: "14:00", End: "15:00"}},
			slotMinutes: 60,
			wantStarts:  []string{"14:00"},
		},
		{
			name:        "identical ranges from two participants emit each slot once",
			ranges:      []TimeRange{{Start: "09:00", End: "12:00"}, {Start: "09:00", End: "12:00"}},
			slotMinutes: 60,
			wantStarts:  []string{"09:00", "10:00", "11:00"},
		},
		{
			name:        "overlapping ranges do not repeat shared slots",
			ranges:      []TimeRange{{Start: "09:00", End: "12:00"}, {Start: "10:00", End: "12:00"}},
			slotMinutes: 60,
			wantStarts:  []string{"09:00", "10:00", "11:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			avail := Availability{Date: date, Ranges: tt.ranges}
			slots := FindFreeSlots(avail, nil, tt.slotMinutes)

			if len(slots) != len(tt.wantStarts) {
				t.Fatalf("got %d slots, want %d", len(slots), len(tt.wantStarts))
			}
			for i, slot := range slots {
				if got := slot.Start.Format("15:04"); got != tt.wantStarts[i] {
					t.Errorf("slot %d starts at %s, want %s", i, got, tt.wantStarts[i])
				}
				if slot.End.Sub(slot.Start) != time.Duration(tt.slotMinutes)*time.Minute {
					t.Errorf("slot %d has duration %v", i, slot.End.Sub(slot.Start))
				}
			}
		})
	}
}

func TestFindFreeSlotsBusyExclusion(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	avail := Availability{Date: date, Ranges: []TimeRange{{Start: "09:00", End: "12:00"}}}

	// 09:30-10:30 overlaps both the 09:00 and the 10:00 slot.
	busy := []BusyInterval{busyAt(date, "09:30", "10:30")}

	slots := FindFreeSlots(avail, busy, 60)
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1", len(slots))
	}
	if got := slots[0].Start.Format("15:04"); got != "11:00" {
		t.Errorf("surviving slot starts at %s, want 11:00", got)
	}
}

func TestFindFreeSlotsIgnoresOtherDates(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	otherDay := date.AddDate(0, 0, 1)

	avail := Availability{Date: date, Ranges: []TimeRange{{Start: "09:00", End: "12:00"}}}
	busy := []BusyInterval{busyAt(otherDay, "09:00", "12:00")}

	slots := FindFreeSlots(avail, busy, 60)
	if len(slots) != 3 {
		t.Errorf("busy time on another date filtered slots: got %d, want 3", len(slots))
	}
}

func TestFindFreeSlotsAdjacentBusyIsNotConflict(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	avail := Availability{Date: date, Ranges: []TimeRange{{Start: "09:00", End: "10:00"}}}

	// Half-open intervals: busy ending exactly at 09:00 does not touch the
	// 09:00 slot, and busy starting at 10:00 does not either.
	busy := []BusyInterval{
		busyAt(date, "08:00", "09:00"),
		busyAt(date, "10:00", "11:00"),
	}

	slots := FindFreeSlots(avail, busy, 60)
	if len(slots) != 1 {
		t.Errorf("adjacent busy intervals should not conflict: got %d slots", len(slots))
	}
}
