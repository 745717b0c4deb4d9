package engine

// FindFreeSlots slices one concrete availability record into fixed-duration
// candidate slots and drops every slot that overlaps a busy interval on the
// same date.
//
// Slicing steps by slotMinutes from each range's start and only emits slots
// fitting entirely within the range, so a window of duration D yields
// floor(D/slotMinutes) candidates before filtering. Malformed or inverted
// ranges yield zero slots, not an error.
func FindFreeSlots(avail Availability, busy []BusyInterval, slotMinutes int) []CandidateSlot {
	if slotMinutes <= 0 {
		slotMinutes = DefaultSlotMinutes
	}
	if avail.Recurring() {
		return nil
	}

	slots := []CandidateSlot{}
	seen := map[int]bool{}
	for _, r := range avail.Ranges {
		startMin, err := minuteOfDay(r.Start)
		if err != nil {
			continue
		}
		endMin, err := minuteOfDay(r.End)
		if err != nil {
			continue
		}
		for m := startMin; m+slotMinutes <= endMin; m += slotMinutes {
			// Merged records repeat ranges when several participants
			// declared the same window; each slot is emitted once.
			if seen[m] {
				continue
			}
			slot := CandidateSlot{
				Start: atMinute(avail.Date, m),
				End:   atMinute(avail.Date, m+slotMinutes),
			}
			if !conflictsWithBusy(slot, busy) {
				seen[m] = true
				slots = append(slots, slot)
			}
		}
	}
	return slots
}

// conflictsWithBusy applies the half-open overlap test against busy
// intervals whose start falls on the slot's date. Busy time on other dates
// never affects the slot.
func conflictsWithBusy(slot CandidateSlot, busy []BusyInterval) bool {
	for _, b := range busy {
		if !sameDate(b.Start, slot.Start) {
			continue
		}
		if slot.Start.Before(b.End) && slot.End.After(b.Start) {
			return true
		}
	}
	return false
}
