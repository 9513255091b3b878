package streak

// GroupAllComplete reports whether every member's ledger was credited for
// today. A group with no members is never complete.
func GroupAllComplete(memberLast []DayID, today DayID) bool {
	if len(memberLast) == 0 {
		return false
	}
	for _, last := range memberLast {
		if last != today {
			return false
		}
	}
	return true
}

// AdvanceGroup credits the group for today, at most once per day. The
// group streak is additive-only from individual credits; it is never
// reverted by a member later uncompleting a habit.
func AdvanceGroup(groupStreak int, lastGroupDay, today DayID) (int, DayID, bool) {
	if lastGroupDay == today {
		return groupStreak, lastGroupDay, false
	}
	return groupStreak + 1, today, true
}

// RevertGroup undoes a same-day group credit after a linked habit was
// deleted out from under it. Mirrors the personal-ledger revert: decrement
// by one, floored at zero. Groups keep no day history, so the credited-day
// marker is simply cleared.
func RevertGroup(groupStreak int, lastGroupDay, today DayID) (int, DayID, bool) {
	if lastGroupDay != today {
		return groupStreak, lastGroupDay, false
	}
	if groupStreak > 0 {
		groupStreak--
	}
	return groupStreak, "", true
}
