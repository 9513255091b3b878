package streak

// HabitCompletions is the slice of a habit the aggregator cares about:
// its identity and the set of days it has been marked done.
type HabitCompletions struct {
	HabitID uint64
	Days    []DayID
}

// Override substitutes one habit's completion set during evaluation, so a
// trigger can ask "would all habits be complete if this update applied"
// without writing first.
type Override struct {
	HabitID uint64
	Days    []DayID
}

// AllComplete reports whether every habit has day in its completion set.
// An empty habit set is never all-complete.
func AllComplete(habits []HabitCompletions, day DayID, override *Override) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		days := h.Days
		if override != nil && override.HabitID == h.HabitID {
			days = override.Days
		}
		if !containsDay(days, day) {
			return false
		}
	}
	return true
}

func containsDay(days []DayID, day DayID) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
