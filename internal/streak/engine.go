package streak

// Outcome reports what a transition did to the ledger.
type Outcome struct {
	Count    int
	Changed  bool
	Credited bool // true only on a successful same-day credit
}

func outcome(l Ledger, changed, credited bool) Outcome {
	return Outcome{Count: l.Count, Changed: changed, Credited: credited}
}

// ApplyCompletionChange re-evaluates today after a habit's completion set
// was replaced. allComplete must already account for the updated habit
// (see AllComplete's override argument).
func ApplyCompletionChange(l Ledger, allComplete bool, today DayID) (Ledger, Outcome) {
	switch {
	case allComplete && l.Last != today:
		l = l.credit(today)
		return l, outcome(l, true, true)
	case !allComplete && l.Last == today:
		// A completion was just removed from an already-credited day.
		l = l.revert(today)
		return l, outcome(l, true, false)
	default:
		// Already credited, or nothing to revert.
		return l, outcome(l, false, false)
	}
}

// ApplyHabitCreated handles a new, necessarily-incomplete habit joining the
// set. A credit earned earlier today no longer covers all habits, so it is
// reverted; otherwise nothing changes.
func ApplyHabitCreated(l Ledger, today DayID) (Ledger, Outcome) {
	if l.Last != today {
		return l, outcome(l, false, false)
	}
	l = l.revert(today)
	return l, outcome(l, true, false)
}

// ApplyHabitDeleted re-evaluates today over the habits that remain.
// remainingComplete is AllComplete over the surviving set (false when the
// set is empty).
func ApplyHabitDeleted(l Ledger, remainingEmpty, remainingComplete bool, today DayID) (Ledger, Outcome) {
	if l.Last == today {
		if remainingComplete {
			// The deleted habit was not what made today complete.
			return l, outcome(l, false, false)
		}
		l = l.revert(today)
		return l, outcome(l, true, false)
	}
	// Recovery credit: the deleted habit was the only incomplete one. Only
	// honored when continuity holds, so deleting a habit cannot resurrect
	// an unrelated broken streak.
	if !remainingEmpty && remainingComplete {
		if l.Last == "" || l.Last == PreviousDay(today) {
			l = l.credit(today)
			return l, outcome(l, true, true)
		}
	}
	return l, outcome(l, false, false)
}

// Expire zeroes the surfaced run length once the chain is stale (the last
// credited day is neither today nor yesterday). History and Last are kept;
// closed days are never rewritten.
func Expire(l Ledger, today DayID) (Ledger, bool) {
	if l.Count == 0 || l.Last == today || l.Last == PreviousDay(today) {
		return l, false
	}
	l.Count = 0
	return l, true
}
