package streak

// Ledger is the per-user streak state as a plain value. The persistence
// layer maps it to and from its stored row; all mutation goes through the
// transition functions in engine.go so the invariants live in one place:
//
//   - History is strictly increasing and duplicate-free.
//   - Last equals the final History entry, or "" when History is empty.
//   - Count never goes below zero and moves only in lock-step with the
//     most recent History entry.
type Ledger struct {
	Count   int
	Last    DayID // "" when the user has never been credited
	History []DayID
}

// credit marks today as fully complete. Consecutive with the previous
// calendar day extends the run; anything else starts a new run at 1.
func (l Ledger) credit(today DayID) Ledger {
	if l.Last == PreviousDay(today) {
		l.Count++
	} else {
		l.Count = 1
	}
	l.Last = today
	if n := len(l.History); n == 0 || l.History[n-1] != today {
		history := make([]DayID, n, n+1)
		copy(history, l.History)
		l.History = append(history, today)
	}
	return l
}

// revert undoes today's credit. Only the current day is ever removed;
// closed days are immutable.
func (l Ledger) revert(today DayID) Ledger {
	if n := len(l.History); n > 0 && l.History[n-1] == today {
		l.History = l.History[:n-1:n-1]
	}
	if l.Count > 0 {
		l.Count--
	}
	if n := len(l.History); n > 0 {
		l.Last = l.History[n-1]
	} else {
		l.Last = ""
	}
	return l
}
