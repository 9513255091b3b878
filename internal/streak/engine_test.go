package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	d1 = DayID("2024-03-01")
	d2 = DayID("2024-03-02")
	d3 = DayID("2024-03-03")
	d5 = DayID("2024-03-05")
)

// checkInvariants asserts the ledger invariants that every reachable state
// must satisfy: ordered duplicate-free history, Last == history tail.
func checkInvariants(t *testing.T, l Ledger) {
	t.Helper()
	require.GreaterOrEqual(t, l.Count, 0)
	for i := 1; i < len(l.History); i++ {
		require.Less(t, string(l.History[i-1]), string(l.History[i]), "history out of order")
	}
	if len(l.History) == 0 {
		require.Equal(t, DayID(""), l.Last)
	} else {
		require.Equal(t, l.History[len(l.History)-1], l.Last)
	}
}

func TestApplyCompletionChange_FirstCredit(t *testing.T) {
	l, out := ApplyCompletionChange(Ledger{}, true, d1)
	checkInvariants(t, l)
	assert.Equal(t, Outcome{Count: 1, Changed: true, Credited: true}, out)
	assert.Equal(t, Ledger{Count: 1, Last: d1, History: []DayID{d1}}, l)
}

func TestApplyCompletionChange_ConsecutiveIncrements(t *testing.T) {
	l, _ := ApplyCompletionChange(Ledger{}, true, d1)
	l, out := ApplyCompletionChange(l, true, d2)
	checkInvariants(t, l)
	assert.Equal(t, 2, out.Count)
	assert.True(t, out.Credited)
	assert.Equal(t, []DayID{d1, d2}, l.History)
}

func TestApplyCompletionChange_GapResetsToOne(t *testing.T) {
	l := Ledger{Count: 4, Last: d2, History: []DayID{d1, d2}}
	l, out := ApplyCompletionChange(l, true, d5) // d3, d4 missed
	checkInvariants(t, l)
	assert.Equal(t, 1, out.Count)
	assert.True(t, out.Credited)
	assert.Equal(t, []DayID{d1, d2, d5}, l.History)
	assert.Equal(t, d5, l.Last)
}

func TestApplyCompletionChange_SameDayIdempotent(t *testing.T) {
	l, _ := ApplyCompletionChange(Ledger{}, true, d1)
	before := l

	l, out := ApplyCompletionChange(l, true, d1)
	checkInvariants(t, l)
	assert.False(t, out.Changed)
	assert.False(t, out.Credited)
	assert.Equal(t, before, l, "second same-day credit must change nothing")
}

func TestApplyCompletionChange_RevertInvertsCredit(t *testing.T) {
	pre := Ledger{Count: 3, Last: d2, History: []DayID{d1, d2}}
	credited, out := ApplyCompletionChange(pre, true, d3)
	require.True(t, out.Credited)
	require.Equal(t, 4, credited.Count)

	reverted, out := ApplyCompletionChange(credited, false, d3)
	checkInvariants(t, reverted)
	assert.True(t, out.Changed)
	assert.False(t, out.Credited)
	assert.Equal(t, pre, reverted, "revert must restore the pre-credit state")
}

func TestApplyCompletionChange_RevertFloorsAtZero(t *testing.T) {
	// Count already zero but today credited in history; decrement floors.
	l := Ledger{Count: 0, Last: d1, History: []DayID{d1}}
	l, out := ApplyCompletionChange(l, false, d1)
	checkInvariants(t, l)
	assert.True(t, out.Changed)
	assert.Equal(t, 0, l.Count)
	assert.Empty(t, l.History)
	assert.Equal(t, DayID(""), l.Last)
}

func TestApplyCompletionChange_NothingToRevert(t *testing.T) {
	l := Ledger{Count: 2, Last: d1, History: []DayID{d1}}
	got, out := ApplyCompletionChange(l, false, d2)
	assert.False(t, out.Changed)
	assert.Equal(t, l, got)
}

func TestApplyCompletionChange_SingleHabitScenario(t *testing.T) {
	// One habit: complete D1, complete D2, unmark on D2.
	l, _ := ApplyCompletionChange(Ledger{}, true, d1)
	assert.Equal(t, Ledger{Count: 1, Last: d1, History: []DayID{d1}}, l)

	l, _ = ApplyCompletionChange(l, true, d2)
	assert.Equal(t, Ledger{Count: 2, Last: d2, History: []DayID{d1, d2}}, l)

	l, _ = ApplyCompletionChange(l, false, d2)
	checkInvariants(t, l)
	assert.Equal(t, 1, l.Count)
	assert.Equal(t, []DayID{d1}, l.History)
	assert.Equal(t, d1, l.Last)
}

func TestApplyHabitCreated_RevertsSameDayCredit(t *testing.T) {
	// Two habits complete on D, credited; a third incomplete habit appears.
	l := Ledger{Count: 1, Last: d1, History: []DayID{d1}}
	l, out := ApplyHabitCreated(l, d1)
	checkInvariants(t, l)
	assert.True(t, out.Changed)
	assert.Equal(t, 0, l.Count)
	assert.Equal(t, DayID(""), l.Last)
	assert.Empty(t, l.History)
}

func TestApplyHabitCreated_NoCreditToday(t *testing.T) {
	l := Ledger{Count: 5, Last: d1, History: []DayID{d1}}
	got, out := ApplyHabitCreated(l, d2)
	assert.False(t, out.Changed)
	assert.Equal(t, l, got)
}

func TestApplyHabitDeleted_RemainingStillComplete(t *testing.T) {
	// Credited today with two complete habits; deleting one is a no-op and
	// must not re-increment.
	l := Ledger{Count: 3, Last: d2, History: []DayID{d1, d2}}
	got, out := ApplyHabitDeleted(l, false, true, d2)
	assert.False(t, out.Changed)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, l, got)
}

func TestApplyHabitDeleted_RemainingIncompleteReverts(t *testing.T) {
	l := Ledger{Count: 2, Last: d2, History: []DayID{d1, d2}}
	got, out := ApplyHabitDeleted(l, false, false, d2)
	checkInvariants(t, got)
	assert.True(t, out.Changed)
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, d1, got.Last)
}

func TestApplyHabitDeleted_LastHabitGoneReverts(t *testing.T) {
	l := Ledger{Count: 1, Last: d1, History: []DayID{d1}}
	got, out := ApplyHabitDeleted(l, true, false, d1)
	checkInvariants(t, got)
	assert.True(t, out.Changed)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, DayID(""), got.Last)
}

func TestApplyHabitDeleted_RecoveryCredit(t *testing.T) {
	// Yesterday credited; today blocked only by the habit being deleted.
	l := Ledger{Count: 1, Last: d1, History: []DayID{d1}}
	got, out := ApplyHabitDeleted(l, false, true, d2)
	checkInvariants(t, got)
	assert.True(t, out.Credited)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, d2, got.Last)
	assert.Equal(t, []DayID{d1, d2}, got.History)
}

func TestApplyHabitDeleted_RecoveryCreditFreshLedger(t *testing.T) {
	got, out := ApplyHabitDeleted(Ledger{}, false, true, d2)
	checkInvariants(t, got)
	assert.True(t, out.Credited)
	assert.Equal(t, 1, got.Count)
}

func TestApplyHabitDeleted_NoRecoveryAcrossGap(t *testing.T) {
	// Broken streak (last credit three days ago): deleting the blocking
	// habit must not resurrect it.
	l := Ledger{Count: 2, Last: d2, History: []DayID{d1, d2}}
	got, out := ApplyHabitDeleted(l, false, true, d5)
	assert.False(t, out.Changed)
	assert.Equal(t, l, got)
}

func TestApplyHabitDeleted_NothingHappens(t *testing.T) {
	l := Ledger{Count: 2, Last: d2, History: []DayID{d1, d2}}
	got, out := ApplyHabitDeleted(l, false, false, d3)
	assert.False(t, out.Changed)
	assert.Equal(t, l, got)
}

func TestExpire(t *testing.T) {
	l := Ledger{Count: 4, Last: d2, History: []DayID{d1, d2}}

	got, changed := Expire(l, d2)
	assert.False(t, changed, "credited today: still live")
	assert.Equal(t, l, got)

	got, changed = Expire(l, d3)
	assert.False(t, changed, "credited yesterday: still extendable")
	assert.Equal(t, l, got)

	got, changed = Expire(l, d5)
	assert.True(t, changed)
	assert.Equal(t, 0, got.Count)
	assert.Equal(t, l.History, got.History, "history is never rewritten")
	assert.Equal(t, l.Last, got.Last)

	_, changed = Expire(Ledger{}, d5)
	assert.False(t, changed)
}

func TestHistoryMonotonicity_RandomishWalk(t *testing.T) {
	// Drive the engine through a mixed sequence of triggers and check the
	// invariants at every step.
	l := Ledger{}
	days := []DayID{d1, d2, d3, d5}
	for _, day := range days {
		var out Outcome
		l, out = ApplyCompletionChange(l, true, day)
		checkInvariants(t, l)
		assert.True(t, out.Credited)

		l, _ = ApplyHabitCreated(l, day) // revert
		checkInvariants(t, l)

		l, out = ApplyCompletionChange(l, true, day) // re-credit
		checkInvariants(t, l)
		assert.True(t, out.Credited)
	}
	assert.Equal(t, []DayID{d1, d2, d3, d5}, l.History)
	// d5 followed a gap, so the run restarted there.
	assert.Equal(t, 1, l.Count)
}
