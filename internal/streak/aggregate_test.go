package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func habitDone(id uint64, days ...DayID) HabitCompletions {
	return HabitCompletions{HabitID: id, Days: days}
}

func TestAllComplete_EmptySetNeverComplete(t *testing.T) {
	assert.False(t, AllComplete(nil, "2024-03-02", nil))
	assert.False(t, AllComplete([]HabitCompletions{}, "2024-03-02", nil))
}

func TestAllComplete(t *testing.T) {
	day := DayID("2024-03-02")
	habits := []HabitCompletions{
		habitDone(1, "2024-03-01", day),
		habitDone(2, day),
	}
	assert.True(t, AllComplete(habits, day, nil))

	habits[1] = habitDone(2, "2024-03-01")
	assert.False(t, AllComplete(habits, day, nil))
}

func TestAllComplete_Override(t *testing.T) {
	day := DayID("2024-03-02")
	habits := []HabitCompletions{
		habitDone(1, day),
		habitDone(2), // stored state incomplete
	}
	assert.False(t, AllComplete(habits, day, nil))

	// "What if habit 2's update lands" - evaluated without a second write.
	assert.True(t, AllComplete(habits, day, &Override{HabitID: 2, Days: []DayID{day}}))

	// Override can also remove a stored completion.
	habits[1] = habitDone(2, day)
	assert.False(t, AllComplete(habits, day, &Override{HabitID: 2, Days: nil}))

	// Override for a habit outside the set changes nothing.
	assert.True(t, AllComplete(habits, day, &Override{HabitID: 99, Days: nil}))
}
