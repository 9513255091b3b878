package streak

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupAllComplete(t *testing.T) {
	assert.False(t, GroupAllComplete(nil, d2), "memberless group never completes")
	assert.True(t, GroupAllComplete([]DayID{d2, d2}, d2))
	assert.False(t, GroupAllComplete([]DayID{d2, d1}, d2))
	assert.False(t, GroupAllComplete([]DayID{d2, ""}, d2))
}

func TestAdvanceGroup_OncePerDay(t *testing.T) {
	streak, last, changed := AdvanceGroup(0, "", d2)
	assert.True(t, changed)
	assert.Equal(t, 1, streak)
	assert.Equal(t, d2, last)

	// Second member's credit lands the same day: no double count.
	streak, last, changed = AdvanceGroup(streak, last, d2)
	assert.False(t, changed)
	assert.Equal(t, 1, streak)
	assert.Equal(t, d2, last)

	streak, last, changed = AdvanceGroup(streak, last, d3)
	assert.True(t, changed)
	assert.Equal(t, 2, streak)
	assert.Equal(t, d3, last)
}

func TestRevertGroup(t *testing.T) {
	// Only a same-day credit can be undone.
	streak, last, changed := RevertGroup(3, d2, d2)
	assert.True(t, changed)
	assert.Equal(t, 2, streak)
	assert.Equal(t, DayID(""), last)

	streak, last, changed = RevertGroup(3, d1, d2)
	assert.False(t, changed)
	assert.Equal(t, 3, streak)
	assert.Equal(t, d1, last)

	streak, _, changed = RevertGroup(0, d2, d2)
	assert.True(t, changed)
	assert.Equal(t, 0, streak, "floored at zero")
}
