package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextReminderRun(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 09:00 IST on 2024-03-02
	now := time.Date(2024, 3, 2, 9, 0, 0, 0, ist)

	run, err := NextReminderRun(now, "20:30", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 20, 30, 0, 0, ist), run, "still ahead today")

	run, err = NextReminderRun(now, "08:00", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 8, 0, 0, 0, ist), run, "already past, rolls to tomorrow")

	run, err = NextReminderRun(now, "09:00", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 9, 0, 0, 0, ist), run, "exact now rolls to tomorrow")
}

func TestNextReminderRun_CrossZoneNow(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 18:00 UTC is 23:30 IST, so a 06:00 reminder lands the next IST day.
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	run, err := NextReminderRun(now, "06:00", ist)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 3, 6, 0, 0, 0, ist).Unix(), run.Unix())
}

func TestNextReminderRun_InvalidTime(t *testing.T) {
	ist, _ := time.LoadLocation("Asia/Kolkata")
	for _, bad := range []string{"", "25:00", "9am", "09:99"} {
		_, err := NextReminderRun(time.Now(), bad, ist)
		assert.Error(t, err, "expected error for %q", bad)
	}
}
