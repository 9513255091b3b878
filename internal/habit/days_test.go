package habit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDays(t *testing.T) {
	got, err := normalizeDays([]string{"2024-03-02", "2024-03-01", "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, got, "deduped and sorted")

	got, err = normalizeDays(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNormalizeDays_RejectsBadInput(t *testing.T) {
	for _, bad := range [][]string{
		{"2024-03-02", "yesterday"},
		{"2024-3-2"},
		{"2024-03-02T10:00:00Z"},
	} {
		_, err := normalizeDays(bad)
		assert.Error(t, err, "expected error for %v", bad)
	}
}
