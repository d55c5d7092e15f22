package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShift_Window(t *testing.T) {
	day := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	start, end, err := Shift{Name: "Morning", StartTime: "08:00", EndTime: "16:00"}.Window(day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC), end)

	night := Shift{Name: "Night", StartTime: "22:00", EndTime: "06:00"}
	start, end, err = night.Window(day)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 14, 22, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 15, 6, 0, 0, 0, time.UTC), end)
	assert.True(t, night.IsOvernight())

	_, _, err = Shift{StartTime: "8am", EndTime: "16:00"}.Window(day)
	assert.Error(t, err)
}
