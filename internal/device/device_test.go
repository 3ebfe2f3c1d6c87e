package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemStopwatchSaturatesAtCap(t *testing.T) {
	base := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	now := base
	sw := &SystemStopwatch{now: func() time.Time { return now }}

	_, err := sw.Elapsed()
	require.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, sw.Start(time.Hour))
	now = base.Add(1500 * time.Millisecond)
	d, err := sw.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	now = base.Add(3 * time.Hour)
	d, err = sw.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	require.NoError(t, sw.Cancel())
	_, err = sw.Elapsed()
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestSystemStopwatchRestarts(t *testing.T) {
	base := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	now := base
	sw := &SystemStopwatch{now: func() time.Time { return now }}

	require.NoError(t, sw.Start(time.Hour))
	now = now.Add(time.Second)
	require.NoError(t, sw.Cancel())

	require.NoError(t, sw.Start(time.Hour))
	now = now.Add(20 * time.Millisecond)
	d, err := sw.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, d)
}

func TestSetValidate(t *testing.T) {
	assert.EqualError(t, Set{}.Validate(), "device set: missing LED")
}
