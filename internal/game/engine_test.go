package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/morse/internal/device/sim"
	"github.com/robalobadob/morse/internal/signal"
)

const (
	S = signal.Short
	L = signal.Long
)

func newEngine(t *testing.T, values []uint32, opts ...Option) (*Engine, *sim.Rig) {
	t.Helper()
	rig := sim.New(values...)
	e, err := New(rig.Set(), opts...)
	require.NoError(t, err)
	return e, rig
}

// hold scripts a press of d, 100ms after the previous one.
func hold(d time.Duration) sim.Hold {
	return sim.Hold{After: 100 * time.Millisecond, For: d}
}

func TestNewStartsAtLevelOne(t *testing.T) {
	e, rig := newEngine(t, []uint32{7})
	assert.Equal(t, 1, e.Level())
	assert.Equal(t, []signal.Symbol{L}, e.Sequence())
	assert.Equal(t, PhaseIdle, e.Phase())
	assert.Equal(t, 1, rig.Entropy.Draws)
}

func TestNewRejectsIncompleteDeviceSet(t *testing.T) {
	rig := sim.New()
	set := rig.Set()
	set.Timer = nil
	_, err := New(set)
	require.Error(t, err)
}

func TestResetIsIdempotentInShape(t *testing.T) {
	e, rig := newEngine(t, []uint32{0, 1, 1, 0})
	_, err := e.Advance()
	require.NoError(t, err)

	e.Reset()
	assert.Equal(t, 1, e.Level())
	assert.Len(t, e.Sequence(), 1)

	e.Reset()
	assert.Equal(t, 1, e.Level())
	assert.Len(t, e.Sequence(), 1)
	assert.Equal(t, 4, rig.Entropy.Draws, "each reset draws one symbol")
}

func TestAdvanceOnlyAppends(t *testing.T) {
	e, _ := newEngine(t, []uint32{1, 0, 0, 1, 1})
	prev := e.Sequence()
	for want := 2; want <= 5; want++ {
		level, err := e.Advance()
		require.NoError(t, err)
		assert.Equal(t, want, level)
		assert.Equal(t, want, e.Level())

		seq := e.Sequence()
		require.Len(t, seq, want)
		assert.Equal(t, prev, seq[:want-1], "existing symbols are untouched")
		prev = seq
	}
	assert.Equal(t, []signal.Symbol{L, S, S, L, L}, prev)
}

func TestEvenEntropyBuildsShortSequence(t *testing.T) {
	e, _ := newEngine(t, []uint32{0, 2, 4, 6, 8})
	assert.Equal(t, []signal.Symbol{S}, e.Sequence())
	for i := 0; i < 3; i++ {
		_, err := e.Advance()
		require.NoError(t, err)
	}
	assert.Equal(t, []signal.Symbol{S, S, S, S}, e.Sequence())
	assert.Equal(t, 4, e.Level())
}

func TestAdvanceFailsAtCapacity(t *testing.T) {
	e, rig := newEngine(t, []uint32{1})
	for e.Level() < MaxLevel {
		_, err := e.Advance()
		require.NoError(t, err)
	}
	draws := rig.Entropy.Draws
	before := e.Sequence()

	level, err := e.Advance()
	require.ErrorIs(t, err, ErrSequenceFull)
	assert.Equal(t, MaxLevel, level)
	assert.Equal(t, MaxLevel, e.Level())
	assert.Equal(t, before, e.Sequence())
	assert.Equal(t, draws, rig.Entropy.Draws, "no entropy consumed on failure")

	e.Reset()
	assert.Equal(t, 1, e.Level())
}

func TestAttemptPlaysBackThenAcceptsMatchingHolds(t *testing.T) {
	e, rig := newEngine(t, []uint32{0, 1})
	_, err := e.Advance()
	require.NoError(t, err)
	require.Equal(t, []signal.Symbol{S, L}, e.Sequence())

	rig.Button.Queue(hold(300*time.Millisecond), hold(1500*time.Millisecond))
	res, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, res)

	require.Len(t, rig.LED.Pulses, 2)
	assert.Equal(t, sim.Pulse{At: 0, For: 500 * time.Millisecond}, rig.LED.Pulses[0])
	assert.Equal(t, sim.Pulse{At: 750 * time.Millisecond, For: 2 * time.Second}, rig.LED.Pulses[1])
	assert.Equal(t, 2, rig.Timer.Starts)
	assert.Equal(t, 2, rig.Timer.Cancels)
	assert.False(t, rig.LED.On())
	assert.Equal(t, 2, e.Level(), "attempt does not change the level")
}

func TestAttemptIgnoresBounce(t *testing.T) {
	e, rig := newEngine(t, []uint32{0})
	require.Equal(t, []signal.Symbol{S}, e.Sequence())

	rig.Button.Queue(hold(5*time.Millisecond), hold(50*time.Millisecond))
	res, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, res)
	assert.Equal(t, 2, rig.Timer.Starts, "the bounce was sampled and discarded")
	assert.False(t, rig.Button.Pending())
}

func TestAttemptRejectsWrongSymbols(t *testing.T) {
	e, rig := newEngine(t, []uint32{1, 0})
	_, err := e.Advance()
	require.NoError(t, err)
	require.Equal(t, []signal.Symbol{L, S}, e.Sequence())

	rig.Button.Queue(hold(200*time.Millisecond), hold(200*time.Millisecond))
	res, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultIncorrect, res)

	e.Reset()
	assert.Equal(t, 1, e.Level())
	assert.Len(t, e.Sequence(), 1)
}

func TestAttemptCollectsExactlyTheSequenceLength(t *testing.T) {
	e, rig := newEngine(t, []uint32{0})
	rig.Button.Queue(hold(100*time.Millisecond), hold(100*time.Millisecond))

	res, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, res)
	assert.Equal(t, 1, rig.Timer.Starts)
	assert.True(t, rig.Button.Pending(), "second hold is left for the next round")
}

func TestHoldIndicatorLightsDuringLongHold(t *testing.T) {
	e, rig := newEngine(t, []uint32{1})
	rig.Button.Queue(hold(2500 * time.Millisecond))

	res, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, res)

	require.Len(t, rig.LED.Pulses, 2)
	indicator := rig.LED.Pulses[1]
	assert.Equal(t, 499*time.Millisecond, indicator.For)
	assert.True(t, rig.Button.Holding(indicator.At))
	assert.False(t, rig.LED.On(), "indicator is cleared on release")
}

func TestHoldIndicatorCanBeDisabled(t *testing.T) {
	e, rig := newEngine(t, []uint32{1}, WithHoldIndicator(0))
	rig.Button.Queue(hold(2500 * time.Millisecond))

	_, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Len(t, rig.LED.Pulses, 1)
}

func TestHoldBeyondSafetyCapIsLong(t *testing.T) {
	e, rig := newEngine(t, []uint32{1},
		WithPollInterval(time.Second),
		WithSafetyCap(time.Hour),
		WithHoldIndicator(0),
	)
	rig.Button.Queue(sim.Hold{After: time.Second, For: 2 * time.Hour})

	res, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResultCorrect, res)
}

func TestJudge(t *testing.T) {
	tests := []struct {
		name string
		want []signal.Symbol
		got  []signal.Symbol
		res  Result
	}{
		{name: "equal", want: []signal.Symbol{S, L}, got: []signal.Symbol{S, L}, res: ResultCorrect},
		{name: "swapped", want: []signal.Symbol{S, L}, got: []signal.Symbol{L, S}, res: ResultIncorrect},
		{name: "shorter", want: []signal.Symbol{S, L}, got: []signal.Symbol{S}, res: ResultIncorrect},
		{name: "longer", want: []signal.Symbol{S}, got: []signal.Symbol{S, S}, res: ResultIncorrect},
		{name: "both empty", res: ResultCorrect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.res, Judge(tt.want, tt.got))
		})
	}
}

func TestAttemptSurfacesCapabilityFailures(t *testing.T) {
	fault := errors.New("gpio fault")

	t.Run("led", func(t *testing.T) {
		e, rig := newEngine(t, []uint32{0})
		rig.LED.Err = fault
		_, err := e.Attempt(context.Background())
		require.ErrorIs(t, err, fault)
		assert.Equal(t, PhaseIdle, e.Phase())
	})

	t.Run("button", func(t *testing.T) {
		e, rig := newEngine(t, []uint32{0})
		rig.Button.Err = fault
		_, err := e.Attempt(context.Background())
		require.ErrorIs(t, err, fault)
	})

	t.Run("timer", func(t *testing.T) {
		e, rig := newEngine(t, []uint32{0})
		rig.Timer.Err = fault
		rig.Button.Queue(hold(100 * time.Millisecond))
		_, err := e.Attempt(context.Background())
		require.ErrorIs(t, err, fault)
	})
}

func TestAttemptStopsOnCancelledContext(t *testing.T) {
	e, rig := newEngine(t, []uint32{0})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Attempt(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rig.LED.Pulses)
}

func TestObserversSeeEveryPhase(t *testing.T) {
	e, rig := newEngine(t, []uint32{0})
	var seen []Phase
	e.Observe(func(p Phase) { seen = append(seen, p) })

	rig.Button.Queue(hold(100 * time.Millisecond))
	_, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Phase{PhasePresenting, PhaseCollecting, PhaseIdle}, seen)
}

func TestObserverRemoval(t *testing.T) {
	e, rig := newEngine(t, []uint32{0})
	var seen []Phase
	remove := e.Observe(func(p Phase) { seen = append(seen, p) })
	remove()

	rig.Button.Queue(hold(100 * time.Millisecond))
	_, err := e.Attempt(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seen)
	assert.Empty(t, e.observers)
}
